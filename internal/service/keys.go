package service

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
)

// stampClock hands out strictly increasing UnixNano stamps so that two keys
// minted in the same clock tick never collide.
type stampClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func newStampClock(now func() time.Time) *stampClock {
	if now == nil {
		now = time.Now
	}
	return &stampClock{now: now}
}

func (c *stampClock) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := c.now().UnixNano()
	if stamp <= c.last {
		stamp = c.last + 1
	}
	c.last = stamp
	return stamp
}

// uploadKey builds <prefix>/<stamp>-<sanitized file name>
func uploadKey(prefix string, stamp int64, fileName string) string {
	return fmt.Sprintf("%s/%d-%s", strings.Trim(prefix, "/"), stamp, sanitizeFileName(fileName))
}

// avatarKeyBase builds <prefix>/<stamp>-<style slug>; the repository appends
// the extension once the media type is known.
func avatarKeyBase(prefix string, stamp int64, style string) string {
	return fmt.Sprintf("%s/%d-%s", strings.Trim(prefix, "/"), stamp, slugify(style))
}

// sanitizeFileName drops any directory part and replaces characters that are
// awkward in object keys and URLs.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}

	clean := strings.TrimLeft(b.String(), ".-")
	if clean == "" {
		return "photo"
	}
	return clean
}

// slugify lowercases a style label and collapses everything but letters and
// digits into single dashes.
func slugify(style string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(style)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "custom"
	}
	return slug
}
