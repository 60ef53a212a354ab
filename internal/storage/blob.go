package storage

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
)

var (
	// ErrInvalidKey indicates an object key that is empty, absolute or escapes its prefix
	ErrInvalidKey = errors.New("invalid key")
)

// PutObjectParams describes a single object write
type PutObjectParams struct {
	Key         string
	ContentType string
	Body        []byte
}

// PutObjectResponse is the result of a successful write
type PutObjectResponse struct {
	Key  string
	URL  string
	Size int64
}

// BlobStore persists bytes under a key and returns a publicly reachable URL.
// Writes are append-only from the service's point of view: keys are
// time-qualified and nothing is ever read back or deleted.
type BlobStore interface {
	PutObject(ctx context.Context, params *PutObjectParams) (*PutObjectResponse, error)
}

// ValidateKey reports whether key is a clean, relative object key.
func ValidateKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	if path.Clean(key) != key {
		return false
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." || segment == "." {
			return false
		}
	}
	return true
}

// escapeKey escapes each key segment for use in a URL path
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// joinURL appends an object key to a base URL
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + escapeKey(key)
}
