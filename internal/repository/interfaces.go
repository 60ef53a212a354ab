package repository

import (
	"context"
)

// ImageRepository persists photos and avatars in the blob store
type ImageRepository interface {
	// Store writes raw image bytes under key with public read access
	Store(ctx context.Context, key string, contentType string, data []byte) (*StoredImage, error)

	// Rehost downloads a short-lived image reference exactly once and stores
	// the bytes under keyBase plus an extension derived from the media type
	Rehost(ctx context.Context, ref string, keyBase string) (*StoredImage, error)
}

// StoredImage describes an object written to the blob store
type StoredImage struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}
