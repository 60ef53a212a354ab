package repository

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"go-facecraft/internal/storage"
)

// BlobImageRepository implements ImageRepository on a blob store
type BlobImageRepository struct {
	store   storage.BlobStore
	fetcher storage.ImageFetcher
}

// NewBlobImageRepository creates a new blob-backed image repository
func NewBlobImageRepository(store storage.BlobStore, fetcher storage.ImageFetcher) *BlobImageRepository {
	return &BlobImageRepository{
		store:   store,
		fetcher: fetcher,
	}
}

// Store writes raw bytes to the blob store
func (r *BlobImageRepository) Store(ctx context.Context, key string, contentType string, data []byte) (*StoredImage, error) {
	resp, err := r.store.PutObject(ctx, &storage.PutObjectParams{
		Key:         key,
		ContentType: contentType,
		Body:        data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	return &StoredImage{
		Key:         resp.Key,
		URL:         resp.URL,
		ContentType: contentType,
		Size:        resp.Size,
	}, nil
}

// Rehost fetches ref once and stores the result. There is no retry: the
// reference may already have expired by the time a second attempt runs.
func (r *BlobImageRepository) Rehost(ctx context.Context, ref string, keyBase string) (*StoredImage, error) {
	if ref == "" {
		return nil, ErrEmptyImageRef
	}

	img, err := r.fetcher.FetchImage(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	return r.Store(ctx, keyBase+extensionFor(img.ContentType), img.ContentType, img.Data)
}

// extensionFor maps a media type to a file extension, defaulting to .png
func extensionFor(contentType string) string {
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".png"
}

var _ ImageRepository = (*BlobImageRepository)(nil)
