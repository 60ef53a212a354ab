package repository

import "errors"

var (
	// ErrEmptyImageRef indicates the generator returned no image reference
	ErrEmptyImageRef = errors.New("empty image reference")

	// ErrFetchFailed indicates the short-lived reference could not be downloaded
	ErrFetchFailed = errors.New("image fetch failed")

	// ErrStoreFailed indicates the blob store rejected the write
	ErrStoreFailed = errors.New("blob store write failed")
)
