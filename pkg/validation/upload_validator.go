package validation

import (
	"fmt"
	"mime"
	"strings"

	"github.com/dustin/go-humanize"

	apperrors "go-facecraft/internal/errors"
)

const (
	// MaxUploadSize is the default photo size limit (10 MiB)
	MaxUploadSize = int64(10 * 1024 * 1024)

	MsgNoFile      = "No file provided"
	MsgInvalidType = "Invalid file type. Please upload a valid image."
)

// AllowedImageTypes lists the declared media types accepted for photo uploads
var AllowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/avif",
	"image/gif",
	"image/bmp",
	"image/tiff",
}

// UploadValidator checks an uploaded photo against the media type allow-list
// and the size limit. Only the declared media type is inspected; the file
// content and extension are not.
type UploadValidator struct {
	allowedTypes map[string]struct{}
	maxSize      int64
}

// NewUploadValidator creates a validator for the default allow-list
func NewUploadValidator(maxSize int64) *UploadValidator {
	if maxSize <= 0 {
		maxSize = MaxUploadSize
	}
	allowed := make(map[string]struct{}, len(AllowedImageTypes))
	for _, t := range AllowedImageTypes {
		allowed[t] = struct{}{}
	}
	return &UploadValidator{allowedTypes: allowed, maxSize: maxSize}
}

// MaxSize returns the configured size limit in bytes
func (v *UploadValidator) MaxSize() int64 {
	return v.maxSize
}

// Validate applies the checks in order: missing file, media type, size.
func (v *UploadValidator) Validate(present bool, contentType string, size int64) error {
	if !present {
		return apperrors.NewValidationError(MsgNoFile, nil)
	}
	if !v.IsAllowedType(contentType) {
		return apperrors.NewValidationError(MsgInvalidType, fmt.Errorf("declared media type %q", contentType))
	}
	if size > v.maxSize {
		return v.TooLargeError(size)
	}
	return nil
}

// IsAllowedType reports whether the declared media type is on the allow-list
func (v *UploadValidator) IsAllowedType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	_, ok := v.allowedTypes[strings.ToLower(mediaType)]
	return ok
}

// TooLargeError builds the oversize rejection for a payload of the given size.
// A negative size means the payload was cut off before its size was known.
func (v *UploadValidator) TooLargeError(size int64) *apperrors.AppError {
	var cause error
	if size >= 0 {
		cause = fmt.Errorf("payload is %s", humanize.IBytes(uint64(size)))
	}
	return apperrors.NewValidationError(v.TooLargeMessage(), cause)
}

// TooLargeMessage renders the size limit the way users expect it ("10MB")
func (v *UploadValidator) TooLargeMessage() string {
	const mib = 1024 * 1024
	limit := humanize.IBytes(uint64(v.maxSize))
	if v.maxSize%mib == 0 {
		limit = fmt.Sprintf("%dMB", v.maxSize/mib)
	}
	return fmt.Sprintf("File too large. Maximum size is %s.", limit)
}
