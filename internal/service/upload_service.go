package service

import (
	"context"
	"io"
	"time"

	apperrors "go-facecraft/internal/errors"
	"go-facecraft/internal/observer"
	"go-facecraft/internal/repository"
	"go-facecraft/pkg/models"
	"go-facecraft/pkg/validation"
)

// MsgUploadFailed is the public message for any store-write failure
const MsgUploadFailed = "Failed to upload file"

// UploadRequest carries one uploaded photo. A nil File means the multipart
// field was missing.
type UploadRequest struct {
	File        io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// UploadService validates photos and writes them to the blob store
type UploadService interface {
	Upload(ctx context.Context, req *UploadRequest) (*models.UploadResult, error)
}

type uploadService struct {
	validator *validation.UploadValidator
	repo      repository.ImageRepository
	events    observer.Subject
	prefix    string
	clock     *stampClock
}

// NewUploadService creates a new upload service. events may be nil.
func NewUploadService(
	validator *validation.UploadValidator,
	repo repository.ImageRepository,
	events observer.Subject,
	prefix string,
) UploadService {
	return newUploadService(validator, repo, events, prefix, time.Now)
}

func newUploadService(
	validator *validation.UploadValidator,
	repo repository.ImageRepository,
	events observer.Subject,
	prefix string,
	now func() time.Time,
) *uploadService {
	return &uploadService{
		validator: validator,
		repo:      repo,
		events:    events,
		prefix:    prefix,
		clock:     newStampClock(now),
	}
}

// Upload checks presence, declared media type and size, in that order, then
// stores the raw bytes. Nothing is written unless every check passes.
func (s *uploadService) Upload(ctx context.Context, req *UploadRequest) (*models.UploadResult, error) {
	present := req != nil && req.File != nil
	var contentType string
	var size int64
	if present {
		contentType, size = req.ContentType, req.Size
	}
	if err := s.validator.Validate(present, contentType, size); err != nil {
		return nil, err
	}

	// The declared size can lie; never buffer more than the limit allows
	data, err := io.ReadAll(io.LimitReader(req.File, s.validator.MaxSize()+1))
	if err != nil {
		return nil, apperrors.NewInternalError(MsgUploadFailed, err)
	}
	if int64(len(data)) > s.validator.MaxSize() {
		return nil, s.validator.TooLargeError(-1)
	}

	key := uploadKey(s.prefix, s.clock.next(), req.FileName)
	stored, err := s.repo.Store(ctx, key, contentType, data)
	if err != nil {
		return nil, apperrors.NewStorageError(MsgUploadFailed, err)
	}

	if s.events != nil {
		s.events.NotifyObservers(ctx, observer.PipelineEvent{
			EventType: observer.PhotoUploaded,
			Key:       stored.Key,
			Success:   true,
			Metadata: map[string]interface{}{
				"content_type": contentType,
				"size":         stored.Size,
			},
		})
	}

	return &models.UploadResult{
		Key:         stored.Key,
		URL:         stored.URL,
		ContentType: contentType,
		Size:        stored.Size,
	}, nil
}
