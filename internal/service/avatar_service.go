package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-facecraft/internal/ai"
	apperrors "go-facecraft/internal/errors"
	"go-facecraft/internal/logger"
	"go-facecraft/internal/observer"
	"go-facecraft/internal/repository"
	"go-facecraft/pkg/models"
)

const (
	MsgNoPhotoURL = "No photo URL provided"
	MsgNoStyle    = "No style selected"

	// MsgGenerateFailed is the public message for every pipeline failure
	MsgGenerateFailed = "Failed to generate avatar"
)

// AvatarService runs the describe, generate and rehost pipeline
type AvatarService interface {
	Generate(ctx context.Context, photoURL string, style string) (*models.AvatarResult, error)
}

type avatarService struct {
	describer ai.Describer
	generator ai.Generator
	repo      repository.ImageRepository
	events    observer.Subject
	prefix    string
	clock     *stampClock
}

// NewAvatarService creates a new avatar service. events may be nil.
func NewAvatarService(
	describer ai.Describer,
	generator ai.Generator,
	repo repository.ImageRepository,
	events observer.Subject,
	prefix string,
) AvatarService {
	return newAvatarService(describer, generator, repo, events, prefix, time.Now)
}

func newAvatarService(
	describer ai.Describer,
	generator ai.Generator,
	repo repository.ImageRepository,
	events observer.Subject,
	prefix string,
	now func() time.Time,
) *avatarService {
	return &avatarService{
		describer: describer,
		generator: generator,
		repo:      repo,
		events:    events,
		prefix:    prefix,
		clock:     newStampClock(now),
	}
}

// Generate validates the request, then makes one call to each upstream step in
// order. Every call produces a new stored object.
//
// An empty description is not an error and the pipeline carries on without
// it. An empty image reference is fatal.
func (s *avatarService) Generate(ctx context.Context, photoURL string, style string) (*models.AvatarResult, error) {
	if strings.TrimSpace(photoURL) == "" {
		return nil, apperrors.NewValidationError(MsgNoPhotoURL, nil)
	}
	if strings.TrimSpace(style) == "" {
		return nil, apperrors.NewValidationError(MsgNoStyle, nil)
	}

	start := time.Now()
	label := strings.TrimSpace(style)
	s.publish(ctx, observer.PipelineEvent{EventType: observer.GenerationStarted, Style: label})

	description, err := s.describer.Describe(ctx, strings.TrimSpace(photoURL), ai.DescribeInstruction(label))
	if err != nil {
		return nil, s.fail(ctx, label, start, apperrors.NewUpstreamError("describe failed upstream", err))
	}
	description = strings.TrimSpace(description)
	s.publish(ctx, observer.PipelineEvent{
		EventType: observer.PhotoDescribed,
		Style:     label,
		Elapsed:   time.Since(start),
		Success:   true,
		Metadata:  map[string]interface{}{"empty_description": description == ""},
	})
	if description == "" {
		logger.WithField("style", label).Warn("Describer returned no text, generating without a description")
	}

	ref, err := s.generator.Generate(ctx, ai.GenerationPrompt(label, description))
	if err != nil {
		return nil, s.fail(ctx, label, start, apperrors.NewUpstreamError("generation failed upstream", err))
	}
	if strings.TrimSpace(ref) == "" {
		return nil, s.fail(ctx, label, start, apperrors.NewUpstreamError("generation failed upstream", repository.ErrEmptyImageRef))
	}
	s.publish(ctx, observer.PipelineEvent{
		EventType: observer.ImageGenerated,
		Style:     label,
		Elapsed:   time.Since(start),
		Success:   true,
	})

	stored, err := s.repo.Rehost(ctx, strings.TrimSpace(ref), avatarKeyBase(s.prefix, s.clock.next(), label))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.Is(err, repository.ErrStoreFailed) {
			appErr = apperrors.NewStorageError("avatar store failed", err)
		} else {
			appErr = apperrors.NewUpstreamError("generated image fetch failed", err)
		}
		return nil, s.fail(ctx, label, start, appErr)
	}

	elapsed := time.Since(start)
	s.publish(ctx, observer.PipelineEvent{
		EventType: observer.AvatarRehosted,
		Style:     label,
		Key:       stored.Key,
		Elapsed:   elapsed,
		Success:   true,
	})

	return &models.AvatarResult{
		AvatarURL:   stored.URL,
		Key:         stored.Key,
		Style:       style,
		Description: description,
		Elapsed:     elapsed,
	}, nil
}

func (s *avatarService) fail(ctx context.Context, style string, start time.Time, err *apperrors.AppError) error {
	s.publish(ctx, observer.PipelineEvent{
		EventType:    observer.GenerationFailed,
		Style:        style,
		Elapsed:      time.Since(start),
		ErrorMessage: err.Message,
	})
	return err
}

func (s *avatarService) publish(ctx context.Context, event observer.PipelineEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}
