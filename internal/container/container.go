package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/afero"

	"go-facecraft/internal/ai"
	"go-facecraft/internal/config"
	"go-facecraft/internal/factory"
	"go-facecraft/internal/logger"
	"go-facecraft/internal/observer"
	"go-facecraft/internal/repository"
	"go-facecraft/internal/service"
	"go-facecraft/internal/storage"
	"go-facecraft/internal/transport"
	"go-facecraft/pkg/validation"
)

// Option customises container construction
type Option func(*options)

type options struct {
	fs        afero.Fs
	describer ai.Describer
	generator ai.Generator
}

// WithFileSystem keeps local-backend blobs on fs instead of LOCAL_STORAGE_DIR
func WithFileSystem(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithAI replaces the configured providers
func WithAI(describer ai.Describer, generator ai.Generator) Option {
	return func(o *options) {
		o.describer = describer
		o.generator = generator
	}
}

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	imageFetcher    storage.ImageFetcher
	blobStore       storage.BlobStore
	imageRepository repository.ImageRepository
	events          *observer.EventPublisher
	metrics         *observer.MetricsObserver
	uploadService   service.UploadService
	avatarService   service.AvatarService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// Build dependency graph
	imageFetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout)
	components := factory.NewComponentFactory(cfg, imageFetcher, o.fs)

	blobStore, err := components.StorageFactory.CreateStorage(ctx, factory.StorageType(cfg.Storage.Backend))
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	describer, generator := o.describer, o.generator
	if describer == nil {
		if describer, err = components.AIFactory.CreateDescriber(ctx, factory.ProviderType(cfg.AI.DescribeProvider)); err != nil {
			return nil, fmt.Errorf("failed to create describer: %w", err)
		}
	}
	if generator == nil {
		if generator, err = components.AIFactory.CreateGenerator(ctx, factory.ProviderType(cfg.AI.GenerateProvider)); err != nil {
			return nil, fmt.Errorf("failed to create generator: %w", err)
		}
	}

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	imageRepository := repository.NewBlobImageRepository(blobStore, imageFetcher)
	uploadService := service.NewUploadService(
		validation.NewUploadValidator(cfg.MaxUploadSize),
		imageRepository,
		events,
		cfg.Storage.UploadPrefix,
	)
	avatarService := service.NewAvatarService(describer, generator, imageRepository, events, cfg.Storage.AvatarPrefix)

	var blobs http.FileSystem
	if local, ok := blobStore.(*storage.LocalStorage); ok {
		blobs = local.FileSystem()
	}

	handler := transport.NewHandler(transport.Dependencies{
		Config:  cfg,
		Uploads: uploadService,
		Avatars: avatarService,
		Metrics: metrics,
		Blobs:   blobs,
	})

	return &Container{
		config:          cfg,
		imageFetcher:    imageFetcher,
		blobStore:       blobStore,
		imageRepository: imageRepository,
		events:          events,
		metrics:         metrics,
		uploadService:   uploadService,
		avatarService:   avatarService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the pipeline counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}
