package factory

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/afero"

	"go-facecraft/internal/ai"
	"go-facecraft/internal/config"
	"go-facecraft/internal/storage"
)

// StorageType represents different types of blob store backends
type StorageType string

const (
	// LocalStorage for a directory served under /blobs
	LocalStorage StorageType = config.StorageLocal
	// S3Storage for S3 or an S3-compatible object store
	S3Storage StorageType = config.StorageS3
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = config.StorageAzure
)

// ProviderType represents the AI service behind a pipeline step
type ProviderType string

const (
	// OpenAIProvider for an OpenAI-compatible API
	OpenAIProvider ProviderType = config.ProviderOpenAI
	// GeminiProvider for Gemini and Imagen
	GeminiProvider ProviderType = config.ProviderGemini
	// MockProvider for offline runs and tests
	MockProvider ProviderType = config.ProviderMock
)

// StorageFactory creates blob store implementations
type StorageFactory interface {
	CreateStorage(ctx context.Context, storageType StorageType) (storage.BlobStore, error)
}

// AIFactory creates the describe and generate steps
type AIFactory interface {
	CreateDescriber(ctx context.Context, provider ProviderType) (ai.Describer, error)
	CreateGenerator(ctx context.Context, provider ProviderType) (ai.Generator, error)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg           config.StorageConfig
	publicBaseURL string
	fs            afero.Fs
}

// NewStorageFactory creates a new storage factory. A non-nil fs replaces the
// local directory, which tests use to keep blobs in memory.
func NewStorageFactory(cfg config.StorageConfig, publicBaseURL string, fs afero.Fs) StorageFactory {
	return &storageFactory{cfg: cfg, publicBaseURL: publicBaseURL, fs: fs}
}

// CreateStorage creates a blob store based on the specified type
func (f *storageFactory) CreateStorage(ctx context.Context, storageType StorageType) (storage.BlobStore, error) {
	switch storageType {
	case LocalStorage:
		if f.fs != nil {
			return storage.NewLocalStorage(f.fs, f.publicBaseURL), nil
		}
		return storage.NewLocalDirStorage(f.cfg.LocalDir, f.publicBaseURL)
	case S3Storage:
		return storage.NewS3Storage(ctx, &storage.S3Config{
			BucketName:    f.cfg.S3Bucket,
			Region:        f.cfg.S3Region,
			AccessKey:     f.cfg.S3AccessKey,
			SecretKey:     f.cfg.S3SecretKey,
			Endpoint:      f.cfg.S3Endpoint,
			PublicACL:     f.cfg.S3PublicACL,
			PublicBaseURL: f.cfg.S3PublicBaseURL,
		})
	case AzureStorage:
		return storage.NewAzureStorage(&storage.AzureConfig{
			AccountName: f.cfg.AzureAccountName,
			AccountKey:  f.cfg.AzureAccountKey,
			Container:   f.cfg.AzureContainer,
			ServiceURL:  f.cfg.AzureServiceURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// aiFactory implements AIFactory. One client per provider is shared between
// the describe and generate steps.
type aiFactory struct {
	cfg     config.AIConfig
	fetcher storage.ImageFetcher

	mu     sync.Mutex
	openai *ai.OpenAIClient
	gemini *ai.GeminiClient
	mock   *ai.MockClient
}

// NewAIFactory creates a new AI factory. The fetcher loads photos for
// providers that only accept inline image bytes.
func NewAIFactory(cfg config.AIConfig, fetcher storage.ImageFetcher) AIFactory {
	return &aiFactory{cfg: cfg, fetcher: fetcher}
}

// CreateDescriber creates the vision step for the given provider
func (f *aiFactory) CreateDescriber(ctx context.Context, provider ProviderType) (ai.Describer, error) {
	return f.client(ctx, provider)
}

// CreateGenerator creates the image step for the given provider
func (f *aiFactory) CreateGenerator(ctx context.Context, provider ProviderType) (ai.Generator, error) {
	return f.client(ctx, provider)
}

type describerGenerator interface {
	ai.Describer
	ai.Generator
}

func (f *aiFactory) client(ctx context.Context, provider ProviderType) (describerGenerator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch provider {
	case OpenAIProvider:
		if f.openai == nil {
			f.openai = ai.NewOpenAIClient(ai.OpenAIConfig{
				APIKey:      f.cfg.OpenAIAPIKey,
				BaseURL:     f.cfg.OpenAIBaseURL,
				VisionModel: f.cfg.OpenAIVisionModel,
				ImageModel:  f.cfg.OpenAIImageModel,
				Timeout:     f.cfg.Timeout,
			})
		}
		return f.openai, nil
	case GeminiProvider:
		if f.gemini == nil {
			client, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
				APIKey:      f.cfg.GeminiAPIKey,
				VisionModel: f.cfg.GeminiVisionModel,
				ImageModel:  f.cfg.GeminiImageModel,
				Timeout:     f.cfg.Timeout,
			}, f.fetcher)
			if err != nil {
				return nil, err
			}
			f.gemini = client
		}
		return f.gemini, nil
	case MockProvider:
		if f.mock == nil {
			f.mock = ai.NewMockClient()
		}
		return f.mock, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", provider)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	StorageFactory StorageFactory
	AIFactory      AIFactory
}

// NewComponentFactory creates a new component factory from the loaded configuration
func NewComponentFactory(cfg *config.Config, fetcher storage.ImageFetcher, fs afero.Fs) *ComponentFactory {
	return &ComponentFactory{
		StorageFactory: NewStorageFactory(cfg.Storage, cfg.PublicBaseURL, fs),
		AIFactory:      NewAIFactory(cfg.AI, fetcher),
	}
}
