package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

type AzureConfig struct {
	AccountName string
	AccountKey  string
	Container   string
	// ServiceURL overrides https://<account>.blob.core.windows.net/, e.g. for Azurite
	ServiceURL string
}

// azureStorage writes objects to a single container. Public read access is a
// container-level setting in Azure, so the container must allow anonymous blob reads.
type azureStorage struct {
	client    *azblob.Client
	container string
}

func NewAzureStorage(cfg *AzureConfig) (BlobStore, error) {
	credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	serviceURL := cfg.ServiceURL
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			// MaxRetries < 0 disables the pipeline's retry policy
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &azureStorage{client: client, container: cfg.Container}, nil
}

func (s *azureStorage) PutObject(ctx context.Context, params *PutObjectParams) (*PutObjectResponse, error) {
	if !ValidateKey(params.Key) {
		return nil, ErrInvalidKey
	}

	_, err := s.client.UploadBuffer(ctx, s.container, params.Key, params.Body, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &params.ContentType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	return &PutObjectResponse{
		Key:  params.Key,
		URL:  joinURL(joinURL(s.client.URL(), s.container), params.Key),
		Size: int64(len(params.Body)),
	}, nil
}
