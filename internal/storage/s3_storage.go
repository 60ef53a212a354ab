package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	BucketName string
	Region     string
	AccessKey  string
	SecretKey  string
	// Endpoint switches to path-style addressing for MinIO and other S3-compatible stores
	Endpoint string
	// PublicACL applies the public-read canned ACL on every write.
	// Leave it off for buckets with object ownership enforced and grant reads by bucket policy instead.
	PublicACL bool
	// PublicBaseURL overrides the URL returned for stored objects (e.g. a CDN in front of the bucket)
	PublicBaseURL string
}

type s3Storage struct {
	client *s3.Client
	config *S3Config
}

func NewS3Storage(ctx context.Context, cfg *S3Config) (BlobStore, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: 60 * time.Second,
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpClient),
		// A failed write fails the request; the caller decides what happens next
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Storage{client: client, config: cfg}, nil
}

func (s *s3Storage) PutObject(ctx context.Context, params *PutObjectParams) (*PutObjectResponse, error) {
	if !ValidateKey(params.Key) {
		return nil, ErrInvalidKey
	}

	input := &s3.PutObjectInput{
		Bucket:        &s.config.BucketName,
		Key:           &params.Key,
		Body:          bytes.NewReader(params.Body),
		ContentLength: aws.Int64(int64(len(params.Body))),
		ContentType:   aws.String(params.ContentType),
	}
	if s.config.PublicACL {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return &PutObjectResponse{
		Key:  params.Key,
		URL:  s.objectURL(params.Key),
		Size: int64(len(params.Body)),
	}, nil
}

func (s *s3Storage) objectURL(key string) string {
	switch {
	case s.config.PublicBaseURL != "":
		return joinURL(s.config.PublicBaseURL, key)
	case s.config.Endpoint != "":
		return joinURL(joinURL(s.config.Endpoint, s.config.BucketName), key)
	default:
		return joinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.config.BucketName, s.config.Region), key)
	}
}
