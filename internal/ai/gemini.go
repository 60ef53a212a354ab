package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"go-facecraft/internal/storage"
)

type GeminiConfig struct {
	APIKey      string
	VisionModel string
	ImageModel  string
	// BaseURL overrides the Gemini API endpoint
	BaseURL string
	Timeout time.Duration
}

// GeminiClient implements Describer with Gemini content generation and
// Generator with Imagen. The Gemini API cannot read arbitrary URLs, so the
// photo is downloaded once and sent inline; generated images come back as
// bytes and are exposed as a data URL.
type GeminiClient struct {
	client      *genai.Client
	fetcher     storage.ImageFetcher
	visionModel string
	imageModel  string
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig, fetcher storage.ImageFetcher) (*GeminiClient, error) {
	httpOptions := genai.HTTPOptions{BaseURL: cfg.BaseURL}
	if cfg.Timeout > 0 {
		httpOptions.Timeout = &cfg.Timeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client:      client,
		fetcher:     fetcher,
		visionModel: cfg.VisionModel,
		imageModel:  cfg.ImageModel,
	}, nil
}

func (g *GeminiClient) Describe(ctx context.Context, imageRef string, instruction string) (string, error) {
	photo, err := g.fetcher.FetchImage(ctx, imageRef)
	if err != nil {
		return "", fmt.Errorf("describe: load photo: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(instruction),
		genai.NewPartFromBytes(photo.Data, photo.ContentType),
	}
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.visionModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("describe: %w", err)
	}

	return strings.TrimSpace(result.Text()), nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.GeneratedImages) == 0 {
		return "", nil
	}
	image := resp.GeneratedImages[0].Image
	if image == nil || len(image.ImageBytes) == 0 {
		return "", nil
	}

	contentType := image.MIMEType
	if contentType == "" {
		contentType = "image/png"
	}
	return storage.EncodeDataURL(contentType, image.ImageBytes), nil
}

var (
	_ Describer = (*GeminiClient)(nil)
	_ Generator = (*GeminiClient)(nil)
)
