package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
)

const (
	openAIChatCompletions  = "/chat/completions"
	openAIImageGenerations = "/images/generations"

	avatarImageSize = "1024x1024"
)

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	VisionModel string
	ImageModel  string
	Timeout     time.Duration
}

// OpenAIClient talks to an OpenAI-compatible API. It implements both Describer
// (chat completions with an image part) and Generator (image generations).
// Requests are never retried.
type OpenAIClient struct {
	client      *req.Client
	visionModel string
	imageModel  string
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	client := req.C().
		SetBaseURL(cfg.BaseURL).
		SetCommonBearerAuthToken(cfg.APIKey).
		SetUserAgent("go-facecraft/1.0").
		SetTimeout(timeout).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)

	return &OpenAIClient{
		client:      client,
		visionModel: cfg.VisionModel,
		imageModel:  cfg.ImageModel,
	}
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string            `json:"role"`
	Content []chatContentPart `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type imageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url"`
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// APIError is the error envelope returned by OpenAI-compatible APIs
type APIError struct {
	Detail struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai api error: %s (%s)", e.Detail.Message, e.Detail.Type)
}

func (c *OpenAIClient) Describe(ctx context.Context, imageRef string, instruction string) (string, error) {
	body := &chatCompletionRequest{
		Model: c.visionModel,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContentPart{
				{Type: "text", Text: instruction},
				{Type: "image_url", ImageURL: &chatImageURL{URL: imageRef}},
			},
		}},
		MaxTokens: 300,
	}

	var result chatCompletionResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetSuccessResult(&result).
		SetErrorResult(&APIError{}).
		Post(openAIChatCompletions)
	if err := handleAPIError(resp, err, "describe"); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	body := &imageGenerationRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           avatarImageSize,
		ResponseFormat: "url",
	}

	var result imageGenerationResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetSuccessResult(&result).
		SetErrorResult(&APIError{}).
		Post(openAIImageGenerations)
	if err := handleAPIError(resp, err, "generate"); err != nil {
		return "", err
	}

	if len(result.Data) == 0 {
		return "", nil
	}
	if image := result.Data[0]; image.URL != "" {
		return image.URL, nil
	} else if image.B64JSON != "" {
		// models that ignore response_format answer with inline base64
		return "data:image/png;base64," + image.B64JSON, nil
	}
	return "", nil
}

func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	if resp.IsErrorState() {
		if apiErr, ok := resp.ErrorResult().(*APIError); ok && apiErr.Detail.Message != "" {
			return fmt.Errorf("%s: status %d: %w", operation, resp.StatusCode, apiErr)
		}
		return fmt.Errorf("%s: unexpected status %d", operation, resp.StatusCode)
	}

	return nil
}

var (
	_ Describer = (*OpenAIClient)(nil)
	_ Generator = (*OpenAIClient)(nil)
)
