package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"

	"go-facecraft/pkg/models"
)

const (
	uploadPath   = "/api/upload"
	generatePath = "/api/generate"
	stylesPath   = "/api/styles"
)

var ErrEmptyResponse = errors.New("server returned an empty response")

// APIError is a non-2xx answer from the FaceCraft API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to a FaceCraft API server. Requests are never retried: every
// generate call is billed upstream and produces a new avatar.
type Client struct {
	http *req.Client
}

// New creates a client for the server at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: req.C().
			SetBaseURL(baseURL).
			SetUserAgent("facecraft-cli/1.0").
			SetTimeout(timeout).
			SetJsonMarshal(json.Marshal).
			SetJsonUnmarshal(json.Unmarshal),
	}
}

// DetectContentType returns the media type a browser would declare for the
// file: derived from the extension, falling back to content sniffing.
func DetectContentType(path string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err == nil {
			return mediaType, nil
		}
	}
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	return m.String(), nil
}

// Upload sends the photo at path and returns its durable URL
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat photo: %w", err)
	}
	contentType, err := DetectContentType(path)
	if err != nil {
		return "", err
	}

	var result models.UploadResponse
	var apiErr models.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetFileUpload(req.FileUpload{
			ParamName: "file",
			FileName:  filepath.Base(path),
			GetFileContent: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
			FileSize:    info.Size(),
			ContentType: contentType,
		}).
		SetSuccessResult(&result).
		SetErrorResult(&apiErr).
		Post(uploadPath)
	if err := handleAPIError(resp, err, &apiErr, "upload"); err != nil {
		return "", err
	}
	if result.URL == "" {
		return "", ErrEmptyResponse
	}
	return result.URL, nil
}

// Styles fetches the style menu offered by the server
func (c *Client) Styles(ctx context.Context) ([]models.Style, error) {
	var result models.StylesResponse
	var apiErr models.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&result).
		SetErrorResult(&apiErr).
		Get(stylesPath)
	if err := handleAPIError(resp, err, &apiErr, "styles"); err != nil {
		return nil, err
	}
	return result.Styles, nil
}

// Generate asks the server for a new avatar of the photo in the given style
func (c *Client) Generate(ctx context.Context, photoURL string, style string) (*models.GenerateResponse, error) {
	var result models.GenerateResponse
	var apiErr models.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetBody(&models.GenerateRequest{PhotoURL: photoURL, Style: style}).
		SetSuccessResult(&result).
		SetErrorResult(&apiErr).
		Post(generatePath)
	if err := handleAPIError(resp, err, &apiErr, "generate"); err != nil {
		return nil, err
	}
	if result.AvatarURL == "" {
		return nil, ErrEmptyResponse
	}
	return &result, nil
}

// Download saves the object at url to dest
func (c *Client) Download(ctx context.Context, url string, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetOutputFile(dest).
		Get(url)
	if err != nil {
		return fmt.Errorf("download %q: %w", url, err)
	}
	if resp.IsErrorState() {
		// the error body was written to dest
		_ = os.Remove(dest)
		return &APIError{StatusCode: resp.GetStatusCode(), Message: resp.Status}
	}
	return nil
}

func handleAPIError(resp *req.Response, requestErr error, apiErr *models.ErrorResponse, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("%s: %w", operation, requestErr)
	}
	if resp.IsErrorState() {
		message := apiErr.Error
		if message == "" {
			message = resp.Status
		}
		return &APIError{StatusCode: resp.GetStatusCode(), Message: message}
	}
	return nil
}
