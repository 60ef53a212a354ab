package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"go-facecraft/pkg/validation"
)

const defaultMaxFetchBytes = 32 * 1024 * 1024

var (
	// ErrUnsupportedRef indicates a reference that is neither http(s) nor a data URL
	ErrUnsupportedRef = errors.New("unsupported image reference")
	// ErrFetchTooLarge indicates the referenced image exceeded the fetch limit
	ErrFetchTooLarge = errors.New("image exceeds fetch limit")
)

// FetchedImage holds the raw bytes of a downloaded image and its media type
type FetchedImage struct {
	Data        []byte
	ContentType string
}

// ImageFetcher downloads the bytes behind an image reference. Implementations
// make exactly one attempt: generated-image references are short-lived and a
// second request may hit an expired URL.
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) (*FetchedImage, error)
}

// HTTPImageFetcher implements ImageFetcher over HTTP(S) and inline data URLs
type HTTPImageFetcher struct {
	client    *http.Client
	validator *validation.URLValidator
	maxBytes  int64
}

// NewHTTPImageFetcher creates an HTTP image fetcher with the given client timeout
func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 16 << 10,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		validator: validation.NewURLValidator(),
		maxBytes:  defaultMaxFetchBytes,
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, ref string) (*FetchedImage, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURL(ref)
	}

	if err := h.validator.ValidateImageURL(ref); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedRef, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/*;q=0.8, */*;q=0.5")
	req.Header.Set("User-Agent", "Go-FaceCraft/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, ErrFetchTooLarge
	}

	return &FetchedImage{
		Data:        data,
		ContentType: resolveContentType(resp.Header.Get("Content-Type"), data),
	}, nil
}

// resolveContentType trusts a declared image/* type and sniffs the bytes otherwise
func resolveContentType(declared string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mediaType, "image/") {
		return mediaType
	}
	return mimetype.Detect(data).String()
}

// decodeDataURL parses "data:[<mediatype>][;base64],<payload>"
func decodeDataURL(ref string) (*FetchedImage, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URL", ErrUnsupportedRef)
	}

	isBase64 := strings.HasSuffix(header, ";base64")
	mediaType := strings.TrimSuffix(header, ";base64")

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedRef, err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedRef, err)
		}
		data = []byte(unescaped)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data URL", ErrUnsupportedRef)
	}
	if int64(len(data)) > defaultMaxFetchBytes {
		return nil, ErrFetchTooLarge
	}

	return &FetchedImage{
		Data:        data,
		ContentType: resolveContentType(mediaType, data),
	}, nil
}

// EncodeDataURL wraps inline image bytes as a data URL reference
func EncodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
