package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-facecraft/internal/storage"
)

type stubFetcher struct {
	img   *storage.FetchedImage
	err   error
	calls int32
}

func (f *stubFetcher) FetchImage(ctx context.Context, ref string) (*storage.FetchedImage, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.img, f.err
}

func newTestGemini(t *testing.T, fetcher storage.ImageFetcher, handler http.HandlerFunc) (*GeminiClient, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewGeminiClient(context.Background(), GeminiConfig{
		APIKey:      "gm-test",
		VisionModel: "gemini-2.0-flash",
		ImageModel:  "imagen-3.0-generate-002",
		BaseURL:     server.URL + "/",
		Timeout:     5 * time.Second,
	}, fetcher)
	require.NoError(t, err)
	return client, &calls
}

func TestGeminiClient_DescribeSendsPhotoInline(t *testing.T) {
	photo := []byte("jpeg-bytes-of-a-face")
	fetcher := &stubFetcher{img: &storage.FetchedImage{Data: photo, ContentType: "image/jpeg"}}

	client, calls := newTestGemini(t, fetcher, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), base64.StdEncoding.EncodeToString(photo))
		assert.Contains(t, string(body), "image/jpeg")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"  Short dark hair, round glasses.  "}]}}]}`)
	})

	text, err := client.Describe(context.Background(), "https://blobs.example.com/me.jpg", DescribeInstruction("anime"))
	require.NoError(t, err)
	assert.Equal(t, "Short dark hair, round glasses.", text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGeminiClient_DescribePhotoUnavailable(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("status code 404")}
	client, calls := newTestGemini(t, fetcher, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.Describe(context.Background(), "https://blobs.example.com/gone.jpg", DescribeInstruction("anime"))
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestGeminiClient_Generate(t *testing.T) {
	img := []byte("\x89PNG-avatar")

	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "image with media type",
			response: `{"predictions":[{"mimeType":"image/jpeg","bytesBase64Encoded":"` + base64.StdEncoding.EncodeToString(img) + `"}]}`,
			want:     storage.EncodeDataURL("image/jpeg", img),
		},
		{
			name:     "missing media type defaults to png",
			response: `{"predictions":[{"bytesBase64Encoded":"` + base64.StdEncoding.EncodeToString(img) + `"}]}`,
			want:     storage.EncodeDataURL("image/png", img),
		},
		{
			name:     "no images",
			response: `{}`,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestGemini(t, &stubFetcher{}, func(w http.ResponseWriter, r *http.Request) {
				assert.True(t, strings.HasSuffix(r.URL.Path, "models/imagen-3.0-generate-002:predict"), r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, tt.response)
			})

			ref, err := client.Generate(context.Background(), GenerationPrompt("anime", ""))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls))
		})
	}
}

func TestGeminiClient_GenerateUpstreamError(t *testing.T) {
	client, _ := newTestGemini(t, &stubFetcher{}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	})

	_, err := client.Generate(context.Background(), GenerationPrompt("anime", ""))
	assert.Error(t, err)
}
