package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) (*OpenAIClient, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewOpenAIClient(OpenAIConfig{
		APIKey:      "sk-test",
		BaseURL:     server.URL + "/v1",
		VisionModel: "gpt-4o-mini",
		ImageModel:  "dall-e-3",
		Timeout:     5 * time.Second,
	})
	return client, &calls
}

func TestOpenAIClient_Describe(t *testing.T) {
	client, calls := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body chatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		if assert.Len(t, body.Messages, 1) && assert.Len(t, body.Messages[0].Content, 2) {
			assert.Equal(t, "text", body.Messages[0].Content[0].Type)
			assert.Contains(t, body.Messages[0].Content[0].Text, "anime-style avatar")
			assert.Equal(t, "https://blobs.example.com/me.png", body.Messages[0].Content[1].ImageURL.URL)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Round face, curly red hair.  "}}]}`))
	})

	text, err := client.Describe(context.Background(), "https://blobs.example.com/me.png", DescribeInstruction("anime"))
	require.NoError(t, err)
	assert.Equal(t, "Round face, curly red hair.", text)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestOpenAIClient_DescribeNoChoices(t *testing.T) {
	client, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})

	text, err := client.Describe(context.Background(), "https://blobs.example.com/me.png", "describe")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOpenAIClient_Generate(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"url response", `{"created":1,"data":[{"url":"https://img.example.com/tmp/abc.png?sig=1"}]}`, "https://img.example.com/tmp/abc.png?sig=1"},
		{"inline base64", `{"created":1,"data":[{"b64_json":"aGVsbG8="}]}`, "data:image/png;base64,aGVsbG8="},
		{"no data", `{"created":1,"data":[]}`, ""},
		{"empty entry", `{"created":1,"data":[{}]}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/images/generations", r.URL.Path)

				var body imageGenerationRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "dall-e-3", body.Model)
				assert.Equal(t, 1, body.N)
				assert.Equal(t, "1024x1024", body.Size)
				assert.True(t, strings.HasPrefix(body.Prompt, "A cyberpunk-style avatar"))

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.response))
			})

			ref, err := client.Generate(context.Background(), GenerationPrompt("cyberpunk", "Round face."))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestOpenAIClient_ErrorsAreNotRetried(t *testing.T) {
	client, calls := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	})

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
	assert.Contains(t, err.Error(), "503")

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestOpenAIClient_ErrorWithoutEnvelope(t *testing.T) {
	client, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	})

	_, err := client.Describe(context.Background(), "https://x.example.com/a.png", "describe")
	assert.Error(t, err)
}
