package container

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-facecraft/internal/ai"
	"go-facecraft/internal/config"
	"go-facecraft/internal/logger"
	"go-facecraft/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)
}

func testConfig() *config.Config {
	return &config.Config{
		Host:              "127.0.0.1",
		Port:              "8080",
		RequestTimeout:    10 * time.Second,
		ImageFetchTimeout: 5 * time.Second,
		MaxUploadSize:     config.DefaultMaxUploadSize,
		PublicBaseURL:     "http://localhost:8080",
		CORSAllowOrigins:  []string{"*"},
		Storage: config.StorageConfig{
			Backend:      config.StorageLocal,
			UploadPrefix: "facecraft-uploads",
			AvatarPrefix: "facecraft-avatars",
			LocalDir:     "unused",
		},
		AI: config.AIConfig{
			DescribeProvider: config.ProviderMock,
			GenerateProvider: config.ProviderMock,
		},
	}
}

func TestNewContainer_MockProviders(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, err := NewContainer(context.Background(), testConfig(), WithFileSystem(fs))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"photoUrl":"https://cdn.example.com/me.png","style":"cyberpunk"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.AvatarURL, "http://localhost:8080/blobs/facecraft-avatars/"))
	assert.NotEmpty(t, resp.Description)

	assert.Eventually(t, func() bool {
		return c.Metrics().GetMetrics()["successful_generations"] == int64(1)
	}, time.Second, 10*time.Millisecond)
}

func TestNewContainer_WithAIOverride(t *testing.T) {
	cfg := testConfig()
	cfg.AI.DescribeProvider = config.ProviderOpenAI
	cfg.AI.GenerateProvider = config.ProviderOpenAI

	mock := ai.NewMockClient()
	c, err := NewContainer(context.Background(), cfg, WithFileSystem(afero.NewMemMapFs()), WithAI(mock, mock))
	require.NoError(t, err)
	assert.Same(t, cfg, c.Config())
}

func TestNewContainer_UnsupportedBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Backend = "tape"

	_, err := NewContainer(context.Background(), cfg)
	assert.Error(t, err)
}
