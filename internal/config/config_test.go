package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockProviders(t *testing.T) {
	t.Setenv("DESCRIBE_PROVIDER", "mock")
	t.Setenv("GENERATE_PROVIDER", "mock")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	mockProviders(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress())
	assert.Equal(t, int64(DefaultMaxUploadSize), cfg.MaxUploadSize)
	assert.Equal(t, 30*time.Second, cfg.ImageFetchTimeout)
	assert.Equal(t, 90*time.Second, cfg.AI.Timeout)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, "facecraft-uploads", cfg.Storage.UploadPrefix)
	assert.Equal(t, "facecraft-avatars", cfg.Storage.AvatarPrefix)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	mockProviders(t)
	t.Setenv("PORT", " 9090 ")
	t.Setenv("IMAGE_FETCH_TIMEOUT", "5s")
	t.Setenv("AI_TIMEOUT", "45s")
	t.Setenv("PUBLIC_BASE_URL", "https://cdn.example.com/")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("AVATAR_PREFIX", "/avatars/")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.ServerAddress())
	assert.Equal(t, 5*time.Second, cfg.ImageFetchTimeout)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "https://cdn.example.com", cfg.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "avatars", cfg.Storage.AvatarPrefix)
}

func TestLoad_ConfigFile(t *testing.T) {
	mockProviders(t)
	path := filepath.Join(t.TempDir(), "facecraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\nstorage_backend: local\nlocal_storage_dir: /tmp/blobs\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "/tmp/blobs", cfg.Storage.LocalDir)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "http"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"zero upload size", map[string]string{"MAX_UPLOAD_SIZE": "0"}},
		{"zero ai timeout", map[string]string{"AI_TIMEOUT": "0s"}},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "ftp"}},
		{"s3 without bucket", map[string]string{"STORAGE_BACKEND": "s3"}},
		{"azure without account", map[string]string{"STORAGE_BACKEND": "azure"}},
		{"openai without key", map[string]string{"GENERATE_PROVIDER": "openai"}},
		{"gemini without key", map[string]string{"DESCRIBE_PROVIDER": "gemini"}},
		{"unknown provider", map[string]string{"DESCRIBE_PROVIDER": "midjourney"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProviders(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}
