package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageAzure = "azure"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"

	// DefaultMaxUploadSize is the 10 MiB photo limit
	DefaultMaxUploadSize = 10 * 1024 * 1024
)

type Config struct {
	Host              string
	Port              string
	RequestTimeout    time.Duration
	ImageFetchTimeout time.Duration
	MaxUploadSize     int64
	PublicBaseURL     string
	CORSAllowOrigins  []string
	LogLevel          string

	Storage StorageConfig
	AI      AIConfig
}

type StorageConfig struct {
	Backend      string
	UploadPrefix string
	AvatarPrefix string

	LocalDir string

	S3Bucket        string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PublicACL     bool
	S3PublicBaseURL string

	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string
	AzureServiceURL  string
}

type AIConfig struct {
	DescribeProvider string
	GenerateProvider string
	// Timeout bounds each provider call
	Timeout time.Duration

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIVisionModel string
	OpenAIImageModel  string

	GeminiAPIKey      string
	GeminiVisionModel string
	GeminiImageModel  string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv loads configuration from the environment and an optional .env file.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// Load reads configuration from configFile (if set), then the environment.
// Environment variables win over file values.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config read '%s': %w", configFile, err)
		}
	}

	cfg := &Config{
		Host:              v.GetString("host"),
		Port:              v.GetString("port"),
		RequestTimeout:    v.GetDuration("request_timeout"),
		ImageFetchTimeout: v.GetDuration("image_fetch_timeout"),
		MaxUploadSize:     v.GetInt64("max_upload_size"),
		PublicBaseURL:     strings.TrimRight(v.GetString("public_base_url"), "/"),
		CORSAllowOrigins:  splitList(v.GetString("cors_allow_origins")),
		LogLevel:          v.GetString("log_level"),
		Storage: StorageConfig{
			Backend:          strings.ToLower(v.GetString("storage_backend")),
			UploadPrefix:     strings.Trim(v.GetString("upload_prefix"), "/"),
			AvatarPrefix:     strings.Trim(v.GetString("avatar_prefix"), "/"),
			LocalDir:         v.GetString("local_storage_dir"),
			S3Bucket:         v.GetString("s3_bucket"),
			S3Region:         v.GetString("s3_region"),
			S3AccessKey:      v.GetString("s3_access_key"),
			S3SecretKey:      v.GetString("s3_secret_key"),
			S3Endpoint:       v.GetString("s3_endpoint"),
			S3PublicACL:      v.GetBool("s3_public_acl"),
			S3PublicBaseURL:  strings.TrimRight(v.GetString("s3_public_base_url"), "/"),
			AzureAccountName: v.GetString("azure_account_name"),
			AzureAccountKey:  v.GetString("azure_account_key"),
			AzureContainer:   v.GetString("azure_container"),
			AzureServiceURL:  v.GetString("azure_service_url"),
		},
		AI: AIConfig{
			DescribeProvider:  strings.ToLower(v.GetString("describe_provider")),
			GenerateProvider:  strings.ToLower(v.GetString("generate_provider")),
			Timeout:           v.GetDuration("ai_timeout"),
			OpenAIAPIKey:      v.GetString("openai_api_key"),
			OpenAIBaseURL:     strings.TrimRight(v.GetString("openai_base_url"), "/"),
			OpenAIVisionModel: v.GetString("openai_vision_model"),
			OpenAIImageModel:  v.GetString("openai_image_model"),
			GeminiAPIKey:      v.GetString("gemini_api_key"),
			GeminiVisionModel: v.GetString("gemini_vision_model"),
			GeminiImageModel:  v.GetString("gemini_image_model"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("request_timeout", 120*time.Second)
	v.SetDefault("image_fetch_timeout", 30*time.Second)
	v.SetDefault("max_upload_size", DefaultMaxUploadSize)
	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("cors_allow_origins", "*")
	v.SetDefault("log_level", "info")

	v.SetDefault("storage_backend", StorageLocal)
	v.SetDefault("upload_prefix", "facecraft-uploads")
	v.SetDefault("avatar_prefix", "facecraft-avatars")
	v.SetDefault("local_storage_dir", "./data/blobs")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_public_acl", false)

	v.SetDefault("describe_provider", ProviderOpenAI)
	v.SetDefault("generate_provider", ProviderOpenAI)
	v.SetDefault("ai_timeout", 90*time.Second)
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("openai_vision_model", "gpt-4o-mini")
	v.SetDefault("openai_image_model", "dall-e-3")
	v.SetDefault("gemini_vision_model", "gemini-2.0-flash")
	v.SetDefault("gemini_image_model", "imagen-3.0-generate-002")
}

// Validate checks server settings and the credentials required by the
// selected storage backend and AI providers.
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", c.MaxUploadSize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AI.Timeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, ai=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AI.Timeout)
	}
	if _, err := url.ParseRequestURI(c.PublicBaseURL); err != nil {
		return fmt.Errorf("invalid PUBLIC_BASE_URL %q", c.PublicBaseURL)
	}
	if c.Storage.UploadPrefix == "" || c.Storage.AvatarPrefix == "" {
		return fmt.Errorf("UPLOAD_PREFIX and AVATAR_PREFIX are required")
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("LOCAL_STORAGE_DIR required for local storage")
		}
	case StorageS3:
		if c.Storage.S3Bucket == "" || c.Storage.S3AccessKey == "" || c.Storage.S3SecretKey == "" {
			return fmt.Errorf("S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY required for s3 storage")
		}
	case StorageAzure:
		if c.Storage.AzureAccountName == "" || c.Storage.AzureAccountKey == "" || c.Storage.AzureContainer == "" {
			return fmt.Errorf("AZURE_ACCOUNT_NAME, AZURE_ACCOUNT_KEY and AZURE_CONTAINER required for azure storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND: %q", c.Storage.Backend)
	}

	for _, provider := range []string{c.AI.DescribeProvider, c.AI.GenerateProvider} {
		switch provider {
		case ProviderOpenAI:
			if c.AI.OpenAIAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY required for the openai provider")
			}
		case ProviderGemini:
			if c.AI.GeminiAPIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY required for the gemini provider")
			}
		case ProviderMock:
		default:
			return fmt.Errorf("unsupported AI provider: %q", provider)
		}
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
