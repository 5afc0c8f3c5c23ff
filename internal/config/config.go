package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendS3      = "s3"
	BackendAzure   = "azure"
	BackendLocalFS = "localfs"
)

type Config struct {
	APIPort             string        `yaml:"api_port"`
	LogLevel            string        `yaml:"log_level"`
	LogFormat           string        `yaml:"log_format"`
	HTTPReadTimeout     time.Duration `yaml:"http_read_timeout"`
	HTTPWriteTimeout    time.Duration `yaml:"http_write_timeout"`
	HTTPShutdownTimeout time.Duration `yaml:"http_shutdown_timeout"`
	CORSAllowedOrigins  []string      `yaml:"cors_allowed_origins"`
	APIMaxInFlight      int           `yaml:"api_max_in_flight"`
	APIBackpressureWait time.Duration `yaml:"api_backpressure_wait"`

	StorageBackend string `yaml:"storage_backend"`

	AWSAccessKeyID     string `yaml:"aws_access_key_id"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key"`
	AWSRegion          string `yaml:"aws_region"`
	AWSBucket          string `yaml:"aws_bucket"`
	S3Endpoint         string `yaml:"s3_endpoint"`
	S3UseSSL           bool   `yaml:"s3_use_ssl"`

	AzureConnectionString string `yaml:"azure_connection_string"`
	AzureAccountURL       string `yaml:"azure_account_url"`
	AzureContainer        string `yaml:"azure_container"`

	StoragePath string `yaml:"storage_path"`

	OpenAIAPIKey         string        `yaml:"openai_api_key"`
	OpenAIBaseURL        string        `yaml:"openai_base_url"`
	OpenAIModel          string        `yaml:"openai_model"`
	OpenAIOrganization   string        `yaml:"openai_organization"`
	OpenAIProject        string        `yaml:"openai_project"`
	OpenAIFallbackAPIKey string        `yaml:"openai_fallback_api_key"`
	OpenAITimeout        time.Duration `yaml:"openai_timeout"`

	ModelTokenLimit        int     `yaml:"model_token_limit"`
	ReservedResponseTokens int     `yaml:"reserved_response_tokens"`
	ClassifyMaxTokens      int     `yaml:"classify_max_tokens"`
	ClassifyTemperature    float64 `yaml:"classify_temperature"`
	TokenizerEncoding      string  `yaml:"tokenizer_encoding"`

	NATSURL           string `yaml:"nats_url"`
	NATSSubjectPrefix string `yaml:"nats_subject_prefix"`

	PostgresDSN string `yaml:"postgres_dsn"`

	BreakerEnabled          bool          `yaml:"breaker_enabled"`
	BreakerMinRequests      int           `yaml:"breaker_min_requests"`
	BreakerFailureRatio     float64       `yaml:"breaker_failure_ratio"`
	BreakerOpenTimeout      time.Duration `yaml:"breaker_open_timeout"`
	BreakerHalfOpenMaxCalls int           `yaml:"breaker_half_open_max_calls"`
}

func Default() Config {
	return Config{
		APIPort:             "8080",
		LogLevel:            "info",
		LogFormat:           "json",
		HTTPReadTimeout:     15 * time.Second,
		HTTPWriteTimeout:    90 * time.Second,
		HTTPShutdownTimeout: 10 * time.Second,
		APIBackpressureWait: 2 * time.Second,

		StorageBackend: BackendS3,
		AWSRegion:      "eu-north-1",
		S3UseSSL:       true,
		AzureContainer: "documents",
		StoragePath:    "./data/storage",

		OpenAIBaseURL: "https://api.openai.com/v1",
		OpenAIModel:   "gpt-4o-mini",
		OpenAITimeout: 60 * time.Second,

		ModelTokenLimit:        4096,
		ReservedResponseTokens: 70,
		ClassifyMaxTokens:      10,
		ClassifyTemperature:    0.5,
		TokenizerEncoding:      "o200k_base",

		NATSSubjectPrefix: "documents",

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// Load resolves configuration from defaults, the optional CONFIG_FILE yaml,
// an optional .env file (ENV_FILE, default ".env") and the process
// environment, in that order, then validates it.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	envFile := envOr("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("API_PORT", &c.APIPort)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	duration("HTTP_READ_TIMEOUT", &c.HTTPReadTimeout)
	duration("HTTP_WRITE_TIMEOUT", &c.HTTPWriteTimeout)
	duration("HTTP_SHUTDOWN_TIMEOUT", &c.HTTPShutdownTimeout)
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
	integer("API_MAX_IN_FLIGHT", &c.APIMaxInFlight)
	duration("API_BACKPRESSURE_WAIT", &c.APIBackpressureWait)

	str("STORAGE_BACKEND", &c.StorageBackend)
	str("MY_AWS_ACCESS_KEY_ID", &c.AWSAccessKeyID)
	str("MY_AWS_SECRET_ACCESS_KEY", &c.AWSSecretAccessKey)
	str("MY_AWS_DEFAULT_REGION", &c.AWSRegion)
	str("MY_AWS_STORAGE_BUCKET_NAME", &c.AWSBucket)
	str("S3_ENDPOINT", &c.S3Endpoint)
	boolean("S3_USE_SSL", &c.S3UseSSL)
	str("AZURE_STORAGE_CONNECTION_STRING", &c.AzureConnectionString)
	str("AZURE_STORAGE_ACCOUNT_URL", &c.AzureAccountURL)
	str("AZURE_STORAGE_CONTAINER", &c.AzureContainer)
	str("STORAGE_PATH", &c.StoragePath)

	str("OPENAI_API_KEY", &c.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &c.OpenAIBaseURL)
	str("OPENAI_MODEL", &c.OpenAIModel)
	str("OPENAI_ORGANIZATION", &c.OpenAIOrganization)
	str("OPENAI_PROJECT", &c.OpenAIProject)
	str("OPENAI_FALLBACK_API_KEY", &c.OpenAIFallbackAPIKey)
	duration("OPENAI_TIMEOUT", &c.OpenAITimeout)

	integer("MODEL_TOKEN_LIMIT", &c.ModelTokenLimit)
	integer("RESERVED_RESPONSE_TOKENS", &c.ReservedResponseTokens)
	integer("CLASSIFY_MAX_TOKENS", &c.ClassifyMaxTokens)
	float("CLASSIFY_TEMPERATURE", &c.ClassifyTemperature)
	str("TOKENIZER_ENCODING", &c.TokenizerEncoding)

	str("NATS_URL", &c.NATSURL)
	str("NATS_SUBJECT_PREFIX", &c.NATSSubjectPrefix)
	str("POSTGRES_DSN", &c.PostgresDSN)

	boolean("BREAKER_ENABLED", &c.BreakerEnabled)
	integer("BREAKER_MIN_REQUESTS", &c.BreakerMinRequests)
	float("BREAKER_FAILURE_RATIO", &c.BreakerFailureRatio)
	duration("BREAKER_OPEN_TIMEOUT", &c.BreakerOpenTimeout)
	integer("BREAKER_HALF_OPEN_MAX_CALLS", &c.BreakerHalfOpenMaxCalls)

	return errors.Join(errs...)
}

// Validate reports every missing or out-of-range setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendS3:
		if c.AWSAccessKeyID == "" || c.AWSSecretAccessKey == "" {
			errs = append(errs, errors.New("MY_AWS_ACCESS_KEY_ID and MY_AWS_SECRET_ACCESS_KEY are required for the s3 backend"))
		}
		if c.AWSBucket == "" {
			errs = append(errs, errors.New("MY_AWS_STORAGE_BUCKET_NAME is required for the s3 backend"))
		}
	case BackendAzure:
		if c.AzureConnectionString == "" && c.AzureAccountURL == "" {
			errs = append(errs, errors.New("AZURE_STORAGE_CONNECTION_STRING or AZURE_STORAGE_ACCOUNT_URL is required for the azure backend"))
		}
	case BackendLocalFS:
		if c.StoragePath == "" {
			errs = append(errs, errors.New("STORAGE_PATH is required for the localfs backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.ModelTokenLimit <= 0 {
		errs = append(errs, errors.New("MODEL_TOKEN_LIMIT must be positive"))
	}
	if c.ReservedResponseTokens < 0 {
		errs = append(errs, errors.New("RESERVED_RESPONSE_TOKENS must not be negative"))
	}
	if c.ClassifyMaxTokens <= 0 {
		errs = append(errs, errors.New("CLASSIFY_MAX_TOKENS must be positive"))
	}
	if c.APIMaxInFlight < 0 {
		errs = append(errs, errors.New("API_MAX_IN_FLIGHT must not be negative"))
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		errs = append(errs, errors.New("BREAKER_FAILURE_RATIO must be in (0, 1]"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
