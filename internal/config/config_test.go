package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolateEnv clears every variable Load reads so the host environment cannot
// leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "API_PORT", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS",
		"API_MAX_IN_FLIGHT", "API_BACKPRESSURE_WAIT",
		"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_SHUTDOWN_TIMEOUT",
		"STORAGE_BACKEND", "MY_AWS_ACCESS_KEY_ID", "MY_AWS_SECRET_ACCESS_KEY",
		"MY_AWS_DEFAULT_REGION", "MY_AWS_STORAGE_BUCKET_NAME", "S3_ENDPOINT", "S3_USE_SSL",
		"AZURE_STORAGE_CONNECTION_STRING", "AZURE_STORAGE_ACCOUNT_URL", "AZURE_STORAGE_CONTAINER", "STORAGE_PATH",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_ORGANIZATION",
		"OPENAI_PROJECT", "OPENAI_FALLBACK_API_KEY", "OPENAI_TIMEOUT",
		"MODEL_TOKEN_LIMIT", "RESERVED_RESPONSE_TOKENS", "CLASSIFY_MAX_TOKENS",
		"CLASSIFY_TEMPERATURE", "TOKENIZER_ENCODING", "NATS_URL", "NATS_SUBJECT_PREFIX",
		"POSTGRES_DSN", "BREAKER_ENABLED", "BREAKER_MIN_REQUESTS", "BREAKER_FAILURE_RATIO",
		"BREAKER_OPEN_TIMEOUT", "BREAKER_HALF_OPEN_MAX_CALLS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MY_AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("MY_AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("MY_AWS_STORAGE_BUCKET_NAME", "documents-bucket")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AWSRegion != "eu-north-1" {
		t.Fatalf("expected default region eu-north-1, got %q", cfg.AWSRegion)
	}
	if cfg.StorageBackend != BackendS3 || !cfg.S3UseSSL {
		t.Fatalf("unexpected storage defaults: %q ssl=%v", cfg.StorageBackend, cfg.S3UseSSL)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" || cfg.ModelTokenLimit != 4096 || cfg.ReservedResponseTokens != 70 {
		t.Fatalf("unexpected classifier defaults: %+v", cfg)
	}
	if cfg.ClassifyMaxTokens != 10 || cfg.ClassifyTemperature != 0.5 {
		t.Fatalf("unexpected completion defaults: %d %v", cfg.ClassifyMaxTokens, cfg.ClassifyTemperature)
	}
	if cfg.AWSBucket != "documents-bucket" || cfg.AWSAccessKeyID != "AKIA" {
		t.Fatalf("credentials not read from MY_AWS_* variables")
	}
	if cfg.NATSURL != "" || cfg.PostgresDSN != "" {
		t.Fatalf("optional integrations must default to disabled")
	}
}

func TestLoadFailsWithoutStorageCredentials(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for missing storage credentials")
	}
	if !strings.Contains(err.Error(), "MY_AWS_ACCESS_KEY_ID") || !strings.Contains(err.Error(), "MY_AWS_STORAGE_BUCKET_NAME") {
		t.Fatalf("error should name the missing variables, got %v", err)
	}
}

func TestLoadFailsWithoutOpenAIKey(t *testing.T) {
	isolateEnv(t)
	setRequired(t)
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing OPENAI_API_KEY error, got %v", err)
	}
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	isolateEnv(t)
	setRequired(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
api_port: "9000"
openai_model: gpt-4o
breaker_open_timeout: 45s
cors_allowed_origins:
  - http://localhost:3000
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9000" {
		t.Fatalf("expected yaml port, got %q", cfg.APIPort)
	}
	if cfg.OpenAIModel != "gpt-4.1-mini" {
		t.Fatalf("expected env to override yaml, got %q", cfg.OpenAIModel)
	}
	if cfg.BreakerOpenTimeout != 45*time.Second {
		t.Fatalf("expected yaml duration, got %v", cfg.BreakerOpenTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	isolateEnv(t)
	setRequired(t)
	os.Unsetenv("NATS_SUBJECT_PREFIX")
	t.Cleanup(func() { os.Unsetenv("NATS_SUBJECT_PREFIX") })

	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("NATS_SUBJECT_PREFIX=docs\nOPENAI_API_KEY=sk-from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", envPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NATSSubjectPrefix != "docs" {
		t.Fatalf("expected value from .env, got %q", cfg.NATSSubjectPrefix)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Fatalf(".env must not override the environment, got %q", cfg.OpenAIAPIKey)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	isolateEnv(t)
	setRequired(t)
	t.Setenv("MODEL_TOKEN_LIMIT", "lots")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "MODEL_TOKEN_LIMIT") {
		t.Fatalf("expected parse error naming MODEL_TOKEN_LIMIT, got %v", err)
	}
}

func TestValidateBackends(t *testing.T) {
	cfg := Default()
	cfg.OpenAIAPIKey = "sk"

	cfg.StorageBackend = BackendAzure
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected azure backend to require a connection string")
	}
	cfg.AzureAccountURL = "https://acct.blob.core.windows.net/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("account url alone should validate: %v", err)
	}

	cfg.StorageBackend = BackendLocalFS
	if err := cfg.Validate(); err != nil {
		t.Fatalf("localfs with default path should validate: %v", err)
	}

	cfg.StorageBackend = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestLoadBackpressureSettings(t *testing.T) {
	isolateEnv(t)
	setRequired(t)
	t.Setenv("API_MAX_IN_FLIGHT", "32")
	t.Setenv("API_BACKPRESSURE_WAIT", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIMaxInFlight != 32 || cfg.APIBackpressureWait != 250*time.Millisecond {
		t.Fatalf("unexpected backpressure settings: %d %v", cfg.APIMaxInFlight, cfg.APIBackpressureWait)
	}

	t.Setenv("API_MAX_IN_FLIGHT", "-1")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "API_MAX_IN_FLIGHT") {
		t.Fatalf("expected negative in-flight error, got %v", err)
	}
}
