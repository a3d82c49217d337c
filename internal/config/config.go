package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/futig/panel-product-bot/internal/entity"
	pkgRetry "github.com/futig/panel-product-bot/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram bot configuration
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Admin panel configuration
	PanelCfg PanelConfig `envPrefix:"PANEL_"`

	// Image upload limits
	ImageUploadCfg ImageUploadConfig `envPrefix:"IMAGE_UPLOAD_"`

	// Diagnostics server, empty disables it
	DiagnosticsAddr string `env:"DIAGNOSTICS_ADDR"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string               `env:"BOT_TOKEN,notEmpty"`
	UpdateTimeout      int                  `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int                  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int                  `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int                  `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	MessageChunkSize   int                  `env:"MESSAGE_CHUNK_SIZE" envDefault:"4000"`
	SendRetry          pkgRetry.RetryConfig `envPrefix:"SEND_RETRY_"`
}

// PanelConfig holds admin panel client settings. The panel address itself
// is supplied per chat during the conversation.
type PanelConfig struct {
	HTTPClientConfig
	CredentialMode    entity.CredentialMode `env:"CREDENTIAL_MODE" envDefault:"api_key"`
	LoginCSRFFallback string                `env:"LOGIN_CSRF_FALLBACK"`
	UserAgent         string                `env:"USER_AGENT" envDefault:"panel-product-bot/1.0"`
	MaxCategoryPages  int                   `env:"MAX_CATEGORY_PAGES" envDefault:"100"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"30s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
}

// ImageUploadConfig holds product image limits
type ImageUploadConfig struct {
	MaxFileSize       int64    `env:"MAX_FILE_SIZE" envDefault:"2097152"` // 2 MiB
	AllowedExtensions []string `env:"ALLOWED_EXTENSIONS" envDefault:"jpg,jpeg,png,gif,webp" envSeparator:","`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	for i, ext := range cfg.ImageUploadCfg.AllowedExtensions {
		cfg.ImageUploadCfg.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel))
	}

	// Validate Telegram configuration
	if cfg.TelegramCfg.UpdateTimeout < 1 || cfg.TelegramCfg.UpdateTimeout > 600 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_UPDATE_TIMEOUT must be between 1 and 600 seconds, got %d", cfg.TelegramCfg.UpdateTimeout))
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.TelegramCfg.MessageChunkSize < 1 || cfg.TelegramCfg.MessageChunkSize > 4096 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_MESSAGE_CHUNK_SIZE must be between 1 and 4096, got %d", cfg.TelegramCfg.MessageChunkSize))
	}

	if cfg.TelegramCfg.SendRetry.Attempts < 1 {
		errors = append(errors, "TELEGRAM_SEND_RETRY_ATTEMPTS must be at least 1")
	}

	// Validate panel configuration
	if !cfg.PanelCfg.CredentialMode.Valid() {
		errors = append(errors, fmt.Sprintf("PANEL_CREDENTIAL_MODE must be api_key or session, got %q", cfg.PanelCfg.CredentialMode))
	}

	if cfg.PanelCfg.MaxCategoryPages < 1 {
		errors = append(errors, fmt.Sprintf("PANEL_MAX_CATEGORY_PAGES must be positive, got %d", cfg.PanelCfg.MaxCategoryPages))
	}

	if cfg.PanelCfg.RequestTimeout <= 0 {
		errors = append(errors, "PANEL_TIMEOUT must be positive")
	}

	// Validate image upload configuration
	if cfg.ImageUploadCfg.MaxFileSize < 1 {
		errors = append(errors, fmt.Sprintf("IMAGE_UPLOAD_MAX_FILE_SIZE must be positive, got %d", cfg.ImageUploadCfg.MaxFileSize))
	}

	if len(cfg.ImageUploadCfg.AllowedExtensions) == 0 {
		errors = append(errors, "IMAGE_UPLOAD_ALLOWED_EXTENSIONS must not be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
