package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/panel-product-bot/internal/entity"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4000, cfg.TelegramCfg.MessageChunkSize)
	assert.Equal(t, uint(3), cfg.TelegramCfg.SendRetry.Attempts)
	assert.Equal(t, entity.CredentialModeAPIKey, cfg.PanelCfg.CredentialMode)
	assert.Equal(t, 30*time.Second, cfg.PanelCfg.RequestTimeout)
	assert.Equal(t, int64(2*1024*1024), cfg.ImageUploadCfg.MaxFileSize)
	assert.Equal(t, []string{"jpg", "jpeg", "png", "gif", "webp"}, cfg.ImageUploadCfg.AllowedExtensions)
	assert.Empty(t, cfg.DiagnosticsAddr)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("PANEL_CREDENTIAL_MODE", "session")
	t.Setenv("PANEL_TIMEOUT", "5s")
	t.Setenv("IMAGE_UPLOAD_ALLOWED_EXTENSIONS", ".PNG, jpg")
	t.Setenv("DIAGNOSTICS_ADDR", ":8081")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, entity.CredentialModeSession, cfg.PanelCfg.CredentialMode)
	assert.Equal(t, 5*time.Second, cfg.PanelCfg.RequestTimeout)
	assert.Equal(t, []string{"png", "jpg"}, cfg.ImageUploadCfg.AllowedExtensions)
	assert.Equal(t, ":8081", cfg.DiagnosticsAddr)
}

func TestParse_MissingBotToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParse_AggregatesValidationErrors(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("PANEL_CREDENTIAL_MODE", "oauth")
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PANEL_CREDENTIAL_MODE")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
