package builder

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/api"
	"github.com/futig/panel-product-bot/internal/api/diagnostics"
	"github.com/futig/panel-product-bot/internal/config"
	"github.com/futig/panel-product-bot/internal/conversation"
	"github.com/futig/panel-product-bot/internal/entity"
	"github.com/futig/panel-product-bot/internal/integration/panel"
	"github.com/futig/panel-product-bot/internal/pkg/validator"
	"github.com/futig/panel-product-bot/internal/session"
	"github.com/futig/panel-product-bot/internal/store"
	"github.com/futig/panel-product-bot/internal/telegram"
)

// BuildTelegramBot loads configuration and wires the bot with all its dependencies
func BuildTelegramBot() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
		zap.String("credential_mode", string(cfg.PanelCfg.CredentialMode)),
	)

	// Per-chat credential stores
	sites := store.NewKV[entity.ChatID, entity.SiteConfig]()
	tokens := store.NewKV[entity.ChatID, entity.APICredential]()
	sessions := session.NewStore(session.Config{
		CSRFFallback: cfg.PanelCfg.LoginCSRFFallback,
		UserAgent:    cfg.PanelCfg.UserAgent,
		HTTPOptions:  panel.ClientOptions(cfg.PanelCfg),
	})

	gateway := panel.NewGateway(cfg.PanelCfg, sites, tokens, sessions, logger)
	images := validator.NewImageValidator(cfg.ImageUploadCfg)
	logger.Info("Panel gateway initialized")

	tg, err := telegram.NewTransport(&cfg.TelegramCfg, cfg.ImageUploadCfg.MaxFileSize, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram transport: %w", err)
	}

	engine := conversation.New(
		conversation.Config{
			CredentialMode: cfg.PanelCfg.CredentialMode,
			ChunkSize:      cfg.TelegramCfg.MessageChunkSize,
		},
		conversation.Deps{
			Sites:    sites,
			Tokens:   tokens,
			Sessions: sessions,
			Gateway:  gateway,
			Replier:  tg.Sender,
			Files:    tg.Files,
			Activity: tg.Activity,
			Images:   images,
		},
	)

	bot := telegram.NewBot(&cfg.TelegramCfg, tg, engine, logger)

	var server *http.Server
	if cfg.DiagnosticsAddr != "" {
		router := api.SetupRouter(diagnostics.NewHandler(engine), logger)
		server = &http.Server{
			Addr:         cfg.DiagnosticsAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		logger.Info("Diagnostics server configured", zap.String("addr", cfg.DiagnosticsAddr))
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		bot:             bot,
		server:          server,
		logger:          logger,
		shutdownTimeout: time.Duration(cfg.TelegramCfg.ShutdownTimeout) * time.Second,
	}, nil
}
