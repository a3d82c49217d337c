package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/config"
	"github.com/futig/panel-product-bot/internal/telegram/bot"
	"github.com/futig/panel-product-bot/internal/telegram/transport"
	pkghttp "github.com/futig/panel-product-bot/pkg/http"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// Transport bundles the Bot API adapters used by the workflow engine
type Transport struct {
	API      *tgbotapi.BotAPI
	Sender   *transport.MessageSender
	Files    *transport.FileFetcher
	Activity *transport.TypingNotifier
}

// NewTransport authorizes the bot token and builds the Bot API adapters.
// Image downloads are capped at maxDownload bytes.
func NewTransport(cfg *config.TelegramConfig, maxDownload int64, logger *zap.Logger) (*Transport, error) {
	client := pkghttp.NewClient(pkghttp.WithLongPoll(time.Duration(cfg.UpdateTimeout) * time.Second))

	api, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	return &Transport{
		API:      api,
		Sender:   transport.NewMessageSender(api, &cfg.SendRetry),
		Files:    transport.NewFileFetcher(api, cfg.BotToken, tgbotapi.FileEndpoint, maxDownload, pkghttp.NewClient()),
		Activity: transport.NewTypingNotifier(api),
	}, nil
}

// NewBot wires the update loop to the workflow engine
func NewBot(cfg *config.TelegramConfig, t *Transport, engine bot.Engine, logger *zap.Logger) Bot {
	b := bot.New(cfg, t.API, engine, t.Sender, logger)
	logger.Info("telegram bot initialized successfully")
	return b
}
