package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/config"
	"github.com/futig/panel-product-bot/internal/conversation"
	"github.com/futig/panel-product-bot/internal/entity"
	"github.com/futig/panel-product-bot/internal/render"
	"github.com/futig/panel-product-bot/internal/store"
	"github.com/futig/panel-product-bot/internal/telegram/keyboard"
	"github.com/futig/panel-product-bot/internal/telegram/middleware"
)

// UpdateSource is the polling part of *tgbotapi.BotAPI
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Engine consumes workflow events
type Engine interface {
	Handle(ctx context.Context, ev conversation.Event) error
}

// Sender delivers messages that are not part of the workflow itself
type Sender interface {
	SendText(ctx context.Context, chatID entity.ChatID, text string) error
	SendWithKeyboard(ctx context.Context, chatID entity.ChatID, text string, markup tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string)
}

// Bot represents the Telegram bot
type Bot struct {
	api         UpdateSource
	cfg         *config.TelegramConfig
	engine      Engine
	sender      Sender
	keyboard    *keyboard.Builder
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	sequencer   *store.Sequencer
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	done        chan struct{}
}

// New creates a new Telegram bot
func New(cfg *config.TelegramConfig, api UpdateSource, engine Engine, sender Sender, logger *zap.Logger) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		engine:      engine,
		sender:      sender,
		keyboard:    keyboard.NewBuilder(),
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(sender),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, sender),
		sequencer:   store.NewSequencer(),
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start starts polling for updates
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(menuCommands...)); err != nil {
		b.logger.Warn("failed to publish bot commands", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx, b.updatesChan)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops receiving updates and waits for in-flight updates with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()
	defer b.rateLimitMW.Close()

	finished := make(chan struct{})
	go func() {
		<-b.done
		b.sequencer.Wait()
		close(finished)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-finished:
		b.logger.Info("all updates processed")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some updates may not have completed",
			zap.Duration("timeout", shutdownTimeout),
			zap.Int("active_chats", b.sequencer.Active()),
		)
		return errors.New("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates queues every update behind earlier updates of the same chat
func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer close(b.done)

	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-updates:
			if !ok {
				ctxzap.Info(ctx, "updates channel closed")
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	key := fmt.Sprintf("%d", middleware.Describe(update).ChatID)
	b.sequencer.Go(key, func() {
		b.handleUpdateWithMiddleware(context.WithoutCancel(ctx), update)
	})
}

// handleUpdateWithMiddleware runs the update through ratelimit, logging and recovery
func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(ctx, update, func(ctx context.Context, u tgbotapi.Update) {
		b.loggingMW.Handle(ctx, u, func(ctx context.Context, u tgbotapi.Update) {
			b.recoveryMW.Handle(ctx, u, b.handleUpdate)
		})
	})
}

// handleUpdate routes update to the workflow engine
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	ev, ok := EventFromMessage(message)
	if !ok {
		ctxzap.Debug(ctx, "ignoring unsupported message")
		return
	}

	if ev.Kind == conversation.InputCommand {
		ctxzap.Info(ctx, "command received",
			zap.String("command", message.Command()),
			zap.String("mapped", string(ev.Command)),
		)
	}

	b.handleEvent(ctx, ev)

	if ev.Kind == conversation.InputCommand && ev.Command == conversation.CommandStart {
		if err := b.sender.SendWithKeyboard(ctx, ev.ChatID, render.MsgChooseAction, b.keyboard.StartKeyboard()); err != nil {
			ctxzap.Error(ctx, "failed to send start keyboard", zap.Error(err))
		}
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	ev, ok := EventFromCallback(query)
	if !ok {
		ctxzap.Warn(ctx, "invalid callback data", zap.String("data", query.Data))
		b.sender.AnswerCallback(ctx, query.ID, render.ErrCallbackInvalid)
		return
	}

	ctxzap.Info(ctx, "callback query received", zap.String("command", string(ev.Command)))
	b.sender.AnswerCallback(ctx, query.ID, "")

	b.handleEvent(ctx, ev)
}

func (b *Bot) handleEvent(ctx context.Context, ev conversation.Event) {
	if err := b.engine.Handle(ctx, ev); err != nil {
		ctxzap.Warn(ctx, "workflow reset after failure", zap.Error(err))
	}
}
