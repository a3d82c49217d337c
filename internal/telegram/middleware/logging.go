package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/entity"
	pkglogger "github.com/futig/panel-product-bot/internal/pkg/logger"
)

// LoggingMiddleware attaches a request-scoped logger and logs every update
type LoggingMiddleware struct {
	logger *zap.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger,
	}
}

// Handle logs the update and passes a logger with trace_id and chat fields down the chain
func (m *LoggingMiddleware) Handle(ctx context.Context, update tgbotapi.Update, next HandlerFunc) {
	start := time.Now()
	info := Describe(update)

	ctx = ctxzap.ToContext(ctx, m.logger.With(
		zap.String("trace_id", uuid.NewString()),
		zap.Int64("user_id", info.UserID),
	))
	ctx = pkglogger.WithChat(ctx, entity.ChatIDFromInt(info.ChatID))
	logger := ctxzap.Extract(ctx)

	logger.Info("telegram update received",
		zap.String("type", info.Type),
		zap.Int("update_id", update.UpdateID),
	)

	next(ctx, update)

	logger.Info("telegram update processed",
		zap.Duration("duration", time.Since(start)),
	)
}
