package middleware

import (
	"context"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/entity"
)

const msgPanic = "❌ Something went wrong. Try again or send /start"

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	notifier Notifier
}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware(notifier Notifier) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		notifier: notifier,
	}
}

// Handle recovers from panics and tells the chat about the failure
func (m *RecoveryMiddleware) Handle(ctx context.Context, update tgbotapi.Update, next HandlerFunc) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		ctxzap.Error(ctx, "panic recovered in telegram handler",
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())),
			zap.Int("update_id", update.UpdateID),
		)

		if chatID := Describe(update).ChatID; chatID != 0 {
			if err := m.notifier.SendText(ctx, entity.ChatIDFromInt(chatID), msgPanic); err != nil {
				ctxzap.Error(ctx, "failed to send error message", zap.Error(err))
			}
		}
	}()

	next(ctx, update)
}
