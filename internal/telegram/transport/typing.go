package transport

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/conversation"
	"github.com/futig/panel-product-bot/internal/entity"
)

// Telegram chat actions expire after 5 seconds
const defaultActivityInterval = 4 * time.Second

// TypingNotifier repeats a chat action until stopped
type TypingNotifier struct {
	api      API
	interval time.Duration
}

func NewTypingNotifier(api API) *TypingNotifier {
	return &TypingNotifier{
		api:      api,
		interval: defaultActivityInterval,
	}
}

// StartActivity sends the action immediately and every interval after that.
// The returned stop func is safe to call more than once.
func (t *TypingNotifier) StartActivity(ctx context.Context, chatID entity.ChatID, activity conversation.Activity) func() {
	action := chatAction(activity)
	t.send(ctx, chatID, action)

	done := make(chan struct{})
	ticker := time.NewTicker(t.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.send(ctx, chatID, action)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (t *TypingNotifier) send(ctx context.Context, chatID entity.ChatID, action string) {
	if _, err := t.api.Request(tgbotapi.NewChatAction(chatID.Int64(), action)); err != nil {
		ctxzap.Debug(ctx, "failed to send chat action",
			zap.Error(err),
			zap.String("action", action),
		)
	}
}

func chatAction(activity conversation.Activity) string {
	if activity == conversation.ActivityUploadPhoto {
		return tgbotapi.ChatUploadPhoto
	}
	return tgbotapi.ChatTyping
}
