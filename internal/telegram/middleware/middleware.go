// Package middleware wraps Telegram update handling with cross-cutting concerns.
package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/panel-product-bot/internal/entity"
)

// HandlerFunc processes a single update
type HandlerFunc func(ctx context.Context, update tgbotapi.Update)

// Notifier delivers a text message to a chat
type Notifier interface {
	SendText(ctx context.Context, chatID entity.ChatID, text string) error
}

// UpdateInfo identifies the sender and the kind of an update
type UpdateInfo struct {
	UserID int64
	ChatID int64
	Type   string
}

// Describe extracts UpdateInfo. Type is empty for updates the bot ignores.
func Describe(update tgbotapi.Update) UpdateInfo {
	var info UpdateInfo

	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.From != nil {
			info.UserID = msg.From.ID
		}
		if msg.Chat != nil {
			info.ChatID = msg.Chat.ID
		}
		switch {
		case msg.IsCommand():
			info.Type = "command"
		case len(msg.Photo) > 0:
			info.Type = "photo"
		case msg.Document != nil:
			info.Type = "document"
		case msg.Text != "":
			info.Type = "text"
		default:
			info.Type = "other"
		}
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.From != nil {
			info.UserID = query.From.ID
		}
		if query.Message != nil && query.Message.Chat != nil {
			info.ChatID = query.Message.Chat.ID
		}
		info.Type = "callback"
	}

	return info
}
