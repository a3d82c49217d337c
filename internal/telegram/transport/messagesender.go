package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/avast/retry-go/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/conversation"
	"github.com/futig/panel-product-bot/internal/entity"
	pkgRetry "github.com/futig/panel-product-bot/internal/pkg/retry"
)

// MaxCaptionLength is the Telegram limit for media captions
const MaxCaptionLength = 1024

// MessageSender delivers outgoing messages, retrying transient failures
type MessageSender struct {
	api   API
	retry *pkgRetry.RetryConfig
}

// NewMessageSender creates a MessageSender. A nil retry config uses defaults.
func NewMessageSender(api API, retryCfg *pkgRetry.RetryConfig) *MessageSender {
	if retryCfg == nil || retryCfg.Attempts == 0 {
		retryCfg = pkgRetry.DefaultRetryConfig()
	}
	return &MessageSender{
		api:   api,
		retry: retryCfg,
	}
}

func (s *MessageSender) SendText(ctx context.Context, chatID entity.ChatID, text string) error {
	return s.send(ctx, tgbotapi.NewMessage(chatID.Int64(), text))
}

// SendWithKeyboard sends text with an inline keyboard attached
func (s *MessageSender) SendWithKeyboard(ctx context.Context, chatID entity.ChatID, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID.Int64(), text)
	msg.ReplyMarkup = markup
	return s.send(ctx, msg)
}

// SendPhoto re-sends an already uploaded file by id. Images that arrived as
// documents go back as documents, Telegram rejects them as photos.
func (s *MessageSender) SendPhoto(ctx context.Context, chatID entity.ChatID, photo conversation.PhotoRef, caption string) error {
	caption = TruncateCaption(caption)
	if photo.FileName != "" {
		doc := tgbotapi.NewDocument(chatID.Int64(), tgbotapi.FileID(photo.FileID))
		doc.Caption = caption
		return s.send(ctx, doc)
	}

	msg := tgbotapi.NewPhoto(chatID.Int64(), tgbotapi.FileID(photo.FileID))
	msg.Caption = caption
	return s.send(ctx, msg)
}

// AnswerCallback acknowledges a button press
func (s *MessageSender) AnswerCallback(ctx context.Context, callbackID, text string) {
	if _, err := s.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		ctxzap.Warn(ctx, "failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

func (s *MessageSender) send(ctx context.Context, c tgbotapi.Chattable) error {
	err := s.retry.Do(ctx, func() error {
		_, err := s.api.Send(c)
		if err != nil && permanent(err) {
			return retry.Unrecoverable(err)
		}
		return err
	}, retry.OnRetry(func(attempt uint, err error) {
		ctxzap.Warn(ctx, "failed to send message, retrying",
			zap.Error(err),
			zap.Uint("attempt", attempt+1),
		)
	}))
	if err != nil {
		ctxzap.Error(ctx, "failed to send message", zap.Error(err))
	}
	return err
}

// permanent reports Bot API rejections that a retry cannot fix
func permanent(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code >= http.StatusBadRequest &&
		apiErr.Code < http.StatusInternalServerError &&
		apiErr.Code != http.StatusTooManyRequests
}

// TruncateCaption cuts a caption to MaxCaptionLength runes
func TruncateCaption(caption string) string {
	runes := []rune(caption)
	if len(runes) <= MaxCaptionLength {
		return caption
	}
	return string(runes[:MaxCaptionLength-1]) + "…"
}
