package logger

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/entity"
)

type chatKey struct{}

// AddFields adds fields to the logger in context and returns new context
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	logger := ctxzap.Extract(ctx)
	return ctxzap.ToContext(ctx, logger.With(fields...))
}

// WithAction adds "action" field to context logger to describe the flow
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String("action", action))
}

// WithChat tags the context logger with chat_id once per chat. A context
// already scoped to the same chat is returned unchanged.
func WithChat(ctx context.Context, chatID entity.ChatID) context.Context {
	if current, ok := ChatFrom(ctx); ok && current == chatID {
		return ctx
	}
	ctx = context.WithValue(ctx, chatKey{}, chatID)
	return AddFields(ctx, zap.String("chat_id", string(chatID)))
}

// ChatFrom returns the chat the context was scoped to by WithChat.
func ChatFrom(ctx context.Context) (entity.ChatID, bool) {
	chatID, ok := ctx.Value(chatKey{}).(entity.ChatID)
	return chatID, ok
}

// WithPanelCall describes one admin panel request: the credential used,
// the panel origin and the operation.
func WithPanelCall(ctx context.Context, authMode, origin, action string) context.Context {
	ctx = AddFields(ctx,
		zap.String("auth_mode", authMode),
		zap.String("panel", origin),
	)
	return WithAction(ctx, action)
}
