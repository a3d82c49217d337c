package logger

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/futig/panel-product-bot/internal/entity"
)

func observed() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return ctxzap.ToContext(context.Background(), zap.New(core)), logs
}

func TestWithChat_TagsOnce(t *testing.T) {
	ctx, logs := observed()

	ctx = WithChat(ctx, "42")
	ctx = WithChat(ctx, "42")
	ctxzap.Info(ctx, "step")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].Context
	count := 0
	for _, f := range fields {
		if f.Key == "chat_id" {
			count++
			assert.Equal(t, "42", f.String)
		}
	}
	assert.Equal(t, 1, count)

	chatID, ok := ChatFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, entity.ChatID("42"), chatID)
}

func TestWithChat_OtherChat(t *testing.T) {
	ctx, _ := observed()

	ctx = WithChat(ctx, "1")
	ctx = WithChat(ctx, "2")

	chatID, ok := ChatFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, entity.ChatID("2"), chatID)

	_, ok = ChatFrom(context.Background())
	assert.False(t, ok)
}

func TestWithPanelCall(t *testing.T) {
	ctx, logs := observed()

	ctx = WithPanelCall(ctx, "session", "https://panel.example.com", "create_product")
	ctxzap.Info(ctx, "request")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "session", fields["auth_mode"])
	assert.Equal(t, "https://panel.example.com", fields["panel"])
	assert.Equal(t, "create_product", fields["action"])
}
