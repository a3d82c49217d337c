package builder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBot struct {
	started bool
	stopped bool
	stopErr error
}

func (b *fakeBot) Start(context.Context) error {
	b.started = true
	return nil
}

func (b *fakeBot) Stop() error {
	b.stopped = true
	return b.stopErr
}

func TestAppShutdownStopsBot(t *testing.T) {
	bot := &fakeBot{}
	app := &App{bot: bot, logger: zap.NewNop(), shutdownTimeout: time.Second}

	require.NoError(t, app.shutdown())
	assert.True(t, bot.stopped)
}

func TestAppShutdownReportsStopError(t *testing.T) {
	bot := &fakeBot{stopErr: errors.New("shutdown timeout exceeded")}
	app := &App{bot: bot, logger: zap.NewNop(), shutdownTimeout: time.Second}

	err := app.shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown timeout exceeded")
}
