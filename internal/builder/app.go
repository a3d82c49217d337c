package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/telegram"
)

// App represents the application with all its components
type App struct {
	bot             telegram.Bot
	server          *http.Server
	logger          *zap.Logger
	shutdownTimeout time.Duration
}

// Logger returns the application logger
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Run starts the bot and the optional diagnostics server, then blocks until
// a shutdown signal or a server failure.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.bot.Start(ctx); err != nil {
		return err
	}

	errChan := make(chan error, 1)
	if a.server != nil {
		go func() {
			a.logger.Info("Starting diagnostics server", zap.String("addr", a.server.Addr))
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		a.logger.Error("Diagnostics server error", zap.Error(err))
		runErr = err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown stops intake first, then lets in-flight chats finish
func (a *App) shutdown() error {
	var errs []error

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("Diagnostics server shutdown error", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if err := a.bot.Stop(); err != nil {
		a.logger.Error("Telegram bot stop error", zap.Error(err))
		errs = append(errs, err)
	}

	a.logger.Info("Application stopped")
	_ = a.logger.Sync()

	return errors.Join(errs...)
}
