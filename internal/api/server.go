package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/api/diagnostics"
	"github.com/futig/panel-product-bot/internal/api/middleware"
	"github.com/futig/panel-product-bot/internal/pkg/response"
)

const requestTimeout = 10 * time.Second

// SetupRouter creates the diagnostics HTTP router
func SetupRouter(handler *diagnostics.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	diagnostics.RegisterRoutes(r, handler)

	return r
}
