// Package panel talks to the e-commerce admin panel REST API on behalf of a chat.
package panel

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/config"
	"github.com/futig/panel-product-bot/internal/entity"
	"github.com/futig/panel-product-bot/internal/session"
	"github.com/futig/panel-product-bot/internal/store"
	pkghttp "github.com/futig/panel-product-bot/pkg/http"
)

const (
	CategoriesPath   = "/api/management/v1/categories/?page=1"
	ProductsPath     = "/api/management/v1/products/"
	ProductImagePath = "/api/management/v1/products/%d/images/"
	AdminPath        = "/admin/"
)

// SessionSource exposes the chat sessions created by a login.
type SessionSource interface {
	Get(chatID entity.ChatID) (*session.Session, bool)
	CurrentCSRFToken(chatID entity.ChatID) (string, bool)
}

// Gateway performs single-attempt calls against the admin panel. Credentials
// are resolved per call, so a chat may switch between modes between calls.
type Gateway struct {
	sites    *store.KV[entity.ChatID, entity.SiteConfig]
	tokens   *store.KV[entity.ChatID, entity.APICredential]
	sessions SessionSource
	client   *http.Client
	cfg      config.PanelConfig
	logger   *zap.Logger
}

func NewGateway(
	cfg config.PanelConfig,
	sites *store.KV[entity.ChatID, entity.SiteConfig],
	tokens *store.KV[entity.ChatID, entity.APICredential],
	sessions SessionSource,
	logger *zap.Logger,
) *Gateway {
	return &Gateway{
		sites:    sites,
		tokens:   tokens,
		sessions: sessions,
		client:   pkghttp.NewClient(ClientOptions(cfg)...),
		cfg:      cfg,
		logger:   logger,
	}
}

// ClientOptions returns the HTTP options shared by every panel client,
// including the per-chat session clients.
func ClientOptions(cfg config.PanelConfig) []pkghttp.HttpOpts {
	opts := []pkghttp.HttpOpts{
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithConnClientTimeout(cfg.ConnTimeout),
		pkghttp.WithClientKeepAlive(cfg.KeepAlive),
		pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkghttp.WithRequestLogging(),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, pkghttp.WithUserAgent(cfg.UserAgent))
	}
	return opts
}
