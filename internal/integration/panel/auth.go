package panel

import (
	"context"
	"fmt"

	"github.com/futig/panel-product-bot/internal/entity"
	"github.com/futig/panel-product-bot/internal/pkg/logger"
	pkghttp "github.com/futig/panel-product-bot/pkg/http"
)

// AuthKind is the credential variant used for one gateway call.
type AuthKind string

const (
	AuthSession AuthKind = "session"
	AuthAPIKey  AuthKind = "api_key"
)

type auth struct {
	kind   AuthKind
	origin string
	csrf   string
	conn   *pkghttp.Connector
	opts   []pkghttp.RequestOpt
}

// ResolveAuth reports which credential variant the next call for chatID would use.
func (g *Gateway) ResolveAuth(chatID entity.ChatID) (AuthKind, error) {
	a, err := g.resolveAuth(chatID)
	if err != nil {
		return "", err
	}
	return a.kind, nil
}

// resolveAuth prefers a login session over a stored API key.
func (g *Gateway) resolveAuth(chatID entity.ChatID) (*auth, error) {
	if sess, ok := g.sessions.Get(chatID); ok {
		origin := sess.Origin()
		a := &auth{
			kind:   AuthSession,
			origin: origin,
			conn: pkghttp.NewConnector(&pkghttp.ConnectorConfig{
				BaseURL: origin,
				Client:  sess.Client,
				Logger:  g.logger,
			}),
			opts: originHeaders(origin),
		}
		if csrf, ok := g.sessions.CurrentCSRFToken(chatID); ok {
			a.csrf = csrf
			a.opts = append(a.opts, pkghttp.WithHeader("X-CSRFToken", csrf))
		}
		return a, nil
	}

	site, ok := g.sites.Get(chatID)
	if !ok {
		return nil, entity.ErrNoSite
	}
	cred, ok := g.tokens.Get(chatID)
	if !ok || cred.Token == "" {
		return nil, entity.ErrNoCredentials
	}

	origin := site.Origin()
	return &auth{
		kind:   AuthAPIKey,
		origin: origin,
		conn: pkghttp.NewConnector(&pkghttp.ConnectorConfig{
			BaseURL: origin,
			Client:  g.client,
			Logger:  g.logger,
		}),
		opts: append(originHeaders(origin), pkghttp.WithHeader("Authorization", "Api-Key "+cred.Token)),
	}, nil
}

// requireWrite rejects state-changing calls a session cannot authorize.
func (a *auth) requireWrite() error {
	if a.kind == AuthSession && a.csrf == "" {
		return entity.ErrNoCSRFToken
	}
	return nil
}

func (a *auth) withURL(url string) []pkghttp.RequestOpt {
	opts := make([]pkghttp.RequestOpt, 0, len(a.opts)+1)
	opts = append(opts, a.opts...)
	return append(opts, pkghttp.WithURL(url))
}

func (a *auth) logContext(ctx context.Context, action string) context.Context {
	return logger.WithPanelCall(ctx, string(a.kind), a.origin, action)
}

func originHeaders(origin string) []pkghttp.RequestOpt {
	return []pkghttp.RequestOpt{
		pkghttp.WithHeader("Origin", origin),
		pkghttp.WithHeader("Referer", fmt.Sprintf("%s%s", origin, AdminPath)),
	}
}
