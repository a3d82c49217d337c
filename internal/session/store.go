// Package session keeps one authenticated admin panel session per chat.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/futig/panel-product-bot/internal/entity"
	"github.com/futig/panel-product-bot/internal/store"
	pkghttp "github.com/futig/panel-product-bot/pkg/http"
)

const (
	LoginPath      = "/admin/login/?next=/admin/"
	LoginNext      = "/admin/"
	CSRFCookieName = "csrftoken"
)

// Session is the authenticated HTTP context of one chat. It is built
// completely before it becomes visible through the Store.
type Session struct {
	ChatID  entity.ChatID
	Client  *http.Client
	Jar     http.CookieJar
	BaseURL *url.URL
}

// Origin returns the session base URL without a trailing slash.
func (s *Session) Origin() string {
	return strings.TrimRight(s.BaseURL.String(), "/")
}

type LoginCode string

const (
	CodeClientBuild LoginCode = "client_build_error"
	CodePreGet      LoginCode = "pre_get_error"
	CodeRequest     LoginCode = "request_error"
	CodeHTTP        LoginCode = "http_error"
)

// LoginError reports which login step failed.
type LoginError struct {
	Code LoginCode
	Err  error
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed (%s): %v", e.Code, e.Err)
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

type Config struct {
	// CSRFFallback is sent as csrfmiddlewaretoken when the login page sets no csrftoken cookie.
	CSRFFallback string
	UserAgent    string
	HTTPOptions  []pkghttp.HttpOpts
}

type Store struct {
	sessions *store.KV[entity.ChatID, *Session]
	cfg      Config
}

func NewStore(cfg Config) *Store {
	return &Store{
		sessions: store.NewKV[entity.ChatID, *Session](),
		cfg:      cfg,
	}
}

// Login authenticates against the panel at baseURL and, on success, replaces
// the chat's session. On failure the store is left untouched.
func (s *Store) Login(ctx context.Context, chatID entity.ChatID, creds entity.LoginCredentials, baseURL string) error {
	origin := strings.TrimRight(baseURL, "/")
	base, err := url.Parse(origin)
	if err != nil || base.Host == "" {
		if err == nil {
			err = fmt.Errorf("invalid base url %q", baseURL)
		}
		return &LoginError{Code: CodeClientBuild, Err: err}
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return &LoginError{Code: CodeClientBuild, Err: err}
	}

	opts := append([]pkghttp.HttpOpts{}, s.cfg.HTTPOptions...)
	opts = append(opts, pkghttp.WithCookieJar(jar))
	if s.cfg.UserAgent != "" {
		opts = append(opts, pkghttp.WithUserAgent(s.cfg.UserAgent))
	}
	client := pkghttp.NewClient(opts...)

	conn := pkghttp.NewConnector(&pkghttp.ConnectorConfig{
		BaseURL: origin,
		Client:  client,
		Logger:  ctxzap.Extract(ctx),
	})

	// The login page status does not matter, only the cookie it sets.
	if _, err := conn.Do(ctx, http.MethodGet, LoginPath, nil, ""); err != nil {
		var httpErr *pkghttp.HTTPError
		if !errors.As(err, &httpErr) {
			return &LoginError{Code: CodePreGet, Err: err}
		}
	}

	loginURL := origin + LoginPath
	csrf, ok := csrfFromJar(jar, base)
	if !ok {
		csrf = s.cfg.CSRFFallback
	}

	form := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
		"next":     {LoginNext},
	}
	if csrf != "" {
		form.Set("csrfmiddlewaretoken", csrf)
	}

	_, err = conn.DoForm(ctx, http.MethodPost, LoginPath, form,
		pkghttp.WithHeader("Origin", origin),
		pkghttp.WithHeader("Referer", loginURL),
	)
	if err != nil {
		var httpErr *pkghttp.HTTPError
		if errors.As(err, &httpErr) {
			return &LoginError{Code: CodeHTTP, Err: err}
		}
		return &LoginError{Code: CodeRequest, Err: err}
	}

	s.sessions.Set(chatID, &Session{
		ChatID:  chatID,
		Client:  client,
		Jar:     jar,
		BaseURL: base,
	})

	ctxzap.Info(ctx, "panel session stored", zap.String("base_url", origin))

	return nil
}

// Get returns the chat's session.
func (s *Store) Get(chatID entity.ChatID) (*Session, bool) {
	return s.sessions.Get(chatID)
}

// Has reports whether the chat holds a session.
func (s *Store) Has(chatID entity.ChatID) bool {
	return s.sessions.Has(chatID)
}

// Remove drops the chat's session, if any.
func (s *Store) Remove(chatID entity.ChatID) {
	s.sessions.Remove(chatID)
}

// List returns the chat ids that currently hold a session.
func (s *Store) List() []entity.ChatID {
	entries := s.sessions.List()
	out := make([]entity.ChatID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}

// CurrentCSRFToken reads the csrftoken cookie stored for the session base URL.
func (s *Store) CurrentCSRFToken(chatID entity.ChatID) (string, bool) {
	sess, ok := s.sessions.Get(chatID)
	if !ok {
		return "", false
	}
	return csrfFromJar(sess.Jar, sess.BaseURL)
}

func csrfFromJar(jar http.CookieJar, u *url.URL) (string, bool) {
	for _, c := range jar.Cookies(u) {
		if c.Name == CSRFCookieName && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}
