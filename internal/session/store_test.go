package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/panel-product-bot/internal/entity"
)

type fakePanel struct {
	mu          sync.Mutex
	setCookie   bool
	loginStatus int
	gotForm     map[string]string
	gotOrigin   string
	gotReferer  string
}

func (p *fakePanel) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/login/", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()

		if r.Method == http.MethodGet {
			if p.setCookie {
				http.SetCookie(w, &http.Cookie{Name: CSRFCookieName, Value: "scraped-token", Path: "/"})
			}
			_, _ = w.Write([]byte("<form></form>"))
			return
		}

		_ = r.ParseForm()
		p.gotForm = map[string]string{}
		for k := range r.PostForm {
			p.gotForm[k] = r.PostForm.Get(k)
		}
		p.gotOrigin = r.Header.Get("Origin")
		p.gotReferer = r.Header.Get("Referer")

		status := p.loginStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	})
	return mux
}

func startPanel(t *testing.T, p *fakePanel) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(p.handler())
	t.Cleanup(srv.Close)
	return srv
}

var creds = entity.LoginCredentials{Username: "admin", Password: "secret"}

func TestLogin_StoresSessionWithBaseURL(t *testing.T) {
	panel := &fakePanel{setCookie: true}
	srv := startPanel(t, panel)
	s := NewStore(Config{UserAgent: "test-agent"})

	err := s.Login(context.Background(), "1", creds, srv.URL+"/")
	require.NoError(t, err)

	sess, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, srv.URL, sess.Origin())
	assert.Equal(t, entity.ChatID("1"), sess.ChatID)

	panel.mu.Lock()
	defer panel.mu.Unlock()
	assert.Equal(t, "admin", panel.gotForm["username"])
	assert.Equal(t, "secret", panel.gotForm["password"])
	assert.Equal(t, LoginNext, panel.gotForm["next"])
	assert.Equal(t, "scraped-token", panel.gotForm["csrfmiddlewaretoken"])
	assert.Equal(t, srv.URL, panel.gotOrigin)
	assert.Equal(t, srv.URL+LoginPath, panel.gotReferer)
}

func TestLogin_CSRFTokenReadFromJar(t *testing.T) {
	srv := startPanel(t, &fakePanel{setCookie: true})
	s := NewStore(Config{})

	require.NoError(t, s.Login(context.Background(), "1", creds, srv.URL))

	token, ok := s.CurrentCSRFToken("1")
	require.True(t, ok)
	assert.Equal(t, "scraped-token", token)
}

func TestLogin_FallbackTokenWithoutCookie(t *testing.T) {
	panel := &fakePanel{}
	srv := startPanel(t, panel)
	s := NewStore(Config{CSRFFallback: "fallback"})

	require.NoError(t, s.Login(context.Background(), "1", creds, srv.URL))

	panel.mu.Lock()
	assert.Equal(t, "fallback", panel.gotForm["csrfmiddlewaretoken"])
	panel.mu.Unlock()

	_, ok := s.CurrentCSRFToken("1")
	assert.False(t, ok)
}

func TestLogin_NoTokenFieldWithoutCookieOrFallback(t *testing.T) {
	panel := &fakePanel{}
	srv := startPanel(t, panel)
	s := NewStore(Config{})

	require.NoError(t, s.Login(context.Background(), "1", creds, srv.URL))

	panel.mu.Lock()
	defer panel.mu.Unlock()
	_, present := panel.gotForm["csrfmiddlewaretoken"]
	assert.False(t, present)
}

func TestLogin_HTTPErrorLeavesStoreUntouched(t *testing.T) {
	srv := startPanel(t, &fakePanel{setCookie: true, loginStatus: http.StatusForbidden})
	s := NewStore(Config{})

	err := s.Login(context.Background(), "1", creds, srv.URL)

	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Equal(t, CodeHTTP, loginErr.Code)
	_, ok := s.Get("1")
	assert.False(t, ok)
}

func TestLogin_FailureKeepsPreviousSession(t *testing.T) {
	good := startPanel(t, &fakePanel{setCookie: true})
	bad := startPanel(t, &fakePanel{loginStatus: http.StatusInternalServerError})
	s := NewStore(Config{})

	require.NoError(t, s.Login(context.Background(), "1", creds, good.URL))
	require.Error(t, s.Login(context.Background(), "1", creds, bad.URL))

	sess, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, good.URL, sess.Origin())
}

func TestLogin_PreGetError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := NewStore(Config{})
	err := s.Login(context.Background(), "1", creds, url)

	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Equal(t, CodePreGet, loginErr.Code)
}

func TestLogin_ClientBuildError(t *testing.T) {
	s := NewStore(Config{})
	err := s.Login(context.Background(), "1", creds, "::not a url")

	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Equal(t, CodeClientBuild, loginErr.Code)
}

func TestLogin_ReplacesPriorSession(t *testing.T) {
	first := startPanel(t, &fakePanel{setCookie: true})
	second := startPanel(t, &fakePanel{setCookie: true})
	s := NewStore(Config{})

	require.NoError(t, s.Login(context.Background(), "1", creds, first.URL))
	require.NoError(t, s.Login(context.Background(), "1", creds, second.URL))

	sess, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, second.URL, sess.Origin())
	assert.Equal(t, []entity.ChatID{"1"}, s.List())
}

func TestStore_ChatIsolation(t *testing.T) {
	srv := startPanel(t, &fakePanel{setCookie: true})
	s := NewStore(Config{})

	require.NoError(t, s.Login(context.Background(), "a", creds, srv.URL))

	_, ok := s.Get("b")
	assert.False(t, ok)
	_, ok = s.CurrentCSRFToken("b")
	assert.False(t, ok)

	s.Remove("b")
	_, ok = s.Get("a")
	assert.True(t, ok)

	s.Remove("a")
	_, ok = s.Get("a")
	assert.False(t, ok)
}

func TestCurrentCSRFToken_NoSession(t *testing.T) {
	s := NewStore(Config{})
	_, ok := s.CurrentCSRFToken("missing")
	assert.False(t, ok)
}
