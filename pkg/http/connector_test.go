package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewConnector(&ConnectorConfig{BaseURL: srv.URL + "/"})
}

func TestConnector_DoJSON(t *testing.T) {
	var gotBody, gotContentType, gotHeader string
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
		gotHeader = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	resp, err := c.DoJSON(context.Background(), http.MethodPost, "/items/", map[string]string{"name": "x"}, WithHeader("X-Test", "yes"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.LooksLikeJSON())
	assert.JSONEq(t, `{"name":"x"}`, gotBody)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "yes", gotHeader)
}

func TestConnector_DoForm(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := c.DoForm(context.Background(), http.MethodPost, "/login/", url.Values{"username": {"alice"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestConnector_DoMultipart(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "a.png", header.Filename)
		assert.Equal(t, "png-bytes", string(data))
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.DoMultipart(context.Background(), http.MethodPost, "/upload/", func(w *multipart.Writer) error {
		part, err := w.CreateFormFile("image", "a.png")
		if err != nil {
			return err
		}
		_, err = part.Write([]byte("png-bytes"))
		return err
	})
	require.NoError(t, err)
}

func TestConnector_HTTPError(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	})

	resp, err := c.Do(context.Background(), http.MethodGet, "/", nil, "")
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Len(t, httpErr.Message, DefaultPreviewLength)
	require.NotNil(t, resp)
	assert.Len(t, resp.Body, 1000)
}

func TestConnector_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL})
	_, err := c.Do(context.Background(), http.MethodGet, "/", nil, "")

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestConnector_WithURLOverridesBase(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	t.Cleanup(srv.Close)

	c := NewConnector(&ConnectorConfig{BaseURL: "http://unused.invalid"})
	_, err := c.Do(context.Background(), http.MethodGet, "/ignored", nil, "", WithURL(srv.URL+"/next/"))
	require.NoError(t, err)
	assert.Equal(t, "/next/", gotPath)
}

func TestConnector_MaxBodySize(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})

	resp, err := c.Do(context.Background(), http.MethodGet, "/", nil, "", WithMaxBodySize(64))
	require.NoError(t, err)
	assert.Len(t, resp.Body, 64)

	resp, err = c.Do(context.Background(), http.MethodGet, "/", nil, "", WithMaxBodySize(63))
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Nil(t, resp)
}

func TestDefaultHeaderDoesNotOverride(t *testing.T) {
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
	}))
	t.Cleanup(srv.Close)

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL}, WithUserAgent("panel-bot/1.0"))
	_, err := c.Do(context.Background(), http.MethodGet, "/", nil, "")
	require.NoError(t, err)
	_, err = c.Do(context.Background(), http.MethodGet, "/", nil, "", WithHeader("User-Agent", "custom"))
	require.NoError(t, err)

	assert.Equal(t, []string{"panel-bot/1.0", "custom"}, agents)
}

func TestResponse_LooksLikeJSON(t *testing.T) {
	tests := []struct {
		name   string
		header string
		body   string
		want   bool
	}{
		{name: "declared", header: "application/json; charset=utf-8", body: "", want: true},
		{name: "sniffed array", header: "text/html", body: "  [1]", want: true},
		{name: "sniffed object", header: "", body: "\n{\"a\":1}", want: true},
		{name: "html", header: "text/html", body: "<html>", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{Header: http.Header{}, Body: []byte(tt.body)}
			if tt.header != "" {
				r.Header.Set("Content-Type", tt.header)
			}
			assert.Equal(t, tt.want, r.LooksLikeJSON())
		})
	}
}

func TestPreview_CountsRunes(t *testing.T) {
	assert.Equal(t, "привет", Preview([]byte("привет мир"), 6))
	assert.Equal(t, "short", Preview([]byte("short"), 10))
}
