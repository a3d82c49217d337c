package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/api/diagnostics"
	"github.com/futig/panel-product-bot/internal/conversation"
)

type staticChats []conversation.ChatSnapshot

func (s staticChats) Snapshot() []conversation.ChatSnapshot { return s }

func newTestRouter() http.Handler {
	chats := staticChats{
		{ChatID: "1", State: conversation.KindStart, Site: "https://a.example.com", HasToken: true},
		{ChatID: "2", State: conversation.KindReceivePrice},
	}
	return SetupRouter(diagnostics.NewHandler(chats), zap.NewNop())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestListChats(t *testing.T) {
	router := newTestRouter()

	rec := get(t, router, "/debug/chats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body diagnostics.ChatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "https://a.example.com", body.Chats[0].Site)
	assert.True(t, body.Chats[0].HasToken)

	rec = get(t, router, "/debug/chats?state=receive_price")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, conversation.KindReceivePrice, body.Chats[0].State)
}

func TestGetChat(t *testing.T) {
	router := newTestRouter()

	rec := get(t, router, "/debug/chats/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"receive_price"`)
	assert.NotContains(t, rec.Body.String(), "token\":\"")

	rec = get(t, router, "/debug/chats/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"chat not found"}`, rec.Body.String())
}
