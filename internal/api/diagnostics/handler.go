// Package diagnostics exposes read-only runtime state of the bot.
package diagnostics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/futig/panel-product-bot/internal/conversation"
	"github.com/futig/panel-product-bot/internal/pkg/response"
)

// Snapshotter lists the chats known to the workflow engine
type Snapshotter interface {
	Snapshot() []conversation.ChatSnapshot
}

type Handler struct {
	chats Snapshotter
}

func NewHandler(chats Snapshotter) *Handler {
	return &Handler{chats: chats}
}

// ChatsResponse is the body of GET /debug/chats
type ChatsResponse struct {
	Total int                         `json:"total"`
	Chats []conversation.ChatSnapshot `json:"chats"`
}

// ListChats returns every chat with its state and which credentials are stored.
// Credential values are never included.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats := h.chats.Snapshot()
	if state := r.URL.Query().Get("state"); state != "" {
		filtered := chats[:0:0]
		for _, c := range chats {
			if string(c.State) == state {
				filtered = append(filtered, c)
			}
		}
		chats = filtered
	}

	response.Success(w, ChatsResponse{Total: len(chats), Chats: chats})
}

// GetChat returns one chat snapshot
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	for _, c := range h.chats.Snapshot() {
		if string(c.ChatID) == chatID {
			response.Success(w, c)
			return
		}
	}
	response.Error(w, http.StatusNotFound, "chat not found")
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/debug/chats", func(r chi.Router) {
		r.Get("/", h.ListChats)
		r.Get("/{chatID}", h.GetChat)
	})
}
