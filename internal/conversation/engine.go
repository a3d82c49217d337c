// Package conversation runs the per-chat product creation workflow.
package conversation

import (
	"context"
	"errors"
	"sort"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/entity"
	"github.com/futig/panel-product-bot/internal/pkg/logger"
	"github.com/futig/panel-product-bot/internal/pkg/validator"
	"github.com/futig/panel-product-bot/internal/render"
	"github.com/futig/panel-product-bot/internal/store"
)

type Config struct {
	CredentialMode entity.CredentialMode
	ChunkSize      int
}

type Deps struct {
	Sites    *store.KV[entity.ChatID, entity.SiteConfig]
	Tokens   *store.KV[entity.ChatID, entity.APICredential]
	Sessions Authenticator
	Gateway  Gateway
	Replier  Replier
	Files    FileFetcher
	Activity ActivityNotifier
	Images   *validator.ImageValidator
}

type transition func(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error)

// Engine holds exactly one State per chat. Events of one chat are handled
// one at a time, different chats proceed concurrently.
type Engine struct {
	cfg      Config
	sites    *store.KV[entity.ChatID, entity.SiteConfig]
	tokens   *store.KV[entity.ChatID, entity.APICredential]
	sessions Authenticator
	gateway  Gateway
	replier  Replier
	files    FileFetcher
	activity ActivityNotifier
	images   *validator.ImageValidator

	states *store.KV[entity.ChatID, State]
	locks  *store.Locker
	table  map[StateKind]map[InputKind]transition
}

func New(cfg Config, deps Deps) *Engine {
	if !cfg.CredentialMode.Valid() {
		cfg.CredentialMode = entity.CredentialModeAPIKey
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = render.DefaultChunkSize
	}

	e := &Engine{
		cfg:      cfg,
		sites:    deps.Sites,
		tokens:   deps.Tokens,
		sessions: deps.Sessions,
		gateway:  deps.Gateway,
		replier:  deps.Replier,
		files:    deps.Files,
		activity: deps.Activity,
		images:   deps.Images,
		states:   store.NewKV[entity.ChatID, State](),
		locks:    store.NewLocker(),
	}
	e.table = e.buildTable()

	return e
}

func (e *Engine) buildTable() map[StateKind]map[InputKind]transition {
	table := map[StateKind]map[InputKind]transition{
		KindStart:               {InputText: e.idle, InputPhoto: e.idle},
		KindReceiveSiteURL:      {InputText: e.receiveSiteURL},
		KindReceiveToken:        {InputText: e.receiveToken},
		KindReceiveUsername:     {InputText: e.receiveUsername},
		KindReceivePassword:     {InputText: e.receivePassword},
		KindReceiveProductName:  {InputText: e.receiveProductName},
		KindReceivePrice:        {InputText: e.receivePrice},
		KindReceiveCategoryID:   {InputText: e.receiveCategoryID},
		KindReceiveProductImage: {InputPhoto: e.receiveProductImage},
	}
	for _, row := range table {
		row[InputCommand] = e.command
	}
	return table
}

// Handle processes one event and commits the resulting state. Rejected
// input keeps the state, any other failure is reported to the chat and
// resets it to Start. The returned error is the failure that caused a reset.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	unlock := e.locks.Lock(string(ev.ChatID))
	defer unlock()

	current := e.State(ev.ChatID)
	ctx = logger.WithChat(ctx, ev.ChatID)
	ctx = logger.AddFields(ctx,
		zap.String("state", string(current.Kind())),
		zap.String("input", string(ev.Kind)),
	)

	next, err := e.lookup(current.Kind(), ev.Kind)(ctx, ev.ChatID, current, ev)

	var validationErr *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &validationErr):
		ctxzap.Debug(ctx, "input rejected", zap.String("reason", validationErr.Error()))
		e.say(ctx, ev.ChatID, validationErr.Message)
		next, err = current, nil
	default:
		e.say(ctx, ev.ChatID, render.ClassifyError(err))
		next = Start{}
	}

	e.states.Set(ev.ChatID, next)

	if next.Kind() != current.Kind() {
		ctxzap.Debug(ctx, "state changed", zap.String("next_state", string(next.Kind())))
	}

	return err
}

func (e *Engine) lookup(kind StateKind, input InputKind) transition {
	if fn, ok := e.table[kind][input]; ok {
		return fn
	}
	return e.unexpectedInput
}

// State returns the chat's current state, Start for unknown chats.
func (e *Engine) State(chatID entity.ChatID) State {
	if st, ok := e.states.Get(chatID); ok {
		return st
	}
	return Start{}
}

// ChatSnapshot describes one chat without exposing credentials.
type ChatSnapshot struct {
	ChatID     entity.ChatID `json:"chat_id"`
	State      StateKind     `json:"state"`
	Site       string        `json:"site,omitempty"`
	HasToken   bool          `json:"has_token"`
	HasSession bool          `json:"has_session"`
}

// Snapshot lists every chat the engine, the credential stores or the
// session store know about.
func (e *Engine) Snapshot() []ChatSnapshot {
	seen := make(map[entity.ChatID]bool)
	var ids []entity.ChatID
	add := func(id entity.ChatID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, entry := range e.states.List() {
		add(entry.Key)
	}
	for _, entry := range e.sites.List() {
		add(entry.Key)
	}
	for _, entry := range e.tokens.List() {
		add(entry.Key)
	}
	for _, id := range e.sessions.List() {
		add(id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]ChatSnapshot, 0, len(ids))
	for _, id := range ids {
		snap := ChatSnapshot{
			ChatID:     id,
			State:      e.State(id).Kind(),
			HasToken:   e.tokens.Has(id),
			HasSession: e.sessions.Has(id),
		}
		if site, ok := e.sites.Get(id); ok {
			snap.Site = site.BaseURL
		}
		out = append(out, snap)
	}
	return out
}

func (e *Engine) say(ctx context.Context, chatID entity.ChatID, text string) {
	for _, chunk := range render.Chunk(text, e.cfg.ChunkSize) {
		if err := e.replier.SendText(ctx, chatID, chunk); err != nil {
			ctxzap.Error(ctx, "failed to send message", zap.Error(err))
			return
		}
	}
}

func (e *Engine) startActivity(ctx context.Context, chatID entity.ChatID, activity Activity) func() {
	if e.activity == nil {
		return func() {}
	}
	return e.activity.StartActivity(ctx, chatID, activity)
}
