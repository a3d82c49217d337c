package middleware

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/entity"
)

const (
	warningInterval   = 30 * time.Second
	cleanupInterval   = 10 * time.Minute
	inactiveThreshold = time.Hour
)

// userLimit tracks rate limit state for a single user
type userLimit struct {
	tokens        float64
	lastRefill    time.Time
	warningsSent  int
	lastWarningAt time.Time
	mu            sync.Mutex
}

// RateLimiterMiddleware implements token bucket rate limiting per user
type RateLimiterMiddleware struct {
	limits     map[int64]*userLimit
	mu         sync.Mutex
	maxTokens  float64 // bucket capacity
	refillRate float64 // tokens added per second
	notifier   Notifier
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewRateLimiterMiddleware creates a rate limiter allowing requestsPerMinute
// on average with bursts of up to burstSize updates.
func NewRateLimiterMiddleware(requestsPerMinute, burstSize int, notifier Notifier) *RateLimiterMiddleware {
	capacity := burstSize
	if capacity <= 0 {
		capacity = requestsPerMinute
	}

	rl := &RateLimiterMiddleware{
		limits:     make(map[int64]*userLimit),
		maxTokens:  float64(capacity),
		refillRate: float64(requestsPerMinute) / 60.0,
		notifier:   notifier,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go rl.cleanupInactiveUsers()

	return rl
}

// Handle drops the update when its sender has run out of tokens
func (rl *RateLimiterMiddleware) Handle(ctx context.Context, update tgbotapi.Update, next HandlerFunc) {
	info := Describe(update)
	if info.UserID == 0 {
		next(ctx, update)
		return
	}

	if !rl.allowRequest(ctx, info.UserID, info.ChatID) {
		ctxzap.Warn(ctx, "rate limit exceeded",
			zap.Int64("user_id", info.UserID),
			zap.Int64("chat_id", info.ChatID),
		)
		return
	}

	next(ctx, update)
}

// Close stops the cleanup goroutine
func (rl *RateLimiterMiddleware) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiterMiddleware) allowRequest(ctx context.Context, userID, chatID int64) bool {
	now := rl.now()

	rl.mu.Lock()
	limit, exists := rl.limits[userID]
	if !exists {
		limit = &userLimit{
			tokens:     rl.maxTokens,
			lastRefill: now,
		}
		rl.limits[userID] = limit
	}
	rl.mu.Unlock()

	limit.mu.Lock()
	defer limit.mu.Unlock()

	elapsed := now.Sub(limit.lastRefill).Seconds()
	limit.tokens += elapsed * rl.refillRate
	if limit.tokens > rl.maxTokens {
		limit.tokens = rl.maxTokens
	}
	limit.lastRefill = now

	if limit.tokens >= 1.0 {
		limit.tokens -= 1.0
		limit.warningsSent = 0
		return true
	}

	if limit.lastWarningAt.IsZero() || now.Sub(limit.lastWarningAt) > warningInterval {
		limit.warningsSent++
		limit.lastWarningAt = now
		rl.sendRateLimitWarning(ctx, chatID, limit.warningsSent)
	}

	return false
}

func (rl *RateLimiterMiddleware) sendRateLimitWarning(ctx context.Context, chatID int64, warningCount int) {
	if chatID == 0 {
		return
	}

	var text string
	switch {
	case warningCount == 1:
		text = "⚠️ Too many requests. Please wait a little."
	case warningCount == 2:
		text = "⚠️ Request limit exceeded. Wait about 30 seconds before trying again."
	default:
		text = "🛑 You are sending requests too often. Please wait a minute."
	}

	if err := rl.notifier.SendText(ctx, entity.ChatIDFromInt(chatID), text); err != nil {
		ctxzap.Error(ctx, "failed to send rate limit warning", zap.Error(err))
	}
}

// cleanupInactiveUsers forgets users that have been quiet for inactiveThreshold
func (rl *RateLimiterMiddleware) cleanupInactiveUsers() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictInactive()
		}
	}
}

func (rl *RateLimiterMiddleware) evictInactive() int {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	evicted := 0
	for userID, limit := range rl.limits {
		limit.mu.Lock()
		if now.Sub(limit.lastRefill) > inactiveThreshold {
			delete(rl.limits, userID)
			evicted++
		}
		limit.mu.Unlock()
	}
	return evicted
}
