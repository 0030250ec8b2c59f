package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
)

type chatLimiter struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// RateLimiter paces outgoing messages per chat so that the bot stays under
// Telegram's flood limits: one message per second in private chats and one
// per three seconds in groups.
type RateLimiter struct {
	mu    sync.Mutex
	chats map[int64]*chatLimiter
	now   func() time.Time
	log   *slog.Logger
}

func New(log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		chats: make(map[int64]*chatLimiter),
		now:   time.Now,
		log:   log,
	}
}

// Wait blocks until a message may be sent to chatID.
func (rl *RateLimiter) Wait(ctx context.Context, chatID int64) error {
	limiter := rl.limiter(chatID)

	reservation := limiter.Reserve()
	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}

	rl.log.DebugContext(ctx, "Rate limiting message",
		"chatID", chatID,
		"delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return fmt.Errorf("wait for chat %d: %w", chatID, ctx.Err())
	}
}

// Prune forgets chats that have been idle for longer than idle and returns
// how many were removed.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	removed := 0
	for chatID, cl := range rl.chats {
		if cl.lastUsed.Before(cutoff) {
			delete(rl.chats, chatID)
			removed++
		}
	}

	return removed
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.chats)
}

func (rl *RateLimiter) limiter(chatID int64) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.chats[chatID]
	if !ok {
		cl = &chatLimiter{limiter: rate.NewLimiter(rate.Every(getRate(chatID)), 1)}
		rl.chats[chatID] = cl
	}
	cl.lastUsed = rl.now()

	return cl.limiter
}

func getRate(chatID int64) time.Duration {
	if chatID < 0 {
		return groupChatRate
	}
	return privateChatRate
}
