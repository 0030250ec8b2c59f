package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	breakerName        = "rewriter"
	breakerMaxRequests = 1
	breakerInterval    = time.Minute
	breakerOpenTimeout = 30 * time.Second
	breakerMinRequests = 3
	breakerFailRatio   = 0.6
)

var ErrUnavailable = errors.New("rewriter is temporarily unavailable")

// Guarded paces calls to a Rewriter and stops calling it while it keeps failing.
// It never retries.
type Guarded struct {
	next    Rewriter
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	timeout time.Duration
	log     *slog.Logger
}

// NewGuarded wraps next. rpm <= 0 disables pacing, timeout <= 0 disables the
// per-call deadline.
func NewGuarded(next Rewriter, rpm int, timeout time.Duration, log *slog.Logger) *Guarded {
	g := &Guarded{
		next:    next,
		timeout: timeout,
		log:     log,
	}

	if rpm > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), max(rpm/10, 1))
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breakerMinRequests && failureRatio >= breakerFailRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrEmptyInput)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker changed state",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return g
}

func (g *Guarded) Rewrite(ctx context.Context, input Input) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := g.breaker.Execute(func() (any, error) {
		return g.next.Rewrite(ctx, input)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return "", err
	}

	g.log.DebugContext(ctx, "Rewrite is done",
		"maxLength", input.MaxLength,
		"minLength", input.MinLength,
		"latencyMs", time.Since(start).Milliseconds())

	summary, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("unexpected rewriter result %T", out)
	}

	return summary, nil
}
