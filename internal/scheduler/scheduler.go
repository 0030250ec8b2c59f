package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	HourlyPruneSpec       = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	chatLimiterIdleTTL    = time.Hour
)

// DocumentCache is the part of fetch.DocumentCache the scheduler maintains.
type DocumentCache interface {
	Prune(now time.Time) int
	Len() int
}

// ChatLimiters is the part of ratelimiter.RateLimiter the scheduler maintains.
type ChatLimiters interface {
	Prune(idle time.Duration) int
	Len() int
}

// SettingsCounter reports how many users keep their own settings.
type SettingsCounter interface {
	CountUserSettings(ctx context.Context) (int64, error)
}

// Scheduler runs periodic housekeeping. Any dependency may be nil.
type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	cache    DocumentCache
	limiters ChatLimiters
	settings SettingsCounter
	now      func() time.Time
	log      *slog.Logger
}

func New(
	ctx context.Context,
	cache DocumentCache,
	limiters ChatLimiters,
	settings SettingsCounter,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:      ctx,
		cron:     c,
		cache:    cache,
		limiters: limiters,
		settings: settings,
		now:      time.Now,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(HourlyPruneSpec, s.prune); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop stops the cron and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) prune() {
	select {
	case <-s.ctx.Done():
		s.log.InfoContext(s.ctx, "Scheduler context is done",
			"error", s.ctx.Err())
		return
	default:
	}

	fields := []any{}

	if s.cache != nil {
		removed := s.cache.Prune(s.now())
		fields = append(fields, "documentsPruned", removed, "documentsCached", s.cache.Len())
	}

	if s.limiters != nil {
		removed := s.limiters.Prune(chatLimiterIdleTTL)
		fields = append(fields, "chatsPruned", removed, "chatsTracked", s.limiters.Len())
	}

	if s.settings != nil {
		count, err := s.settings.CountUserSettings(s.ctx)
		if err != nil {
			s.log.ErrorContext(s.ctx, "Failed to count user settings",
				"error", err)
		} else {
			fields = append(fields, "usersWithSettings", count)
		}
	}

	s.log.InfoContext(s.ctx, "Caches are pruned", fields...)
}
