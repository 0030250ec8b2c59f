package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tldrbot/internal/bot"
	"tldrbot/internal/config"
	"tldrbot/internal/database"
	"tldrbot/internal/domain"
	"tldrbot/internal/fetch"
	"tldrbot/internal/pipeline"
	"tldrbot/internal/ranker"
	"tldrbot/internal/ratelimiter"
	"tldrbot/internal/scheduler"
	"tldrbot/internal/server"
	"tldrbot/internal/summarizer"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		os.Exit(1)
	}

	log = newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	if cfg.Token == "" && cfg.HTTP.Addr == "" {
		log.ErrorContext(ctx, "TOKEN or HTTP_ADDR is required",
			"envVars", []string{"TOKEN", "HTTP_ADDR"})

		os.Exit(1)
	}

	if err = run(ctx, &cfg, log); err != nil {
		log.ErrorContext(ctx, "Exiting with error",
			"error", err,
			"uptimeSeconds", time.Since(start).Seconds())

		os.Exit(1)
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rewriter, err := summarizer.FromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}

	splitter, err := ranker.NewPunktSplitter()
	if err != nil {
		return err
	}

	p := pipeline.New(ranker.New(splitter), rewriter, log)

	defaults := domain.SummaryDefaults{
		ExtractiveLines:  cfg.Defaults.ExtractiveLines,
		AbstractiveLines: cfg.Defaults.AbstractiveLines,
	}

	cache := fetch.NewDocumentCache(cfg.Fetch.CacheEntries)
	fetcher := fetch.NewFetcher(cfg.Fetch.Timeout, cache, cfg.Fetch.CacheTTL, log, cfg.FetchOptions()...)
	rateLimiter := ratelimiter.New(log)

	var (
		db       *database.Database
		settings scheduler.SettingsCounter
	)
	if cfg.Token != "" {
		db, err = database.New(ctx, cfg.DBPath, log)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.ErrorContext(ctx, "Failed to close db",
					"error", closeErr,
					"dbPath", cfg.DBPath)
			}
		}()
		log.InfoContext(ctx, "DB is initialized",
			"dbPath", cfg.DBPath)

		settings = db
	}

	sched := scheduler.New(ctx, cache, rateLimiter, settings, log)
	if err = sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.HourlyPruneSpec,
		"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	if cfg.Token != "" {
		botInst, botErr := bot.New(cfg.Token, db, fetcher, p, rateLimiter, defaults, cfg.AllowedUsers, log)
		if botErr != nil {
			return botErr
		}
		log.InfoContext(ctx, "Bot is initialized",
			"allowedUsersCount", len(cfg.AllowedUsers))

		wg.Go(func() {
			botInst.Start(ctx)
		})
	}

	if cfg.HTTP.Addr != "" {
		srv := server.New(p, fetcher, defaults, cfg.HTTP.AllowedOrigins, log)

		wg.Go(func() {
			if srvErr := srv.Run(ctx, cfg.HTTP.Addr); srvErr != nil {
				mu.Lock()
				errs = append(errs, srvErr)
				mu.Unlock()

				cancel()
			}
		})
	}

	<-ctx.Done()
	log.InfoContext(ctx, "Shutdown is started",
		"cause", context.Cause(ctx).Error())

	wg.Wait()

	return errors.Join(errs...)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
