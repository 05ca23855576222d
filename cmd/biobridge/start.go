package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mattjoyce/biobridge/internal/api"
	"github.com/mattjoyce/biobridge/internal/backend"
	"github.com/mattjoyce/biobridge/internal/config"
	"github.com/mattjoyce/biobridge/internal/device"
	"github.com/mattjoyce/biobridge/internal/dispatch"
	"github.com/mattjoyce/biobridge/internal/events"
	"github.com/mattjoyce/biobridge/internal/handler"
	"github.com/mattjoyce/biobridge/internal/journal"
	"github.com/mattjoyce/biobridge/internal/lock"
	"github.com/mattjoyce/biobridge/internal/log"
	"github.com/mattjoyce/biobridge/internal/metrics"
	"github.com/mattjoyce/biobridge/internal/realtime"
	"github.com/mattjoyce/biobridge/internal/scheduler"
	"github.com/mattjoyce/biobridge/internal/session"
	"github.com/mattjoyce/biobridge/internal/storage"
)

const (
	fetchJob        = "fetch"
	journalPruneJob = "journal-prune"
	eventBacklog    = 256
)

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	fetchOnStart := fs.Bool("fetch-on-start", false, "Run one fetch cycle immediately")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.SetupWithFile(cfg.Service.LogLevel, log.FileOptions{Path: cfg.Service.LogFile})
	defer func() { _ = log.Close() }()
	logger := log.WithComponent("main")
	logger.Info("biobridge starting", "version", version, "config", cfg.SourcePath)

	pidLockPath := lock.PathFor(cfg.State.Path)
	pidLock, err := lock.AcquirePIDLock(pidLockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)", "path", pidLockPath, "error", err)
		return 1
	}
	defer func() { _ = pidLock.Release() }()
	logger.Info("acquired PID lock", "path", pidLockPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, *fetchOnStart); err != nil {
		logger.Error("biobridge stopped with error", "error", err)
		return 1
	}
	logger.Info("biobridge stopped")
	return 0
}

// serve wires every component and blocks until ctx ends or one of them fails.
func serve(ctx context.Context, cfg *config.Config, fetchOnStart bool) error {
	logger := log.WithComponent("main")

	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.State.Path, err)
	}
	defer db.Close()
	logger.Info("database opened", "path", cfg.State.Path)

	m := metrics.New()

	client, err := backend.New(backend.Options{
		BaseURL:   cfg.Backend.BaseURL,
		Token:     cfg.Backend.Token,
		UserAgent: "biobridge/" + version,
		Timeout:   cfg.Backend.RequestTimeout,
		Durable: backend.RetryPolicy{
			MaxAttempts: cfg.Backend.DurableRetry.MaxAttempts,
			Delay:       cfg.Backend.DurableRetry.Delay,
			Multiplier:  cfg.Backend.DurableRetry.Multiplier,
			MaxDelay:    cfg.Backend.DurableRetry.MaxDelay,
		},
		Logger:  log.Get(),
		OnRetry: m.BackendRetry,
	})
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}

	devices := device.NewSimulator(cfg.Device.Reachable...)
	sched := scheduler.New(scheduler.NewSQLiteIntervalStore(db), log.WithComponent("scheduler"))
	registry := handler.NewRegistry(handler.Deps{
		Devices:   devices,
		Backend:   client,
		Scheduler: sched,
		FetchJob:  fetchJob,
		Logger:    log.Get(),
	})
	logger.Info("handlers registered", "kinds", registry.Kinds())

	hub := events.NewHub(eventBacklog)
	store := journal.NewStore(db)

	loop, err := session.New(session.Deps{
		Queue:    client,
		Runner:   dispatch.New(registry, m),
		Journal:  store,
		Observer: m,
		Events:   hub,
	})
	if err != nil {
		return err
	}

	if err := sched.RegisterEvery(fetchJob, cfg.Schedule.Fetch.Every, cfg.Schedule.Fetch.Jitter, loop.ScheduledFetch); err != nil {
		return fmt.Errorf("register %s job: %w", fetchJob, err)
	}
	if retention := cfg.Schedule.JournalRetention; retention > 0 {
		prune := func(ctx context.Context) error { return store.Prune(ctx, retention) }
		if err := sched.Register(journalPruneJob, 24*time.Hour, time.Hour, prune); err != nil {
			return fmt.Errorf("register %s job: %w", journalPruneJob, err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return loop.Run(gctx) })

	if cfg.Realtime.URL != "" {
		ch, err := realtime.New(realtime.Options{
			URL:           cfg.Realtime.URL,
			PingInterval:  cfg.Realtime.PingInterval,
			ReconnectBase: cfg.Realtime.ReconnectBase,
			ReconnectMax:  cfg.Realtime.ReconnectMax,
			Logger:        log.Get(),
		})
		if err != nil {
			return fmt.Errorf("realtime channel: %w", err)
		}
		loop.Attach(ch, session.WakeConfig{
			Room:         cfg.Realtime.Room,
			JoinEvent:    cfg.Realtime.JoinEvent,
			MessageEvent: cfg.Realtime.MessageEvent,
			WakeMessage:  cfg.Realtime.WakeMessage,
		})
		g.Go(func() error { return ch.Run(gctx) })
		logger.Info("realtime channel enabled", "url", cfg.Realtime.URL, "room", cfg.Realtime.Room)
	} else {
		logger.Warn("realtime channel disabled; relying on scheduled fetches")
	}

	if cfg.API.Enabled {
		srv := api.New(api.Config{
			Listen: cfg.API.Listen,
			APIKey: cfg.API.Auth.APIKey,
		}, api.Deps{
			Waker:   loop,
			Journal: store,
			Jobs:    sched,
			Kinds:   registry,
			Metrics: m.Handler(),
			Events:  hub,
			Logger:  log.Get(),
		})
		g.Go(func() error { return srv.Start(gctx) })
		logger.Info("API server enabled", "listen", cfg.API.Listen)
	}

	if fetchOnStart {
		loop.Trigger(session.SourceStartup)
	}

	logger.Info("biobridge running (press Ctrl+C to stop)")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
