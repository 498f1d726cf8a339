package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inderbu-scheduler/internal/auth"
	"inderbu-scheduler/internal/backend"
	"inderbu-scheduler/internal/config"
	"inderbu-scheduler/internal/http-server/router"
	"inderbu-scheduler/internal/lock"
	svc "inderbu-scheduler/internal/service"
	"inderbu-scheduler/internal/storage/postgres"
	"inderbu-scheduler/internal/storage/redis"
	slogpretty "inderbu-scheduler/pkg/handlers/slogPretty"
	"inderbu-scheduler/pkg/middleware/rateLimit"
	"inderbu-scheduler/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting scheduler API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	if err := storage.Init(initCtx); err != nil {
		cancelInit()
		log.Error("Failed to init storage schema", sl.Err(err))
		os.Exit(1)
	}
	cancelInit()

	var (
		locker     lock.Locker
		onboarding svc.OnboardingStore
		kv         *redis.Storage
	)

	if cfg.RedisAddr != "" {
		kv, err = redis.New(cfg.RedisAddr, cfg.Scheduler.OnboardingTTL)
		if err != nil {
			log.Error("Failed to init redis", sl.Err(err))
			os.Exit(1)
		}
		locker = lock.NewRedisLock(kv.Client())
		onboarding = kv
	} else {
		log.Warn("redis_addr is empty, using in-process submit lock")
		locker = lock.NewLocal()
	}

	client := backend.New(backend.Options{
		BaseURL:                cfg.Backend.URL,
		Timeout:                cfg.Backend.Timeout,
		LegacyConflictMessages: cfg.Backend.LegacyConflictMessages,
	}, log)

	service := svc.NewService(svc.Deps{
		Backend:       backend.NewCached(client, cfg.Scheduler.AvailabilityCacheSize, cfg.Scheduler.AvailabilityCacheTTL),
		Auth:          client,
		Authenticated: auth.NewChecker(nil).Authenticated,
		Journal:       storage,
		Locker:        locker,
		Onboarding:    onboarding,
		Log:           log,
	}, svc.Options{
		SessionTTL:       cfg.Scheduler.SessionTTL,
		MaxSessions:      cfg.Scheduler.MaxSessions,
		StepAdvanceDelay: cfg.Scheduler.StepAdvanceDelay,
		SearchDebounce:   cfg.Scheduler.SearchDebounce,
		SubmitLockTTL:    cfg.Scheduler.SubmitLockTTL,
		JournalLimit:     cfg.Scheduler.JournalLimit,
	})

	handler := router.New(log, service, rateLimit.Options{
		RPS:   cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	service.Close()
	log.Info("Sessions closed")

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if kv != nil {
		if err := kv.Close(); err != nil {
			log.Error("Failed to close redis", sl.Err(err))
		} else {
			log.Info("Redis closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
