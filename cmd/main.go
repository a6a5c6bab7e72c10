package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/sideout/internal/adapters/http/api"
	"github.com/okian/sideout/internal/adapters/repository"
	"github.com/okian/sideout/internal/adapters/ws"
	service "github.com/okian/sideout/internal/app"
	"github.com/okian/sideout/internal/config"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/pkg/logger"
	"github.com/okian/sideout/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	// We collect our own custom system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.Open(cfg.DBPath)
	if err != nil {
		log.Error(ctx, "failed to open event store", logger.String("path", cfg.DBPath), logger.Error(err))
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "failed to close event store", logger.Error(err))
		}
	}()

	// Live snapshot fan-out over websockets.
	hub := ws.NewHub()
	go hub.Run(ctx)

	svc := service.New(
		service.WithLogger(log),
		service.WithStore(store),
		service.WithBroadcaster(hub),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithSaveQueueSize(cfg.SaveQueueSize),
		service.WithSaveWorkerCount(cfg.SaveWorkerCount),
		service.WithSaveThreshold(cfg.SaveEventThreshold),
		service.WithSaveInterval(time.Duration(cfg.SaveIntervalSeconds)*time.Second),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	if err := resumeMatches(ctx, store, svc, log); err != nil {
		log.Error(ctx, "failed to resume stored matches", logger.Error(err))
		return
	}

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, ws.NewHandler(hub))
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// resumeMatches reloads every stored match so scoring can continue across
// restarts. Summaries of sets already finished are pre-dismissed.
func resumeMatches(ctx context.Context, store *repository.SQLiteStore, svc *service.Service, log logger.Logger) error {
	ids, err := store.MatchIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		events, err := store.LoadEvents(ctx, id)
		if err != nil {
			return err
		}
		if _, err := svc.LoadMatch(ctx, id, events, model.TeamHome, "", ""); err != nil {
			return err
		}
		log.Info(ctx, "resumed match", logger.String("match_id", id), logger.Int("events", len(events)))
	}
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
