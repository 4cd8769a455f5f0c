package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pubtunnel/relayd/internal/api"
	"github.com/pubtunnel/relayd/internal/config"
	"github.com/pubtunnel/relayd/internal/filestore"
	"github.com/pubtunnel/relayd/internal/health"
	rlog "github.com/pubtunnel/relayd/internal/log"
	"github.com/pubtunnel/relayd/internal/offline"
	"github.com/pubtunnel/relayd/internal/presence"
	"github.com/pubtunnel/relayd/internal/queue"
	"github.com/pubtunnel/relayd/internal/result"
	"github.com/pubtunnel/relayd/internal/session"
	"github.com/pubtunnel/relayd/internal/telemetry"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe logging defaults until the real config is loaded.
	rlog.Configure(rlog.Config{
		Level:   "info",
		Service: "relayd",
		Version: version,
	})
	logger := rlog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(strings.TrimSpace(*configPath), version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	rlog.Configure(rlog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})

	tracer, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.TracingEnabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.TracingEnvironment,
		ExporterType:   cfg.TracingExporter,
		Endpoint:       cfg.TracingEndpoint,
		SamplingRate:   cfg.TracingSamplingRate,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "telemetry.init_failed").
			Msg("failed to initialize tracing")
	}

	tracker := presence.NewTracker(cfg.OfflineThresholdSeconds, cfg.StaleCleanupWindowSeconds)
	healthMgr := health.NewManager(cfg.Version)
	deps := api.Deps{
		Sessions: session.NewRegistry(),
		Presence: tracker,
		Offline:  offline.NewCoordinator(tracker),
		Queues:   queue.NewManager(),
		Results:  result.NewStore(),
		Files:    filestore.NewStore(cfg.MaxFileSizeBytes),
		Health:   healthMgr,
	}
	server := api.NewServer(cfg, deps)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.ListenAddr).
		Int("offline_threshold_seconds", cfg.OfflineThresholdSeconds).
		Bool("admin_token_configured", cfg.AdminToken != "").
		Msg("starting relayd")
	if cfg.AdminToken == "" {
		logger.Warn().
			Str("security", "weak").
			Msg("admin token not configured, admin endpoints will reject all requests")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		healthMgr.SetReady(true)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Periodic stale presence eviction keeps memory bounded on long uptimes.
	g.Go(func() error {
		interval := time.Duration(cfg.StaleCleanupWindowSeconds) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if removed := tracker.EvictStale(cfg.StaleCleanupWindowSeconds); removed > 0 {
					logger.Info().
						Int("removed", removed).
						Msg("evicted stale presence records")
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		healthMgr.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()

	if terr := tracer.Shutdown(context.Background()); terr != nil {
		logger.Warn().Err(terr).Msg("tracer shutdown failed")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("relayd exited with error")
	}
	logger.Info().Str("event", "shutdown").Msg("relayd stopped")
}
