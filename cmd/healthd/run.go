package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	businesshealth "github.com/vitaliisemenov/healthd/internal/business/health"
	"github.com/vitaliisemenov/healthd/internal/config"
	core "github.com/vitaliisemenov/healthd/internal/core/health"
	infrahealth "github.com/vitaliisemenov/healthd/internal/infrastructure/health"
	"github.com/vitaliisemenov/healthd/internal/supervisor"
	"github.com/vitaliisemenov/healthd/pkg/logger"
	"github.com/vitaliisemenov/healthd/pkg/metrics"
)

// newRunCommand starts the supervisor loop and blocks until SIGINT/SIGTERM,
// the graceful-shutdown shape of cmd/server/main.go adapted to a loop
// instead of an HTTP server.
func newRunCommand(configPath, pidFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the health evaluation supervisor loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log := logger.NewLogger(logger.Config{
				Level:      cfg.Log.Level,
				Format:     cfg.Log.Format,
				Output:     cfg.Log.Output,
				Filename:   cfg.Log.Filename,
				MaxSize:    cfg.Log.MaxSize,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAge:     cfg.Log.MaxAge,
				Compress:   cfg.Log.Compress,
			})

			if err := writePIDFile(*pidFile); err != nil {
				return fmt.Errorf("write pid file: %w", err)
			}
			defer removePIDFile(*pidFile)

			loop := buildMainLoop(cfg, log)

			if cfg.Metrics.Enabled {
				go serveMetrics(cfg.Metrics.Addr, log)
			}

			sigHandler := newSignalHandler(loop, log)
			sigHandler.start()
			defer sigHandler.stop()

			ctx, cancel := context.WithCancel(context.Background())
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

			go func() {
				<-quit
				log.Info("shutting down")
				cancel()
			}()

			log.Info("healthd starting", "service", serviceName, "version", serviceVersion)
			loop.Run(ctx)
			log.Info("healthd stopped")
			return nil
		},
	}
}

func buildMainLoop(cfg *config.Config, log *slog.Logger) *supervisor.MainLoop {
	registry := metrics.NewMetricsRegistry(cfg.Metrics.Namespace)

	alarmLog := infrahealth.NewAlarmLog(cfg.Health.AlarmLogMax)
	notifier := infrahealth.NewProcessNotifier(cfg.Health.NotifierPath, cfg.Health.NotifierTimeout, log)
	silencerLoader := infrahealth.NewSilencerFileLoader()

	store := core.NewSilencerStore()
	if cfg.Health.SilencersFile != "" {
		if stype, allAlarms, silencers, err := silencerLoader.Load(cfg.Health.SilencersFile); err == nil {
			store.Replace(stype, allAlarms, silencers)
		} else {
			log.Warn("initial silencers load failed, continuing with an empty store", "error", err)
		}
	}

	loop := supervisor.NewMainLoop(log)
	loop.Evaluator = businesshealth.NewEvaluator(nil)
	loop.Transition = businesshealth.NewTransitionEngine()
	loop.SilencerMatcher = businesshealth.NewSilencerMatcher(cfg.Health.GlobCacheSize, log)
	loop.SilencerStore = store
	loop.Log = alarmLog
	loop.Dispatcher = businesshealth.NewDispatcher(alarmLog, notifier)
	loop.Reload = businesshealth.NewReloadCoordinator(silencerLoader, log)
	loop.SilencersPath = cfg.Health.SilencersFile
	loop.MinRunEvery = minRunEvery(cfg)
	loop.HibernationDelay = hibernationDelay(cfg)
	loop.Enabled = cfg.Health.Enabled
	loop.Metrics = registry

	return loop
}

func minRunEvery(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Health.RunAtLeastEverySeconds) * time.Second
}

func hibernationDelay(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Health.PostponeHibernationSec) * time.Second
}

func serveMetrics(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("metrics endpoint starting", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Error("metrics endpoint failed", "error", err)
	}
}
