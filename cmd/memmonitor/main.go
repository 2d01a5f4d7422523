// Command memmonitor tracks Native Heap, Unknown, TOTAL and unreachable
// memory of an Android package over time.
//
// Usage:
//
//	memmonitor [flags] [package] [interval-seconds]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/deeeed/expo-audio-stream/internal/config"
	"github.com/deeeed/expo-audio-stream/internal/logging"
	"github.com/deeeed/expo-audio-stream/internal/meminfo"
	"github.com/deeeed/expo-audio-stream/internal/metrics"
	"github.com/deeeed/expo-audio-stream/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (defaults built in)")
	listen := flag.String("listen", "", "Serve health and Prometheus metrics on this address")
	adbPath := flag.String("adb", "", "Path to the adb binary")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := applyArgs(&cfg.Monitor, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if *listen != "" {
		cfg.Monitor.ListenAddress = *listen
	}
	if *adbPath != "" {
		cfg.Monitor.ADBPath = *adbPath
	}
	if err := cfg.Monitor.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid monitor settings: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	run(logger, cfg.Monitor)
}

// applyArgs reads the optional positional package name and interval.
func applyArgs(m *config.MonitorConfig, args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("usage: memmonitor [flags] [package] [interval-seconds]")
	}
	if len(args) > 0 {
		m.Package = args[0]
	}
	if len(args) > 1 {
		interval, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", args[1], err)
		}
		m.Interval = interval
	}
	return nil
}

func run(logger *zap.Logger, cfg config.MonitorConfig) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sessionID := uuid.NewString()
	logger = logger.With(zap.String("session_id", sessionID))

	fmt.Printf("Monitoring memory for: %s\n", cfg.Package)
	fmt.Printf("Interval: %ds\n", cfg.Interval)
	fmt.Print("Press Ctrl+C to stop\n\n")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	started := time.Now()
	tracker := meminfo.NewTracker(started, meminfo.Thresholds{
		WarnMB:     cfg.WarnNativeMB,
		CriticalMB: cfg.CriticalNativeMB,
	})
	sampler := meminfo.NewSampler(cfg.ADBPath, cfg.Package, nil, logger)
	monitor := meminfo.NewMonitor(sampler, tracker, cfg.GetIntervalDuration(), os.Stdout, logger, appMetrics)

	var httpServer *server.HTTPServer
	if cfg.ListenAddress != "" {
		httpServer = server.NewHTTPServer(server.HTTPServerConfig{
			Address:   cfg.ListenAddress,
			SessionID: sessionID,
			Package:   cfg.Package,
		}, logger, tracker, appMetrics, reg)
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start HTTP server, continuing without it", zap.Error(err))
			httpServer = nil
		}
	}

	logger.Debug("Memory monitor started",
		zap.String("package", cfg.Package),
		zap.Duration("interval", cfg.GetIntervalDuration()),
		zap.String("adb", cfg.ADBPath),
	)

	monitor.Run(ctx)

	fmt.Print("\n\n" + tracker.Summary(time.Now()))

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", zap.Error(err))
		}
	}
}
