// Command wavgen regenerates the WAV fixtures used by the Android unit tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/deeeed/expo-audio-stream/internal/config"
	"github.com/deeeed/expo-audio-stream/internal/fixtures"
	"github.com/deeeed/expo-audio-stream/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (defaults built in)")
	outputDir := flag.String("out", "", "Output directory (overrides generator.output_dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Generator.OutputDir = *outputDir
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(logger, cfg))
}

func run(logger *zap.Logger, cfg *config.Config) int {
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gen := fixtures.NewGenerator(cfg.Generator.OutputDir, cfg.Generator.Amplitude, logger)
	results, err := gen.Generate(ctx, cfg.Generator.Fixtures)
	if err != nil {
		logger.Error("Fixture generation failed",
			zap.Int("completed", len(results)),
			zap.Int("requested", len(cfg.Generator.Fixtures)),
			zap.Error(err),
		)
		return 1
	}

	logger.Info("All test WAV files generated successfully",
		zap.Int("count", len(results)),
		zap.String("output_dir", cfg.Generator.OutputDir),
	)
	return 0
}
