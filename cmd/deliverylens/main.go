package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
	"github.com/sanspareilsmyn/deliverylens/internal/logging"
	"github.com/sanspareilsmyn/deliverylens/internal/pipeline"
)

var (
	configFile = pflag.StringP("config", "c", "configs/config.dev.yaml", "Path to the configuration file (empty to use defaults and environment only)")
	_          = pflag.StringP("input", "i", "", "Path to the translation events file")
	_          = pflag.IntP("window", "w", 0, "Trailing window size in minutes")
	_          = pflag.StringP("output-dir", "o", "", "Directory the report file is written to")
	logger     *zap.Logger
)

func main() {
	// Initialize Configuration
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if errors.Is(err, config.ErrConfigFileMissing) && !pflag.CommandLine.Changed("config") {
		cfg, err = config.Load("")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}
	if err := config.ApplyFlags(cfg, pflag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Invalid command line: %v\n", err)
		os.Exit(1)
	}

	p := newPrompter(os.Stdin, os.Stdout)
	if err := p.complete(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize Logger
	var logErr error
	logger, logErr = logging.NewLogger(cfg.Log)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", logErr)
		os.Exit(1)
	}

	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Infow("Logger initialized",
		"level", cfg.Log.Level,
		"format", cfg.Log.Format,
	)
	sugar.Infow("Configuration loaded", "path", *configFile, "driver", cfg.Input.Driver)

	// Initialize Pipeline
	pipe, err := pipeline.New(cfg, logger)
	if err != nil {
		sugar.Errorw("Failed to initialize pipeline", zap.Error(err))
		return 1
	}
	defer func() {
		if err := pipe.Close(); err != nil {
			sugar.Warnw("Failed to close pipeline", zap.Error(err))
		}
	}()

	// Handle Graceful Shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		select {
		case sig := <-signals:
			sugar.Infow("Received signal, cancelling run...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	// Run Pipeline
	result, runErr := pipe.Run(ctx)

	// Evaluate Pipeline Result
	finalLogLevel := zapcore.InfoLevel
	outcome := "completed"
	var finalErrorField = zap.Skip()
	exitCode := 0

	switch {
	case runErr == nil:
		fmt.Printf("The above report was exported to the file: %s\n", result.OutputPath)
	case errors.Is(runErr, context.Canceled):
		outcome = "cancelled"
		finalErrorField = zap.Error(runErr)
		exitCode = 1
	default:
		outcome = "failed"
		finalLogLevel = zapcore.ErrorLevel
		finalErrorField = zap.Error(runErr)
		exitCode = 1
	}

	logger.Log(finalLogLevel, fmt.Sprintf("Report run %s.", outcome),
		zap.String("outcome", outcome),
		finalErrorField,
	)
	return exitCode
}
