package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/sirupsen/logrus"

	"github.com/photoqc/photoqc-go/internal/analyzer"
	"github.com/photoqc/photoqc-go/internal/config"
	"github.com/photoqc/photoqc-go/internal/container"
	"github.com/photoqc/photoqc-go/internal/logger"
)

func main() {
	fs := ff.NewFlagSet("photoqc")
	var (
		dir          = fs.StringLong("dir", "", "QC directory to analyze (defaults to ./QCImages)")
		formats      = fs.StringLong("formats", "", "Format priority, e.g. 'tiff,png,jpeg'")
		reference    = fs.StringLong("reference", "", "Reference image for full-reference comparison")
		expectedText = fs.StringLong("expected-text", "", "Expected label text; enables OCR verification")
		fast         = fs.BoolLong("fast", "Fast mode: sharpness and exposure metrics only")
		dbPath       = fs.StringLong("db", "", "History database file path")
		sync         = fs.BoolLong("sync", "Sync configured Azure blob container into the QC directory first")
		serve        = fs.BoolLong("serve", "Run the HTTP API instead of a one-shot QC pass")
		port         = fs.StringLong("port", "", "HTTP server port")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("PHOTOQC"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.WithError(err).Error("Failed to load config")
		os.Exit(1)
	}

	// Flags win over environment settings.
	if *dir != "" {
		cfg.QCDirectory = *dir
	}
	if *dbPath != "" {
		cfg.HistoryDBPath = *dbPath
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *formats != "" {
		priority, err := config.ParseFormatPriority(*formats)
		if err != nil {
			logger.WithError(err).Error("Invalid format priority")
			os.Exit(1)
		}
		cfg.FormatPriority = priority
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize")
		os.Exit(1)
	}
	defer c.Close()

	if *sync {
		if c.BlobSyncer() == nil {
			logger.Error("Blob sync requested but no Azure account is configured")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		synced, err := c.BlobSyncer().Sync(ctx, cfg.QCDirectory)
		cancel()
		if err != nil {
			logger.WithError(err).Error("Blob sync failed")
			os.Exit(1)
		}
		logger.WithFields(logrus.Fields{
			"synced":    synced,
			"directory": cfg.QCDirectory,
		}).Info("Blob sync completed")
	}

	if *serve {
		runServer(c, cfg)
		return
	}

	runOnce(c, cfg, *fast, *reference, *expectedText)
}

// runOnce analyzes one QC directory and prints the report as JSON on
// stdout. Exit code 1 means the run failed, 2 means the image failed
// quality control.
func runOnce(c *container.Container, cfg *config.Config, fast bool, reference, expectedText string) {
	var opts analyzer.AnalysisOptions
	switch {
	case expectedText != "":
		opts = analyzer.OCROptions(expectedText)
	case fast:
		opts = analyzer.FastOptions()
	default:
		opts = analyzer.DefaultOptions()
	}
	opts.OCRLanguage = cfg.OCRLanguage
	if reference != "" {
		opts = opts.WithReference(reference)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AnalysisTimeout)
	defer cancel()

	report, err := c.Service().RunQCWithOptions(ctx, cfg.QCDirectory, opts)
	if err != nil {
		logger.WithError(err).Error("QC run failed")
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		logger.WithError(err).Error("Failed to encode report")
		os.Exit(1)
	}

	if !report.Quality.IsValid {
		os.Exit(2)
	}
}

func runServer(c *container.Container, cfg *config.Config) {
	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      c.Handler(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"address": cfg.ServerAddress(),
			"timeout": cfg.RequestTimeout,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		os.Exit(1)
	}

	logger.Info("Server exited")
}
