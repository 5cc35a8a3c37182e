package container

import (
	"fmt"
	"net/http"

	"github.com/photoqc/photoqc-go/internal/analyzer"
	"github.com/photoqc/photoqc-go/internal/config"
	"github.com/photoqc/photoqc-go/internal/logger"
	"github.com/photoqc/photoqc-go/internal/observer"
	"github.com/photoqc/photoqc-go/internal/repository"
	"github.com/photoqc/photoqc-go/internal/service"
	"github.com/photoqc/photoqc-go/internal/storage"
	"github.com/photoqc/photoqc-go/internal/transport"
)

// Container wires the application dependencies together.
type Container struct {
	config     *config.Config
	analyzer   analyzer.ImageAnalyzer
	history    repository.HistoryRepository
	fetcher    storage.ImageFetcher
	blobSyncer storage.BlobSyncer
	metrics    *observer.MetricsObserver
	qcService  service.QCService
	handler    http.Handler
}

// NewContainer builds the dependency graph from the configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	imageAnalyzer, err := analyzer.NewImageAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	history, err := repository.NewBoltHistory(cfg.HistoryDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	fetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout)

	var blobSyncer storage.BlobSyncer
	if cfg.AzureEnabled() {
		blobSyncer, err = storage.NewAzureStorage(
			cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer, cfg.AzureBlobPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob storage: %w", err)
		}
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	qcService := service.NewQCService(imageAnalyzer, history, fetcher, publisher, cfg.FormatPriority)
	handler := transport.NewHandler(qcService, metrics, cfg)

	return &Container{
		config:     cfg,
		analyzer:   imageAnalyzer,
		history:    history,
		fetcher:    fetcher,
		blobSyncer: blobSyncer,
		metrics:    metrics,
		qcService:  qcService,
		handler:    handler,
	}, nil
}

// Handler returns the HTTP handler.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the QC service.
func (c *Container) Service() service.QCService {
	return c.qcService
}

// BlobSyncer returns the configured blob source, or nil when Azure is
// not configured.
func (c *Container) BlobSyncer() storage.BlobSyncer {
	return c.blobSyncer
}

// Close releases the analyzer pool and the history database.
func (c *Container) Close() error {
	var firstErr error
	if err := c.qcService.Close(); err != nil {
		firstErr = err
	}
	if err := c.analyzer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.history.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
