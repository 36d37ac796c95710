package container

import (
	"fmt"
	"net/http"

	"go-id-inspector/internal/analyzer"
	"go-id-inspector/internal/classifier"
	"go-id-inspector/internal/config"
	"go-id-inspector/internal/factory"
	"go-id-inspector/internal/logger"
	"go-id-inspector/internal/observer"
	"go-id-inspector/internal/repository"
	"go-id-inspector/internal/service"
	"go-id-inspector/internal/strategy"
	"go-id-inspector/internal/transport"
	"go-id-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config           *config.Config
	pool             *analyzer.WorkerPool
	models           *classifier.Provider
	history          repository.HistoryRepository
	detectionService service.DetectionService
	handler          http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		var err error
		if cfg, err = config.LoadFromEnv(); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	components := factory.NewComponentFactory(cfg)

	// Build dependency graph
	pool := analyzer.NewWorkerPool(cfg.AnalyzerWorkers)
	pool.Start()

	models := factory.NewModelProvider(cfg)
	engine := components.EngineFactory.CreateEngine(pool, models)

	uploads := validation.NewUploadValidator(cfg.MaxRequestBodySize)
	urls := validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedImageHosts)

	httpFetcher, err := components.StorageFactory.CreateStorage(factory.HTTPStorage)
	if err != nil {
		pool.Close()
		return nil, err
	}
	urlSource := strategy.NewURLSourceStrategy(urls, uploads, httpFetcher)

	var blobSource strategy.SourceStrategy
	if cfg.AzureEnabled() {
		blobFetcher, err := components.StorageFactory.CreateStorage(factory.AzureStorage)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create blob storage: %w", err)
		}
		blobSource = strategy.NewBlobSourceStrategy(uploads, blobFetcher)
	}

	var history repository.HistoryRepository
	if cfg.HistoryEnabled() {
		h, err := repository.NewSQLiteHistory(cfg.HistoryDBPath)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		history = h
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	detectionService := service.NewDetectionService(service.Options{
		Detector:        engine,
		Uploads:         uploads,
		URLSource:       urlSource,
		BlobSource:      blobSource,
		History:         history,
		Events:          events,
		Metrics:         metrics,
		Pool:            engine,
		Model:           models,
		AnalysisTimeout: cfg.AnalysisTimeout,
	})
	handler := transport.NewHandler(detectionService, cfg)

	logger.WithFields(logrus.Fields{
		"workers":         cfg.AnalyzerWorkers,
		"model_path":      cfg.ModelPath,
		"blob_enabled":    blobSource != nil,
		"history_enabled": history != nil,
	}).Info("Detection service initialized")

	return &Container{
		config:           cfg,
		pool:             pool,
		models:           models,
		history:          history,
		detectionService: detectionService,
		handler:          handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the detection service
func (c *Container) Service() service.DetectionService {
	return c.detectionService
}

// Close stops the analyzer workers and releases the history store
func (c *Container) Close() error {
	c.pool.Close()
	if c.history != nil {
		return c.history.Close()
	}
	return nil
}
