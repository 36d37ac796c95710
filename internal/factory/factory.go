package factory

import (
	"fmt"

	"go-id-inspector/internal/analyzer"
	"go-id-inspector/internal/classifier"
	"go-id-inspector/internal/config"
	"go-id-inspector/internal/detector"
	"go-id-inspector/internal/storage"
	"go-id-inspector/internal/verdict"
)

// StorageType represents different image source backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
)

// EngineFactory builds detection engines
type EngineFactory interface {
	CreateEngine(pool *analyzer.WorkerPool, models detector.ModelSource) *detector.Engine
	AnalysisOptions() analyzer.AnalysisOptions
}

// StorageFactory creates image sources
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

// engineFactory implements EngineFactory
type engineFactory struct {
	cfg *config.Config
}

// NewEngineFactory creates a new engine factory
func NewEngineFactory(cfg *config.Config) EngineFactory {
	return &engineFactory{cfg: cfg}
}

// AnalysisOptions derives analyzer options from configuration
func (f *engineFactory) AnalysisOptions() analyzer.AnalysisOptions {
	return analyzer.DefaultOptions().
		WithELAQuality(f.cfg.ELAQuality).
		WithTempDir(f.cfg.ELATempDir).
		WithOCRLanguage(f.cfg.OCRLanguage).
		WithWorkers(f.cfg.AnalyzerWorkers)
}

// CreateEngine wires the production analyzers, OCR and keypoint backends
// into an engine
func (f *engineFactory) CreateEngine(pool *analyzer.WorkerPool, models detector.ModelSource) *detector.Engine {
	opts := f.AnalysisOptions()
	suite := analyzer.NewSuite(opts, analyzer.NewTesseractRecognizer(opts.OCRLanguage), analyzer.NewSIFTDetector())
	return detector.NewEngine(suite, pool, models, verdict.NewAggregator(verdict.DefaultPolicy()))
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates an image source based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.cfg.ImageFetchTimeout, storage.WithMaxBytes(f.cfg.MaxRequestBodySize)), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage is not configured")
		}
		return storage.NewAzureStorage(f.cfg.AzureAccountName, f.cfg.AzureAccountKey, f.cfg.MaxRequestBodySize)
	case LocalStorage:
		return storage.NewLocalFileFetcher(f.cfg.MaxRequestBodySize), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	EngineFactory  EngineFactory
	StorageFactory StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		EngineFactory:  NewEngineFactory(cfg),
		StorageFactory: NewStorageFactory(cfg),
	}
}

// NewModelProvider creates the lazily loaded classifier for the configured artifact
func NewModelProvider(cfg *config.Config) *classifier.Provider {
	return classifier.NewProvider(cfg.ModelPath)
}
