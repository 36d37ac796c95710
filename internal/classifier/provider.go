package classifier

import (
	"context"
	"sync"

	"go-id-inspector/internal/logger"

	"golang.org/x/sync/singleflight"
)

// Loader produces a model, typically by reading an artifact from disk
type Loader func() (Model, error)

// Provider owns the process-wide classifier. The model is loaded on first
// use, concurrent first callers share one load, and a successful load is
// kept for the lifetime of the provider. Failed loads are retried on the
// next call.
type Provider struct {
	load  Loader
	group singleflight.Group

	mu    sync.RWMutex
	model Model
}

// NewProvider creates a provider that loads the artifact at path
func NewProvider(path string) *Provider {
	return NewProviderWithLoader(func() (Model, error) {
		logger.WithField("model_path", path).Info("Loading classifier artifact")
		return LoadModel(path)
	})
}

// NewProviderWithLoader creates a provider around a custom loader
func NewProviderWithLoader(load Loader) *Provider {
	return &Provider{load: load}
}

// NewStaticProvider wraps an already-built model
func NewStaticProvider(m Model) *Provider {
	return &Provider{model: m}
}

// Model returns the cached model, loading it if needed
func (p *Provider) Model(ctx context.Context) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	m := p.model
	p.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	ch := p.group.DoChan("model", func() (interface{}, error) {
		p.mu.RLock()
		cached := p.model
		p.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := p.load()
		if err != nil {
			logger.WithError(err).Error("Classifier artifact unavailable")
			return nil, err
		}

		p.mu.Lock()
		p.model = loaded
		p.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Model), nil
	}
}

// Loaded reports whether a model is cached
func (p *Provider) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model != nil
}
