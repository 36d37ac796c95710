package detector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-id-inspector/internal/analyzer"
	"go-id-inspector/internal/classifier"
	"go-id-inspector/internal/logger"
	"go-id-inspector/internal/verdict"
	"go-id-inspector/pkg/models"

	"github.com/sirupsen/logrus"
)

// ModelSource hands out the fitted classifier
type ModelSource interface {
	Model(ctx context.Context) (classifier.Model, error)
}

// Input is one document submitted for detection
type Input struct {
	FileName     string
	Data         []byte
	ExpectedText string
}

// Detector runs the full tamper detection pipeline
type Detector interface {
	Detect(ctx context.Context, in Input) *models.DetectionReport
}

// Engine decodes a document, runs every analyzer concurrently, joins
// their records and hands them to the classifier and the aggregator
type Engine struct {
	analyzers  []analyzer.Analyzer
	pool       *analyzer.WorkerPool
	models     ModelSource
	aggregator *verdict.Aggregator
}

// NewEngine creates a detection engine. A nil pool runs analyzers on
// their own goroutines.
func NewEngine(analyzers []analyzer.Analyzer, pool *analyzer.WorkerPool, models ModelSource, aggregator *verdict.Aggregator) *Engine {
	if aggregator == nil {
		aggregator = verdict.NewAggregator(verdict.DefaultPolicy())
	}
	return &Engine{
		analyzers:  analyzers,
		pool:       pool,
		models:     models,
		aggregator: aggregator,
	}
}

// Detect always returns a report. Failures that prevent a verdict
// produce a zero-confidence report with the error populated.
func (e *Engine) Detect(ctx context.Context, in Input) (report *models.DetectionReport) {
	start := time.Now()
	log := logger.WithField("file_name", in.FileName)

	defer func() {
		if r := recover(); r != nil {
			report = e.fail(log, fmt.Errorf("detection panicked: %v", r))
		}
	}()

	report, err := e.detect(ctx, in)
	if err != nil {
		return e.fail(log, err)
	}

	log.WithFields(logrus.Fields{
		"is_authentic": report.IsAuthentic,
		"confidence":   report.Confidence,
		"reasons":      len(report.Reasons),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Detection completed")
	return report
}

func (e *Engine) detect(ctx context.Context, in Input) (*models.DetectionReport, error) {
	doc, err := analyzer.Decode(in.FileName, in.Data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	doc.ExpectedText = in.ExpectedText

	checks := make(map[string]models.CheckRecord, len(e.analyzers)+2)
	checks[models.CheckImageProperties] = doc.Properties

	degraded := 0
	for _, out := range e.runAnalyzers(ctx, doc) {
		if out.Interrupted() {
			return nil, fmt.Errorf("%s check interrupted: %w", out.Name, out.Err)
		}
		checks[out.Name] = out.Record
		if out.Degraded {
			degraded++
		}
	}
	// No verdict once the caller has given up
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("detection aborted: %w", err)
	}
	if degraded > 0 {
		logger.WithFields(logrus.Fields{
			"file_name": in.FileName,
			"degraded":  degraded,
		}).Warn("Some checks fell back to default results")
	}

	if e.models == nil {
		return nil, fmt.Errorf("classifier is not configured")
	}
	model, err := e.models.Model(ctx)
	if err != nil {
		return nil, fmt.Errorf("classifier unavailable: %w", err)
	}
	outcome, err := classifier.Classify(model, classifier.FromChecks(checks))
	if err != nil {
		return nil, err
	}

	return e.aggregator.Aggregate(checks, outcome), nil
}

// runAnalyzers fans the analyzers out and waits for every one of them.
// The document must stay open until this returns.
func (e *Engine) runAnalyzers(ctx context.Context, doc *analyzer.Document) []analyzer.Outcome {
	outcomes := make([]analyzer.Outcome, len(e.analyzers))

	var wg sync.WaitGroup
	for i, a := range e.analyzers {
		i, a := i, a
		wg.Add(1)
		job := func() {
			defer wg.Done()
			outcomes[i] = analyzer.Run(ctx, a, doc)
		}
		if e.pool == nil {
			go job()
			continue
		}
		if !e.pool.Submit(job) {
			job()
		}
	}
	wg.Wait()
	return outcomes
}

func (e *Engine) fail(log *logrus.Entry, err error) *models.DetectionReport {
	log.WithError(err).Error("Detection failed")
	return models.FailedReport(err)
}

// PoolStats reports analyzer worker pool activity
func (e *Engine) PoolStats() analyzer.PoolStats {
	if e.pool == nil {
		return analyzer.PoolStats{}
	}
	return e.pool.GetStats()
}
