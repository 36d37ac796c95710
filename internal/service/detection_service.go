package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-id-inspector/internal/analyzer"
	"go-id-inspector/internal/detector"
	apperrors "go-id-inspector/internal/errors"
	"go-id-inspector/internal/logger"
	"go-id-inspector/internal/observer"
	"go-id-inspector/internal/repository"
	"go-id-inspector/internal/strategy"
	"go-id-inspector/pkg/models"
	"go-id-inspector/pkg/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadRequest is a document submitted directly by the caller
type UploadRequest struct {
	ClientID     string
	FileName     string
	Data         []byte
	ExpectedText string
}

// StatsResponse reports service activity
type StatsResponse struct {
	Detections  observer.Metrics   `json:"detections"`
	Workers     analyzer.PoolStats `json:"workers"`
	ModelLoaded bool               `json:"model_loaded"`
}

// DetectionService runs tamper detection for every supported source
type DetectionService interface {
	DetectUpload(ctx context.Context, req UploadRequest) (*models.DetectionResponse, error)
	DetectURL(ctx context.Context, clientID string, req models.URLDetectionRequest) (*models.DetectionResponse, error)
	DetectBlob(ctx context.Context, clientID string, req models.BlobDetectionRequest) (*models.DetectionResponse, error)

	History(ctx context.Context, clientID string, limit int) ([]models.HistoryEntry, error)
	HistoryEntry(ctx context.Context, clientID, id string) (*models.HistoryEntry, error)

	Stats() StatsResponse
}

// PoolStatsSource exposes analyzer worker activity
type PoolStatsSource interface {
	PoolStats() analyzer.PoolStats
}

// ModelStatus reports whether the classifier has been loaded
type ModelStatus interface {
	Loaded() bool
}

// Options carries the collaborators of the detection service. History,
// Blob and Metrics are optional.
type Options struct {
	Detector        detector.Detector
	Uploads         *validation.UploadValidator
	URLSource       strategy.SourceStrategy
	BlobSource      strategy.SourceStrategy
	History         repository.HistoryRepository
	Events          observer.Subject
	Metrics         *observer.MetricsObserver
	Pool            PoolStatsSource
	Model           ModelStatus
	AnalysisTimeout time.Duration
}

type detectionService struct {
	opts Options
	now  func() time.Time
}

// NewDetectionService creates a new detection service
func NewDetectionService(opts Options) DetectionService {
	if opts.Events == nil {
		opts.Events = observer.NewEventPublisher()
	}
	return &detectionService{
		opts: opts,
		now:  time.Now,
	}
}

// DetectUpload validates and analyzes caller supplied bytes
func (s *detectionService) DetectUpload(ctx context.Context, req UploadRequest) (*models.DetectionResponse, error) {
	if _, err := s.opts.Uploads.ValidateUpload(req.FileName, req.Data); err != nil {
		return nil, err
	}
	return s.detect(ctx, "upload", req.ClientID, detector.Input{
		FileName:     req.FileName,
		Data:         req.Data,
		ExpectedText: req.ExpectedText,
	})
}

// DetectURL fetches a remote document and analyzes it
func (s *detectionService) DetectURL(ctx context.Context, clientID string, req models.URLDetectionRequest) (*models.DetectionResponse, error) {
	return s.detectFromSource(ctx, s.opts.URLSource, clientID, req.URL, req.ExpectedText)
}

// DetectBlob downloads a document from blob storage and analyzes it
func (s *detectionService) DetectBlob(ctx context.Context, clientID string, req models.BlobDetectionRequest) (*models.DetectionResponse, error) {
	if s.opts.BlobSource == nil {
		return nil, apperrors.NewNotFoundError("Blob storage source is not configured", nil)
	}
	return s.detectFromSource(ctx, s.opts.BlobSource, clientID, req.Container+"/"+req.Blob, req.ExpectedText)
}

func (s *detectionService) detectFromSource(ctx context.Context, source strategy.SourceStrategy, clientID, ref, expectedText string) (*models.DetectionResponse, error) {
	start := s.now()
	img, err := source.Resolve(ctx, ref)
	if err != nil {
		s.opts.Events.NotifyObservers(ctx, observer.DetectionEvent{
			EventType:      observer.ImageFetchFailed,
			Source:         source.GetStrategyName(),
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}
	s.opts.Events.NotifyObservers(ctx, observer.DetectionEvent{
		EventType:      observer.ImageFetched,
		Source:         source.GetStrategyName(),
		FileName:       img.Name,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"bytes": len(img.Data)},
	})

	return s.detect(ctx, source.GetStrategyName(), clientID, detector.Input{
		FileName:     img.Name,
		Data:         img.Data,
		ExpectedText: expectedText,
	})
}

// detect runs the pipeline under the analysis timeout, records the
// outcome and wraps it in the API envelope. A failed report is still a
// response; only source and validation problems are errors.
func (s *detectionService) detect(ctx context.Context, source, clientID string, in detector.Input) (*models.DetectionResponse, error) {
	start := s.now()
	s.opts.Events.NotifyObservers(ctx, observer.DetectionEvent{
		EventType: observer.DetectionStarted,
		Source:    source,
		FileName:  in.FileName,
	})

	runCtx := ctx
	if s.opts.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.opts.AnalysisTimeout)
		defer cancel()
	}

	report := s.opts.Detector.Detect(runCtx, in)
	elapsed := time.Since(start)

	event := observer.DetectionEvent{
		EventType:      observer.DetectionCompleted,
		Source:         source,
		FileName:       in.FileName,
		ProcessingTime: elapsed,
		Success:        true,
		IsAuthentic:    report.IsAuthentic,
		Confidence:     report.Confidence,
	}
	if report.Error != "" {
		event.EventType = observer.DetectionFailed
		event.Success = false
		event.ErrorMessage = report.Error
	}
	s.opts.Events.NotifyObservers(ctx, event)

	id := uuid.NewString()
	at := s.now()
	s.saveHistory(ctx, clientID, id, in.FileName, at, report)

	return models.NewDetectionResponse(id, in.FileName, at, report), nil
}

// saveHistory persists the verdict for identified callers. A failure to
// persist never fails the detection itself.
func (s *detectionService) saveHistory(ctx context.Context, clientID, id, fileName string, at time.Time, report *models.DetectionReport) {
	if s.opts.History == nil || clientID == "" {
		return
	}

	details, err := json.Marshal(report)
	if err != nil {
		logger.WithError(err).Warn("Failed to encode detection details")
		return
	}

	entry := &models.HistoryEntry{
		ID:         id,
		ClientID:   clientID,
		FileName:   fileName,
		Result:     report.Status(),
		Confidence: report.Confidence,
		Details:    details,
		Timestamp:  at,
	}
	if err := s.opts.History.Save(ctx, entry); err != nil {
		logger.WithFields(logrus.Fields{
			"client_id": clientID,
			"entry_id":  id,
		}).WithError(err).Warn("Failed to save detection history")
		s.opts.Events.NotifyObservers(ctx, observer.DetectionEvent{
			EventType:    observer.HistorySaveFailed,
			FileName:     fileName,
			ErrorMessage: err.Error(),
		})
	}
}

// History lists a client's past verdicts, newest first
func (s *detectionService) History(ctx context.Context, clientID string, limit int) ([]models.HistoryEntry, error) {
	if err := s.requireHistory(clientID); err != nil {
		return nil, err
	}
	entries, err := s.opts.History.List(ctx, clientID, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load history", err)
	}
	return entries, nil
}

// HistoryEntry returns one past verdict with its stored details
func (s *detectionService) HistoryEntry(ctx context.Context, clientID, id string) (*models.HistoryEntry, error) {
	if err := s.requireHistory(clientID); err != nil {
		return nil, err
	}
	entry, err := s.opts.History.Get(ctx, clientID, id)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return nil, apperrors.NewNotFoundError("History entry not found", err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load history entry", err)
	}
	return entry, nil
}

func (s *detectionService) requireHistory(clientID string) error {
	if clientID == "" {
		return apperrors.NewUnauthorizedError("X-Client-ID header is required", nil)
	}
	if s.opts.History == nil {
		return apperrors.NewNotFoundError("Detection history is disabled", nil)
	}
	return nil
}

// Stats reports detection counters, worker activity and model state
func (s *detectionService) Stats() StatsResponse {
	var stats StatsResponse
	if s.opts.Metrics != nil {
		stats.Detections = s.opts.Metrics.GetMetrics()
	}
	if s.opts.Pool != nil {
		stats.Workers = s.opts.Pool.PoolStats()
	}
	if s.opts.Model != nil {
		stats.ModelLoaded = s.opts.Model.Loaded()
	}
	return stats
}
