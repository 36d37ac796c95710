package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DetectionEvent describes one step of a detection request
type DetectionEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Source         string                 `json:"source"`
	FileName       string                 `json:"file_name"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	IsAuthentic    bool                   `json:"is_authentic"`
	Confidence     float64                `json:"confidence"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of detection event
type EventType string

const (
	// DetectionStarted when a document has been received
	DetectionStarted EventType = "detection_started"
	// DetectionCompleted when a verdict was produced
	DetectionCompleted EventType = "detection_completed"
	// DetectionFailed when the pipeline returned a failed report
	DetectionFailed EventType = "detection_failed"
	// ImageFetched when a remote image is successfully fetched
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
	// HistorySaveFailed when a verdict could not be persisted
	HistorySaveFailed EventType = "history_save_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event DetectionEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event DetectionEvent)
}

// LoggingObserver logs detection events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles detection events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event DetectionEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"source":             event.Source,
		"file_name":          event.FileName,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	}

	if event.EventType == DetectionCompleted {
		fields["is_authentic"] = event.IsAuthentic
		fields["confidence"] = event.Confidence
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case DetectionStarted:
		entry.Info("Document detection started")
	case DetectionCompleted:
		entry.Info("Document detection completed")
	case DetectionFailed:
		entry.Error("Document detection failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	case HistorySaveFailed:
		entry.Warn("Detection history not saved")
	default:
		entry.Info("Detection event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a snapshot of detection counters
type Metrics struct {
	TotalDetections     int64         `json:"total_detections"`
	AuthenticVerdicts   int64         `json:"authentic_verdicts"`
	TamperedVerdicts    int64         `json:"tampered_verdicts"`
	FailedDetections    int64         `json:"failed_detections"`
	FetchFailures       int64         `json:"fetch_failures"`
	TotalProcessingTime time.Duration `json:"total_processing_time"`
	AvgProcessingTime   time.Duration `json:"avg_processing_time"`
	AvgConfidence       float64       `json:"avg_confidence"`
}

// MetricsObserver collects counters from detection events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalDetections     int64
	authenticVerdicts   int64
	tamperedVerdicts    int64
	failedDetections    int64
	fetchFailures       int64
	totalProcessingTime time.Duration
	confidenceSum       float64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles detection events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event DetectionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case DetectionStarted:
		o.totalDetections++
	case DetectionCompleted:
		if event.IsAuthentic {
			o.authenticVerdicts++
		} else {
			o.tamperedVerdicts++
		}
		o.totalProcessingTime += event.ProcessingTime
		o.confidenceSum += event.Confidence
	case DetectionFailed:
		o.failedDetections++
	case ImageFetchFailed:
		o.fetchFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	m := Metrics{
		TotalDetections:     o.totalDetections,
		AuthenticVerdicts:   o.authenticVerdicts,
		TamperedVerdicts:    o.tamperedVerdicts,
		FailedDetections:    o.failedDetections,
		FetchFailures:       o.fetchFailures,
		TotalProcessingTime: o.totalProcessingTime,
	}
	if completed := o.authenticVerdicts + o.tamperedVerdicts; completed > 0 {
		m.AvgProcessingTime = o.totalProcessingTime / time.Duration(completed)
		m.AvgConfidence = o.confidenceSum / float64(completed)
	}
	return m
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event. Observers run
// concurrently and a panicking observer does not affect the others.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event DetectionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
