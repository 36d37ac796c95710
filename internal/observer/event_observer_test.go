package observer

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type channelObserver struct {
	name   string
	events chan DetectionEvent
}

func (c *channelObserver) OnEvent(_ context.Context, e DetectionEvent) { c.events <- e }
func (c *channelObserver) GetObserverName() string                  { return c.name }

type panickyObserver struct{}

func (panickyObserver) OnEvent(context.Context, DetectionEvent) { panic("observer bug") }
func (panickyObserver) GetObserverName() string                 { return "panicky" }

func TestMetricsObserver(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	events := []DetectionEvent{
		{EventType: DetectionStarted},
		{EventType: DetectionCompleted, IsAuthentic: true, Confidence: 100, ProcessingTime: 2 * time.Second},
		{EventType: DetectionStarted},
		{EventType: DetectionCompleted, IsAuthentic: false, Confidence: 55, ProcessingTime: 4 * time.Second},
		{EventType: DetectionStarted},
		{EventType: DetectionFailed},
		{EventType: ImageFetchFailed},
	}
	for _, e := range events {
		m.OnEvent(ctx, e)
	}

	got := m.GetMetrics()
	if got.TotalDetections != 3 {
		t.Errorf("Expected 3 detections, got %d", got.TotalDetections)
	}
	if got.AuthenticVerdicts != 1 || got.TamperedVerdicts != 1 {
		t.Errorf("Expected 1 authentic and 1 tampered, got %d/%d", got.AuthenticVerdicts, got.TamperedVerdicts)
	}
	if got.FailedDetections != 1 || got.FetchFailures != 1 {
		t.Errorf("Expected 1 failure and 1 fetch failure, got %d/%d", got.FailedDetections, got.FetchFailures)
	}
	if got.AvgProcessingTime != 3*time.Second {
		t.Errorf("Expected average of 3s, got %v", got.AvgProcessingTime)
	}
	if got.AvgConfidence != 77.5 {
		t.Errorf("Expected average confidence 77.5, got %f", got.AvgConfidence)
	}
}

func TestMetricsObserver_Empty(t *testing.T) {
	got := NewMetricsObserver().GetMetrics()
	if got.AvgProcessingTime != 0 || got.AvgConfidence != 0 {
		t.Errorf("Expected zero averages, got %+v", got)
	}
}

func TestEventPublisher(t *testing.T) {
	p := NewEventPublisher()
	obs := &channelObserver{name: "chan", events: make(chan DetectionEvent, 1)}
	p.Subscribe(panickyObserver{})
	p.Subscribe(obs)

	p.NotifyObservers(context.Background(), DetectionEvent{EventType: DetectionStarted, FileName: "card.png"})

	select {
	case e := <-obs.events:
		if e.FileName != "card.png" {
			t.Errorf("Unexpected file name %s", e.FileName)
		}
		if e.Timestamp.IsZero() {
			t.Error("Expected timestamp to be filled in")
		}
	case <-time.After(time.Second):
		t.Fatal("Observer was not notified")
	}

	p.Unsubscribe(obs)
	p.NotifyObservers(context.Background(), DetectionEvent{EventType: DetectionStarted})
	select {
	case <-obs.events:
		t.Error("Unsubscribed observer should not be notified")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoggingObserver(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	obs := NewLoggingObserver(l)

	for _, et := range []EventType{DetectionStarted, DetectionCompleted, DetectionFailed, ImageFetched, ImageFetchFailed, HistorySaveFailed, "custom"} {
		obs.OnEvent(context.Background(), DetectionEvent{EventType: et, ErrorMessage: "x", Metadata: map[string]interface{}{"k": "v"}})
	}
	if obs.GetObserverName() != "logging_observer" {
		t.Errorf("Unexpected name %s", obs.GetObserverName())
	}
}
