package models

import (
	"encoding/json"
	"time"
)

// URLDetectionRequest asks for detection on an image reachable over HTTP(S)
type URLDetectionRequest struct {
	URL          string `json:"url" binding:"required,url"`
	ExpectedText string `json:"expected_text,omitempty"`
}

// BlobDetectionRequest asks for detection on an image stored in blob storage
type BlobDetectionRequest struct {
	Container    string `json:"container" binding:"required"`
	Blob         string `json:"blob" binding:"required"`
	ExpectedText string `json:"expected_text,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DetectionResponse is the envelope returned to API callers
type DetectionResponse struct {
	ID         string           `json:"id,omitempty"`
	Status     string           `json:"status"`
	Confidence float64          `json:"confidence"`
	FileName   string           `json:"file_name"`
	Timestamp  string           `json:"timestamp"`
	Details    *DetectionReport `json:"details"`
}

// NewDetectionResponse wraps a report in the API envelope
func NewDetectionResponse(id, fileName string, at time.Time, report *DetectionReport) *DetectionResponse {
	return &DetectionResponse{
		ID:         id,
		Status:     report.Status(),
		Confidence: report.Confidence,
		FileName:   fileName,
		Timestamp:  at.Format(time.RFC3339),
		Details:    report,
	}
}

// HistoryEntry is a persisted detection outcome
type HistoryEntry struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"-"`
	FileName   string          `json:"file_name"`
	Result     string          `json:"result"`
	Confidence float64         `json:"confidence"`
	Details    json.RawMessage `json:"details,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// HistorySummary drops the stored details for list views
func (h HistoryEntry) HistorySummary() HistoryEntry {
	h.Details = nil
	return h
}
