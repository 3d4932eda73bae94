package dto

import (
	"errors"
	"time"
)

// Custom errors
var (
	ErrEmptyFile         = errors.New("uploaded file is empty")
	ErrFileTooLarge      = errors.New("uploaded file exceeds maximum size")
	ErrInvalidCategory   = errors.New("category must be one of Identity, Medical, Education, Work, Financial, Others")
	ErrInvalidExpiryDate = errors.New("expiryDate must be YYYY-MM-DD or RFC3339")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DetectionOutcome names how a detection run ended
type DetectionOutcome string

const (
	OutcomeDetected          DetectionOutcome = "detected"
	OutcomeRecognitionFailed DetectionOutcome = "recognition_failed"
	OutcomeTimedOut          DetectionOutcome = "timed_out"
	OutcomeNoText            DetectionOutcome = "no_text"
	OutcomeNoCandidates      DetectionOutcome = "no_candidates"
	OutcomeNoFutureDate      DetectionOutcome = "no_future_date"
)

// CandidateScore is one resolved candidate and its relevance score
type CandidateScore struct {
	Raw   string    `json:"raw"`
	Shape string    `json:"shape"`
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// DetectionResult is the diagnostic view of one detection run
type DetectionResult struct {
	RunID      string           `json:"run_id"`
	Outcome    DetectionOutcome `json:"outcome"`
	ExpiryDate *time.Time       `json:"expiry_date"`
	Candidates []CandidateScore `json:"candidates"`
	DurationMs int64            `json:"duration_ms"`
	Error      string           `json:"-"`
}

// UploadResponse is returned after an upload is accepted
type UploadResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	File    *FileRecord `json:"file"`
}
