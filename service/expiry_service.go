package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docvault/expiry-scanner/client"
	"github.com/docvault/expiry-scanner/dto"
	"github.com/docvault/expiry-scanner/logger"
	"github.com/docvault/expiry-scanner/utils/expiry"
)

// DefaultDetectionTimeout bounds one recognition call.
const DefaultDetectionTimeout = 30 * time.Second

// ExpiryService finds the most plausible expiry date on a document image.
type ExpiryService struct {
	recognizer client.Recognizer
	detector   *expiry.Detector
	clock      Clock
	timeout    time.Duration
	log        zerolog.Logger
}

// NewExpiryService wires a recognizer to a detector. A nil clock uses the
// system clock and a non-positive timeout uses DefaultDetectionTimeout.
func NewExpiryService(recognizer client.Recognizer, detector *expiry.Detector, clock Clock, timeout time.Duration) *ExpiryService {
	if clock == nil {
		clock = RealClock{}
	}
	if timeout <= 0 {
		timeout = DefaultDetectionTimeout
	}
	return &ExpiryService{
		recognizer: recognizer,
		detector:   detector,
		clock:      clock,
		timeout:    timeout,
		log:        logger.WithComponent("expiry"),
	}
}

// DetectExpiryDate returns the detected expiry date, or nil when none was
// found or anything went wrong. It never returns an error.
func (s *ExpiryService) DetectExpiryDate(ctx context.Context, ref client.ImageRef) *time.Time {
	return s.Detect(ctx, ref).ExpiryDate
}

// Detect runs one detection and reports how it ended.
func (s *ExpiryService) Detect(ctx context.Context, ref client.ImageRef) (result *dto.DetectionResult) {
	started := time.Now()
	result = &dto.DetectionResult{
		RunID:      uuid.NewString(),
		Candidates: []dto.CandidateScore{},
	}
	log := s.log.With().Str("run_id", result.RunID).Str("image", ref.Describe()).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("detection panicked")
			result.Outcome = dto.OutcomeRecognitionFailed
			result.ExpiryDate = nil
			result.Error = fmt.Sprint(r)
		}
		result.DurationMs = time.Since(started).Milliseconds()
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.recognize(runCtx, ref)
	if err != nil {
		result.Outcome = dto.OutcomeRecognitionFailed
		if errors.Is(err, context.DeadlineExceeded) {
			result.Outcome = dto.OutcomeTimedOut
		}
		result.Error = err.Error()
		log.Warn().Err(err).Str("outcome", string(result.Outcome)).Msg("text recognition failed")
		return result
	}

	if strings.TrimSpace(text) == "" {
		result.Outcome = dto.OutcomeNoText
		log.Info().Msg("no text recognized")
		return result
	}

	report, err := s.detector.Detect(text, s.clock.Now())
	if e := log.Debug(); e.Enabled() {
		raw := make([]string, len(report.Candidates))
		for i, c := range report.Candidates {
			raw[i] = c.Raw
		}
		e.Strs("candidates", raw).Int("resolved", len(report.Resolved)).Msg("date candidates")
	}
	for _, r := range report.Resolved {
		result.Candidates = append(result.Candidates, dto.CandidateScore{
			Raw:   r.Candidate.Raw,
			Shape: r.Candidate.Shape.String(),
			Date:  r.Date,
			Score: r.Score,
		})
	}

	switch {
	case errors.Is(err, expiry.ErrNoCandidates):
		result.Outcome = dto.OutcomeNoCandidates
		log.Info().Msg("no dates found in text")
	case errors.Is(err, expiry.ErrNoFutureDate):
		result.Outcome = dto.OutcomeNoFutureDate
		log.Info().Int("candidates", len(report.Candidates)).Msg("no future dates found")
	case err != nil:
		result.Outcome = dto.OutcomeRecognitionFailed
		result.Error = err.Error()
		log.Warn().Err(err).Msg("detection failed")
	default:
		date := report.Best.Date
		result.Outcome = dto.OutcomeDetected
		result.ExpiryDate = &date
		log.Info().
			Str("expiry_date", date.Format("2006-01-02")).
			Int("score", report.Best.Score).
			Str("raw", report.Best.Candidate.Raw).
			Msg("expiry date detected")
	}

	return result
}

type recognition struct {
	text string
	err  error
}

// recognize runs the recognizer in its own goroutine so a stuck engine
// cannot outlive the run's deadline, and turns engine panics into errors.
func (s *ExpiryService) recognize(ctx context.Context, ref client.ImageRef) (string, error) {
	done := make(chan recognition, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- recognition{err: fmt.Errorf("%w: recognizer panic: %v", client.ErrRecognitionFailed, r)}
			}
		}()
		text, err := s.recognizer.Recognize(ctx, ref)
		done <- recognition{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}
