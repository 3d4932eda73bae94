package expiry

import (
	"errors"
	"time"
)

var (
	// ErrNoCandidates means the text held nothing shaped like a date.
	ErrNoCandidates = errors.New("no date-shaped text found")

	// ErrNoFutureDate means every candidate was invalid or stayed in the past after swapping.
	ErrNoFutureDate = errors.New("no candidate resolves to a valid future date")
)

// Report describes one detection run over recognized text.
type Report struct {
	Normalized string
	Candidates []Candidate
	Resolved   []ResolvedDate
	Best       *ResolvedDate
}

// Detector runs extraction, disambiguation and scoring over recognized text.
// It is safe for concurrent use.
type Detector struct {
	extractor     Extractor
	disambiguator Disambiguator
	scorer        Scorer
}

// NewDetector creates a Detector from cfg.
func NewDetector(cfg Config) *Detector {
	return &Detector{
		extractor:     NewExtractor(cfg.Patterns),
		disambiguator: Disambiguator{DayFirst: cfg.DayFirst, Location: cfg.Location},
		scorer:        NewScorer(cfg.Scoring),
	}
}

// Detect returns the most plausible expiry date in raw relative to now.
// ErrNoCandidates and ErrNoFutureDate are ordinary empty results; the
// report is filled in as far as the run got either way.
func (d *Detector) Detect(raw string, now time.Time) (Report, error) {
	report := Report{Normalized: Normalize(raw)}

	report.Candidates = d.extractor.Extract(report.Normalized)
	if len(report.Candidates) == 0 {
		return report, ErrNoCandidates
	}

	for _, c := range report.Candidates {
		date, ok := d.disambiguator.Resolve(c, now)
		if !ok {
			continue
		}
		report.Resolved = append(report.Resolved, ResolvedDate{
			Candidate: c,
			Date:      date,
			Score:     d.scorer.Score(report.Normalized, c.Offset, date, now),
		})
	}

	best, ok := d.scorer.Best(report.Resolved)
	if !ok {
		return report, ErrNoFutureDate
	}
	report.Best = &best
	return report, nil
}
