// Package expiry finds the most plausible expiry date in text recognized from a
// scanned document.
//
// The work is split into independent stages so each can be tested on its own:
//   - Extractor: finds date-shaped substrings in normalized text
//   - Disambiguator: turns a candidate into a valid calendar date in the future,
//     swapping day and month when the natural reading does not work
//   - Scorer: ranks resolved dates by keyword proximity and year plausibility
//
// Detector composes the three stages. Nothing in this package performs I/O or
// keeps state between calls.
package expiry

import "time"

const (
	// DefaultKeywordWindow is how many characters before a candidate are searched for keywords.
	DefaultKeywordWindow = 30

	// DefaultKeywordScore is added for every keyword found in the window.
	DefaultKeywordScore = 10

	// DefaultPlausibleYearBonus is added when the year falls inside the plausibility window.
	DefaultPlausibleYearBonus = 5

	// DefaultPlausibleYears is the width of the plausibility window in years.
	DefaultPlausibleYears = 20
)

// DefaultKeywords returns the vocabulary that usually introduces an expiry date.
func DefaultKeywords() []string {
	return []string{"valid", "expiry", "expires", "until", "upto", "till", "date", "due"}
}

// ScoringConfig holds the tunable relevance heuristics.
type ScoringConfig struct {
	// Keywords are matched as lower-case substrings of the window text.
	Keywords []string

	// KeywordWindow is measured in characters immediately before the candidate.
	KeywordWindow int

	// KeywordScore is added once per keyword present in the window.
	KeywordScore int

	// PlausibleYearBonus is added when now.Year() < year < now.Year()+PlausibleYears.
	PlausibleYearBonus int

	// PlausibleYears caps the plausibility window.
	PlausibleYears int
}

// DefaultScoring returns the scoring constants observed in production.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Keywords:           DefaultKeywords(),
		KeywordWindow:      DefaultKeywordWindow,
		KeywordScore:       DefaultKeywordScore,
		PlausibleYearBonus: DefaultPlausibleYearBonus,
		PlausibleYears:     DefaultPlausibleYears,
	}
}

// Config bundles everything a Detector needs.
type Config struct {
	// Patterns are scanned in order; nil means DefaultPatterns.
	Patterns []Pattern

	// DayFirst reads D/M/YYYY as the natural interpretation instead of M/D/YYYY.
	DayFirst bool

	// Location is used to build calendar dates; nil means time.Local.
	Location *time.Location

	Scoring ScoringConfig
}

// DefaultConfig returns a month-first configuration with the default patterns and scoring.
func DefaultConfig() Config {
	return Config{
		Patterns: DefaultPatterns(),
		Location: time.Local,
		Scoring:  DefaultScoring(),
	}
}
