package expiry

import (
	"strings"
	"time"
)

// ResolvedDate is a candidate paired with its future calendar date and relevance score.
type ResolvedDate struct {
	Candidate Candidate `json:"candidate"`
	Date      time.Time `json:"date"`
	Score     int       `json:"score"`
}

// Scorer ranks resolved dates.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a Scorer. Keywords are lower-cased to match normalized text.
func NewScorer(cfg ScoringConfig) Scorer {
	keywords := make([]string, 0, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	cfg.Keywords = keywords
	return Scorer{cfg: cfg}
}

// Score returns the relevance of a date found at offset in text. Each keyword
// present in the window before the offset contributes KeywordScore, and a year
// strictly between now's year and PlausibleYears later earns PlausibleYearBonus.
func (s Scorer) Score(text string, offset int, date time.Time, now time.Time) int {
	score := 0

	window := precedingWindow(text, offset, s.cfg.KeywordWindow)
	for _, k := range s.cfg.Keywords {
		if strings.Contains(window, k) {
			score += s.cfg.KeywordScore
		}
	}

	year, current := date.Year(), now.Year()
	if year > current && year < current+s.cfg.PlausibleYears {
		score += s.cfg.PlausibleYearBonus
	}
	return score
}

// Best picks the highest score. Ties go to the earliest date in scan order.
// An empty list has no winner.
func (s Scorer) Best(dates []ResolvedDate) (ResolvedDate, bool) {
	if len(dates) == 0 {
		return ResolvedDate{}, false
	}
	best := dates[0]
	for _, d := range dates[1:] {
		if d.Score > best.Score {
			best = d
		}
	}
	return best, true
}

// precedingWindow returns up to width characters immediately before offset.
func precedingWindow(text string, offset, width int) string {
	if offset > len(text) {
		offset = len(text)
	}
	if offset <= 0 || width <= 0 {
		return ""
	}
	prefix := []rune(text[:offset])
	if len(prefix) > width {
		prefix = prefix[len(prefix)-width:]
	}
	return string(prefix)
}
