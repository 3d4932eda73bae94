package expiry

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore_KeywordsAndYearBonus(t *testing.T) {
	s := NewScorer(DefaultScoring())
	now := utcDate(2024, time.January, 1)
	text := "id valid upto 10/12/2025 ref 2021"

	got := s.Score(text, strings.Index(text, "10/12/2025"), utcDate(2025, time.October, 12), now)

	// valid + upto + plausible year
	assert.Equal(t, 25, got)
}

func TestScore_KeywordsCompound(t *testing.T) {
	s := NewScorer(DefaultScoring())
	now := utcDate(2024, time.January, 1)
	text := "valid until date due 01/01/2030"

	got := s.Score(text, strings.Index(text, "01/01/2030"), utcDate(2030, time.January, 1), now)
	assert.Equal(t, 45, got)
}

func TestScore_WindowIsThirtyCharacters(t *testing.T) {
	s := NewScorer(DefaultScoring())
	now := utcDate(2024, time.January, 1)
	date := utcDate(2030, time.January, 1)

	inside := "expiry" + strings.Repeat(" ", 23) + "01/01/2030"
	outside := "expiry" + strings.Repeat(" ", 30) + "01/01/2030"

	assert.Equal(t, 15, s.Score(inside, strings.Index(inside, "01/"), date, now))
	assert.Equal(t, 5, s.Score(outside, strings.Index(outside, "01/"), date, now))
}

func TestScore_ExpiryKeywordOutscoresBareDate(t *testing.T) {
	s := NewScorer(DefaultScoring())
	now := utcDate(2024, time.January, 1)
	date := utcDate(2030, time.March, 1)

	withKeyword := s.Score("expiry 01/03/2030", 7, date, now)
	bare := s.Score("xxxxxx 01/03/2030", 7, date, now)

	assert.GreaterOrEqual(t, withKeyword-bare, 10)
}

func TestScore_PlausibleYearWindow(t *testing.T) {
	s := NewScorer(DefaultScoring())
	now := utcDate(2024, time.January, 1)

	tests := []struct {
		year int
		want int
	}{
		{2024, 0},
		{2025, 5},
		{2043, 5},
		{2044, 0},
		{2090, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Score("", 0, utcDate(tt.year, time.December, 31), now), "year %d", tt.year)
	}
}

func TestScore_CustomVocabulary(t *testing.T) {
	s := NewScorer(ScoringConfig{
		Keywords:       []string{" Ablauf "},
		KeywordWindow:  30,
		KeywordScore:   7,
		PlausibleYears: 20,
	})
	now := utcDate(2024, time.January, 1)
	text := "ablauf 01/01/2030"

	assert.Equal(t, 7, s.Score(text, 7, utcDate(2030, time.January, 1), now))
	assert.Equal(t, 0, s.Score("valid 01/01/2030", 6, utcDate(2030, time.January, 1), now))
}

func TestBest(t *testing.T) {
	s := NewScorer(DefaultScoring())

	_, ok := s.Best(nil)
	assert.False(t, ok)

	first := ResolvedDate{Candidate: Candidate{Raw: "a"}, Score: 15}
	tied := ResolvedDate{Candidate: Candidate{Raw: "b"}, Score: 15}
	lower := ResolvedDate{Candidate: Candidate{Raw: "c"}, Score: 5}

	best, ok := s.Best([]ResolvedDate{lower, first, tied})
	assert.True(t, ok)
	assert.Equal(t, "a", best.Candidate.Raw)
}

func TestPrecedingWindow(t *testing.T) {
	assert.Equal(t, "", precedingWindow("abc", 0, 30))
	assert.Equal(t, "bc", precedingWindow("abcdef", 3, 2))
	assert.Equal(t, "abc", precedingWindow("abc", 10, 30))
	assert.Equal(t, " ü", precedingWindow("gültig ü 1", 10, 2))
}
