package expiry

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Shape identifies which pattern family produced a candidate.
type Shape int

const (
	// ShapeTrailingYear is a numeric triple ending in the year, e.g. 10/12/2025.
	ShapeTrailingYear Shape = iota + 1

	// ShapeLeadingYear is a numeric triple starting with the year, e.g. 2025/12/10.
	ShapeLeadingYear

	// ShapeMonthName is a day, an English month name and a year, e.g. 10 dec 2025.
	ShapeMonthName
)

func (s Shape) String() string {
	switch s {
	case ShapeTrailingYear:
		return "trailing_year"
	case ShapeLeadingYear:
		return "leading_year"
	case ShapeMonthName:
		return "month_name"
	default:
		return "unknown"
	}
}

// MarshalText renders the shape by name in JSON output.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Pattern is one syntactic date family.
type Pattern struct {
	Shape  Shape
	Regexp *regexp.Regexp
}

var (
	// OCR output often has stray spaces around separators ("10 / 12 / 2025").
	separatorRegex = regexp.MustCompile(`\s*[/\-.]\s*`)

	trailingYearRegex = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	leadingYearRegex  = regexp.MustCompile(`\b\d{4}/\d{1,2}/\d{1,2}\b`)
	monthNameRegex    = regexp.MustCompile(`\b\d{1,2}\s(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s\d{4}\b`)
)

// DefaultPatterns returns the three date families in scan order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Shape: ShapeTrailingYear, Regexp: trailingYearRegex},
		{Shape: ShapeLeadingYear, Regexp: leadingYearRegex},
		{Shape: ShapeMonthName, Regexp: monthNameRegex},
	}
}

// Candidate is a date-shaped substring of the normalized text.
type Candidate struct {
	Raw    string `json:"raw"`
	Offset int    `json:"offset"`
	Shape  Shape  `json:"shape"`
}

// Normalize prepares recognized text for pattern matching. Compatibility forms
// (full-width digits and slashes) fold to ASCII, every '/', '-' or '.' separator
// loses its surrounding whitespace and becomes '/', and the text is lower-cased.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = separatorRegex.ReplaceAllString(text, "/")
	return strings.ToLower(text)
}

// Extractor scans normalized text for date-shaped substrings.
type Extractor struct {
	patterns []Pattern
}

// NewExtractor creates an Extractor. A nil or empty pattern list falls back to DefaultPatterns.
func NewExtractor(patterns []Pattern) Extractor {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return Extractor{patterns: patterns}
}

// Extract returns every match of every pattern. Patterns are applied one after
// another and their matches concatenated, so the same substring may appear more
// than once. Calendar correctness is not checked here.
func (e Extractor) Extract(text string) []Candidate {
	var candidates []Candidate
	for _, p := range e.patterns {
		for _, loc := range p.Regexp.FindAllStringIndex(text, -1) {
			candidates = append(candidates, Candidate{
				Raw:    text[loc[0]:loc[1]],
				Offset: loc[0],
				Shape:  p.Shape,
			})
		}
	}
	return candidates
}
