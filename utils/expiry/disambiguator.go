package expiry

import (
	"strconv"
	"strings"
	"time"
)

var monthPrefixes = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// Disambiguator turns candidates into concrete future dates. Readings are
// month-first unless DayFirst is set, so "VALID UPTO 10/12/2025" resolves to
// 2025-10-12 by default and to 2025-12-10 with DayFirst.
type Disambiguator struct {
	// DayFirst reads trailing-year triples as D/M/YYYY. The default is M/D/YYYY.
	DayFirst bool

	// Location for the constructed dates; nil means time.Local.
	Location *time.Location
}

// Resolve interprets the candidate as a valid calendar date strictly after now.
//
// The natural reading is tried first. When it is invalid or not in the future
// and the candidate has exactly three '/'-separated parts, the first two parts
// are exchanged and the result parsed again. A candidate whose only valid
// readings lie in the past is rejected.
func (d Disambiguator) Resolve(c Candidate, now time.Time) (time.Time, bool) {
	if t, ok := d.parse(c.Shape, c.Raw); ok && t.After(now) {
		return t, true
	}

	parts := strings.Split(c.Raw, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	swapped := parts[1] + "/" + parts[0] + "/" + parts[2]
	if t, ok := d.parse(c.Shape, swapped); ok && t.After(now) {
		return t, true
	}
	return time.Time{}, false
}

func (d Disambiguator) parse(shape Shape, raw string) (time.Time, bool) {
	if shape == ShapeMonthName {
		fields := strings.Fields(raw)
		if len(fields) != 3 {
			return time.Time{}, false
		}
		month, ok := monthFromName(fields[1])
		if !ok {
			return time.Time{}, false
		}
		day, ok := atoi(fields[0])
		if !ok {
			return time.Time{}, false
		}
		return d.date(fields[2], int(month), day)
	}

	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var yearPart, monthPart, dayPart string
	switch shape {
	case ShapeLeadingYear:
		yearPart, monthPart, dayPart = parts[0], parts[1], parts[2]
	case ShapeTrailingYear:
		monthPart, dayPart, yearPart = parts[0], parts[1], parts[2]
		if d.DayFirst {
			monthPart, dayPart = dayPart, monthPart
		}
	default:
		return time.Time{}, false
	}

	month, ok := atoi(monthPart)
	if !ok {
		return time.Time{}, false
	}
	day, ok := atoi(dayPart)
	if !ok {
		return time.Time{}, false
	}
	return d.date(yearPart, month, day)
}

// date builds a calendar date and rejects anything time.Date would normalise,
// such as 31 February or month 13.
func (d Disambiguator) date(yearPart string, month, day int) (time.Time, bool) {
	if len(yearPart) != 4 {
		return time.Time{}, false
	}
	year, ok := atoi(yearPart)
	if !ok {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func monthFromName(word string) (time.Month, bool) {
	if len(word) < 3 {
		return 0, false
	}
	m, ok := monthPrefixes[word[:3]]
	return m, ok
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
