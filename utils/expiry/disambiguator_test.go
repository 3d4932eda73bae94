package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	newYear2024 := utcDate(2024, time.January, 1)
	midYear2024 := utcDate(2024, time.June, 1)

	tests := []struct {
		name     string
		dayFirst bool
		c        Candidate
		now      time.Time
		want     time.Time
		ok       bool
	}{
		{
			name: "direct month-first reading",
			c:    Candidate{Raw: "10/12/2025", Shape: ShapeTrailingYear},
			now:  newYear2024,
			want: utcDate(2025, time.October, 12),
			ok:   true,
		},
		{
			name:     "direct day-first reading",
			dayFirst: true,
			c:        Candidate{Raw: "10/12/2025", Shape: ShapeTrailingYear},
			now:      newYear2024,
			want:     utcDate(2025, time.December, 10),
			ok:       true,
		},
		{
			name: "invalid direct reading is swapped",
			c:    Candidate{Raw: "25/12/2030", Shape: ShapeTrailingYear},
			now:  newYear2024,
			want: utcDate(2030, time.December, 25),
			ok:   true,
		},
		{
			name: "past direct reading is swapped into the future",
			c:    Candidate{Raw: "03/07/2024", Shape: ShapeTrailingYear},
			now:  midYear2024,
			want: utcDate(2024, time.July, 3),
			ok:   true,
		},
		{
			name: "past in both readings",
			c:    Candidate{Raw: "05/03/2024", Shape: ShapeTrailingYear},
			now:  midYear2024,
		},
		{
			name: "invalid in both readings",
			c:    Candidate{Raw: "31/02/2030", Shape: ShapeTrailingYear},
			now:  newYear2024,
		},
		{
			name: "past direct reading with an invalid swap",
			c:    Candidate{Raw: "03/13/2020", Shape: ShapeTrailingYear},
			now:  newYear2024,
		},
		{
			name: "leading year",
			c:    Candidate{Raw: "2030/12/31", Shape: ShapeLeadingYear},
			now:  newYear2024,
			want: utcDate(2030, time.December, 31),
			ok:   true,
		},
		{
			name: "leading year swap cannot produce a year",
			c:    Candidate{Raw: "2030/31/12", Shape: ShapeLeadingYear},
			now:  newYear2024,
		},
		{
			name: "month name",
			c:    Candidate{Raw: "31 dec 2030", Shape: ShapeMonthName},
			now:  newYear2024,
			want: utcDate(2030, time.December, 31),
			ok:   true,
		},
		{
			name: "full month name",
			c:    Candidate{Raw: "1 september 2030", Shape: ShapeMonthName},
			now:  newYear2024,
			want: utcDate(2030, time.September, 1),
			ok:   true,
		},
		{
			name: "month name is never swapped",
			c:    Candidate{Raw: "31 feb 2030", Shape: ShapeMonthName},
			now:  newYear2024,
		},
		{
			name: "month name in the past",
			c:    Candidate{Raw: "10 dec 2023", Shape: ShapeMonthName},
			now:  newYear2024,
		},
		{
			name: "today is not the future",
			c:    Candidate{Raw: "01/01/2024", Shape: ShapeTrailingYear},
			now:  newYear2024.Add(10 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Disambiguator{DayFirst: tt.dayFirst, Location: time.UTC}

			got, ok := d.Resolve(tt.c, tt.now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolve_DefaultsToLocalTime(t *testing.T) {
	d := Disambiguator{}

	got, ok := d.Resolve(Candidate{Raw: "2099/01/02", Shape: ShapeLeadingYear}, time.Now())
	assert.True(t, ok)
	assert.Equal(t, time.Local, got.Location())
}
