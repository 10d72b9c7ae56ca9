package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTime(year, month, day, hour, minute int) time.Time {
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		expr string
		desc string
	}{
		{"* * * * *", "every minute"},
		{"0 * * * *", "every hour"},
		{"*/15 * * * *", "quarter hours"},
		{"0 9-17/2 * * 1-5", "odd working hours on weekdays"},
		{"0,30 6,18 * * *", "lists"},
		{"0 0 29 2 *", "leap day"},
		{"15 10 5 6 3", "June 5th or Wednesdays in June"},
		{"@hourly", "descriptor"},
		{"  @daily ", "descriptor with spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			s, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, s.String())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		expr string
		desc string
	}{
		{"", "empty"},
		{"* * * *", "four fields"},
		{"* * * * * *", "six fields"},
		{"60 * * * *", "minute out of range"},
		{"* 24 * * *", "hour out of range"},
		{"* * 0 * *", "day zero"},
		{"* * * 13 *", "month out of range"},
		{"* * * * 7", "weekday out of range"},
		{"5-1 * * * *", "reversed range"},
		{"*/0 * * * *", "zero step"},
		{"5/2 * * * *", "step on a single value"},
		{"1,,2 * * * *", "empty list element"},
		{"a * * * *", "not a number"},
		{"0 0 31 2 *", "February 31st"},
		{"0 0 31 4,6,9,11 *", "31st of 30-day months"},
		{"@sometimes", "unknown descriptor"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := Parse(tt.expr)
			assert.Error(t, err)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("bogus") })
	assert.NotPanics(t, func() { MustParse("* * * * *") })
}

func TestNext(t *testing.T) {
	tests := []struct {
		expr  string
		after time.Time
		want  time.Time
	}{
		{"* * * * *", makeTime(2024, 1, 1, 10, 0), makeTime(2024, 1, 1, 10, 1)},
		{"* * * * *", makeTime(2024, 1, 1, 10, 0).Add(30 * time.Second), makeTime(2024, 1, 1, 10, 1)},
		{"*/15 * * * *", makeTime(2024, 1, 1, 10, 7), makeTime(2024, 1, 1, 10, 15)},
		{"*/15 * * * *", makeTime(2024, 1, 1, 10, 45), makeTime(2024, 1, 1, 11, 0)},
		{"0 0 * * *", makeTime(2024, 1, 31, 12, 0), makeTime(2024, 2, 1, 0, 0)},
		{"0 0 1 1 *", makeTime(2024, 6, 1, 0, 0), makeTime(2025, 1, 1, 0, 0)},
		{"0 0 29 2 *", makeTime(2025, 3, 1, 0, 0), makeTime(2028, 2, 29, 0, 0)},
		{"30 9 * * 1", makeTime(2024, 1, 3, 0, 0), makeTime(2024, 1, 8, 9, 30)}, // Wed -> Mon
		{"@hourly", makeTime(2024, 1, 1, 23, 30), makeTime(2024, 1, 2, 0, 0)},
		{"0 12 31 * *", makeTime(2024, 4, 1, 0, 0), makeTime(2024, 5, 31, 12, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.expr+" after "+tt.after.Format(time.RFC3339), func(t *testing.T) {
			got := MustParse(tt.expr).Next(tt.after)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestNext_IsStrictlyAfter(t *testing.T) {
	s := MustParse("0 * * * *")
	at := makeTime(2024, 1, 1, 10, 0)
	assert.Equal(t, makeTime(2024, 1, 1, 11, 0), s.Next(at))
}

func TestNext_DayOfMonthOrDayOfWeek(t *testing.T) {
	// 15th of the month or any Friday
	s := MustParse("0 0 15 * 5")

	// 2024-03-01 is a Friday
	assert.Equal(t, makeTime(2024, 3, 8, 0, 0), s.Next(makeTime(2024, 3, 1, 0, 0)))
	assert.Equal(t, makeTime(2024, 3, 15, 0, 0), s.Next(makeTime(2024, 3, 8, 0, 0)))
}

func TestNext_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	after := time.Date(2024, 1, 1, 8, 10, 0, 0, loc)

	got := MustParse("0 9 * * *").Next(after)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestBetween(t *testing.T) {
	s := MustParse("*/20 * * * *")
	got := s.Between(makeTime(2024, 1, 1, 10, 0), makeTime(2024, 1, 1, 11, 0))

	assert.Equal(t, []time.Time{
		makeTime(2024, 1, 1, 10, 0),
		makeTime(2024, 1, 1, 10, 20),
		makeTime(2024, 1, 1, 10, 40),
	}, got)

	assert.Empty(t, s.Between(makeTime(2024, 1, 1, 10, 1), makeTime(2024, 1, 1, 10, 19)))
}
