// Package cron parses five-field cron expressions and computes when they fire.
package cron

import (
	"time"
)

// bits is a set of small non-negative integers; bit i set means i is included
type bits uint64

func (b bits) has(v int) bool {
	return b&(1<<uint(v)) != 0
}

func span(min, max int) bits {
	var b bits
	for v := min; v <= max; v++ {
		b |= 1 << uint(v)
	}
	return b
}

// Schedule is a parsed cron expression
type Schedule struct {
	minutes     bits // 0-59
	hours       bits // 0-23
	daysOfMonth bits // 1-31
	months      bits // 1-12
	daysOfWeek  bits // 0-6, 0 = Sunday

	domRestricted bool
	dowRestricted bool

	expr string
}

// searchHorizon caps how far Next looks ahead. Every valid schedule fires
// within it; Parse rejects the ones that never would.
const searchHorizon = 5 * 366 * 24 * time.Hour

// String returns the expression the schedule was parsed from
func (s *Schedule) String() string {
	return s.expr
}

// Next returns the first activation strictly after the given time, in
// after's location. The zero time is returned if none exists within the
// search horizon.
func (s *Schedule) Next(after time.Time) time.Time {
	loc := after.Location()
	t := after.Truncate(time.Minute).Add(time.Minute)
	limit := t.Add(searchHorizon)

	for t.Before(limit) {
		if !s.months.has(int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
			continue
		}
		if !s.matchesDay(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
			continue
		}
		if !s.hours.has(t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
			continue
		}
		if !s.minutes.has(t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t
	}
	return time.Time{}
}

// Between returns every activation in [start, end)
func (s *Schedule) Between(start, end time.Time) []time.Time {
	var result []time.Time
	t := s.Next(start.Add(-time.Minute))
	for !t.IsZero() && t.Before(end) {
		if !t.Before(start) {
			result = append(result, t)
		}
		t = s.Next(t)
	}
	return result
}

// matchesDay applies the usual cron rule: when both day fields are
// restricted a day matches if either does.
func (s *Schedule) matchesDay(t time.Time) bool {
	dom := s.daysOfMonth.has(t.Day())
	dow := s.daysOfWeek.has(int(t.Weekday()))

	switch {
	case s.domRestricted && s.dowRestricted:
		return dom || dow
	case s.domRestricted:
		return dom
	case s.dowRestricted:
		return dow
	default:
		return true
	}
}
