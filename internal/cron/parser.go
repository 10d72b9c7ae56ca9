package cron

import (
	"fmt"
	"strconv"
	"strings"
)

type fieldSpec struct {
	name     string
	min, max int
}

var fieldSpecs = [5]fieldSpec{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 6},
}

var descriptors = map[string]string{
	"@yearly":   "0 0 1 1 *",
	"@annually": "0 0 1 1 *",
	"@monthly":  "0 0 1 * *",
	"@weekly":   "0 0 * * 0",
	"@daily":    "0 0 * * *",
	"@midnight": "0 0 * * *",
	"@hourly":   "0 * * * *",
}

// Parse parses a five-field cron expression or one of the @ descriptors.
// Supported field syntax: *, N, N-M, lists separated by commas, and /step
// after * or a range. Schedules that can never fire are rejected.
func Parse(expr string) (*Schedule, error) {
	source := strings.TrimSpace(expr)
	if d, ok := descriptors[source]; ok {
		source = d
	}

	fields := strings.Fields(source)
	if len(fields) != 5 {
		return nil, fmt.Errorf("invalid cron expression %q: expected 5 fields, got %d", expr, len(fields))
	}

	var sets [5]bits
	for i, f := range fields {
		b, err := parseField(f, fieldSpecs[i].min, fieldSpecs[i].max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field %q: %w", fieldSpecs[i].name, f, err)
		}
		sets[i] = b
	}

	s := &Schedule{
		minutes:       sets[0],
		hours:         sets[1],
		daysOfMonth:   sets[2],
		months:        sets[3],
		daysOfWeek:    sets[4],
		domRestricted: fields[2] != "*",
		dowRestricted: fields[4] != "*",
		expr:          expr,
	}

	if s.domRestricted && !s.dowRestricted && !anyValidDay(s.daysOfMonth, s.months) {
		return nil, fmt.Errorf("invalid cron expression %q: no month has any of the given days", expr)
	}
	return s, nil
}

// MustParse is Parse for expressions known to be valid
func MustParse(expr string) *Schedule {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

func parseField(field string, min, max int) (bits, error) {
	var result bits
	for _, part := range strings.Split(field, ",") {
		if part == "" {
			return 0, fmt.Errorf("empty list element")
		}
		b, err := parseTerm(part, min, max)
		if err != nil {
			return 0, err
		}
		result |= b
	}
	return result, nil
}

// parseTerm handles one list element: *, N, N-M, */S or N-M/S
func parseTerm(term string, min, max int) (bits, error) {
	rangePart, stepPart, hasStep := strings.Cut(term, "/")

	step := 1
	if hasStep {
		n, err := strconv.Atoi(stepPart)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid step %q", stepPart)
		}
		step = n
	}

	lo, hi := min, max
	switch {
	case rangePart == "*":
	case strings.Contains(rangePart, "-"):
		a, b, _ := strings.Cut(rangePart, "-")
		var err error
		if lo, err = parseValue(a, min, max); err != nil {
			return 0, err
		}
		if hi, err = parseValue(b, min, max); err != nil {
			return 0, err
		}
		if lo > hi {
			return 0, fmt.Errorf("range start %d after end %d", lo, hi)
		}
	default:
		if hasStep {
			return 0, fmt.Errorf("step requires * or a range, got %q", rangePart)
		}
		v, err := parseValue(rangePart, min, max)
		if err != nil {
			return 0, err
		}
		lo, hi = v, v
	}

	var b bits
	for v := lo; v <= hi; v += step {
		b |= 1 << uint(v)
	}
	return b, nil
}

func parseValue(s string, min, max int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("value %d out of bounds [%d, %d]", v, min, max)
	}
	return v, nil
}

// anyValidDay reports whether at least one day exists in at least one month
func anyValidDay(days, months bits) bool {
	for m := 1; m <= 12; m++ {
		if !months.has(m) {
			continue
		}
		if days&span(1, maxDays(m)) != 0 {
			return true
		}
	}
	return false
}

// maxDays allows February 29 since leap years exist
func maxDays(month int) int {
	switch month {
	case 2:
		return 29
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}
