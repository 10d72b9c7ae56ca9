package command

import "fmt"

// Kind identifies the operation a worker is asked to perform
type Kind int

const (
	KindUnknown         Kind = iota
	KindAutomaticUpdate      // Periodic refresh of every timeline of an account
	KindFetchTimeline        // Manual refresh of a single timeline
)

// String returns a human-readable representation of the command kind
func (k Kind) String() string {
	switch k {
	case KindAutomaticUpdate:
		return "automatic_update"
	case KindFetchTimeline:
		return "fetch_timeline"
	default:
		return "unknown"
	}
}

// TimelineType selects which timeline a command applies to
type TimelineType int

const (
	TimelineAll TimelineType = iota // Sentinel: every timeline of the account
	TimelineHome
	TimelineMentions
	TimelineDirect
	TimelineUser
)

// String returns a human-readable representation of the timeline type
func (t TimelineType) String() string {
	switch t {
	case TimelineAll:
		return "all"
	case TimelineHome:
		return "home"
	case TimelineMentions:
		return "mentions"
	case TimelineDirect:
		return "direct"
	case TimelineUser:
		return "user"
	default:
		return "unknown"
	}
}

// ParseTimelineType converts a timeline name back into a TimelineType
func ParseTimelineType(s string) (TimelineType, error) {
	switch s {
	case "all", "":
		return TimelineAll, nil
	case "home":
		return TimelineHome, nil
	case "mentions":
		return TimelineMentions, nil
	case "direct":
		return TimelineDirect, nil
	case "user":
		return TimelineUser, nil
	default:
		return TimelineAll, fmt.Errorf("unknown timeline type: %q", s)
	}
}

// Outcome holds the failure counters reported by the worker for one attempt
type Outcome struct {
	AuthFailures  int `msgpack:"auth"`
	IOFailures    int `msgpack:"io"`
	ParseFailures int `msgpack:"parse"`
}

// HasError reports whether any counter is non-zero
func (o Outcome) HasError() bool {
	return o.AuthFailures > 0 || o.IOFailures > 0 || o.ParseFailures > 0
}

// Add returns the sum of two outcomes
func (o Outcome) Add(other Outcome) Outcome {
	return Outcome{
		AuthFailures:  o.AuthFailures + other.AuthFailures,
		IOFailures:    o.IOFailures + other.IOFailures,
		ParseFailures: o.ParseFailures + other.ParseFailures,
	}
}
