package model

import (
	"strings"
	"time"
)

// Range is a named time window used to filter and bucket detections.
type Range string

const (
	RangeToday    Range = "today"
	RangeMonth    Range = "month"
	RangeYear     Range = "year"
	RangeLifetime Range = "lifetime"
)

// ParseRange returns the range named by s, or def when s is empty or unknown.
func ParseRange(s string, def Range) Range {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case RangeToday, RangeMonth, RangeYear, RangeLifetime:
		return r
	default:
		return def
	}
}

// Window is an inclusive time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Window resolves the range against now, in now's location.
func (r Range) Window(now time.Time) Window {
	loc := now.Location()
	y, m, d := now.Date()

	switch r {
	case RangeMonth:
		return Window{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
			End:   endOfDay(time.Date(y, m+1, 0, 0, 0, 0, 0, loc)),
		}
	case RangeYear:
		return Window{
			Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
			End:   endOfDay(time.Date(y, time.December, 31, 0, 0, 0, 0, loc)),
		}
	case RangeLifetime:
		return Window{
			Start: time.Unix(0, 0).In(loc),
			End:   now,
		}
	default:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return Window{Start: start, End: endOfDay(start)}
	}
}

// PreviousDay returns the whole calendar day that ends just before the window starts.
func (w Window) PreviousDay() Window {
	prev := w.Start.AddDate(0, 0, -1)
	y, m, d := prev.Date()
	return Window{
		Start: time.Date(y, m, d, 0, 0, 0, 0, w.Start.Location()),
		End:   w.Start.Add(-time.Millisecond),
	}
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
