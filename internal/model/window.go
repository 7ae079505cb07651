package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for close-approach dates.
const DateLayout = "2006-01-02"

// Window is an inclusive date range of close approaches.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses a YYYY-MM-DD string as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParseWindow builds a Window from start and end date strings. An empty end
// collapses the window to the start date alone.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Window{}, fmt.Errorf("start date: %w", err)
	}

	if end == "" {
		return Window{Start: s, End: s}, nil
	}

	e, err := ParseDate(end)
	if err != nil {
		return Window{}, fmt.Errorf("end date: %w", err)
	}
	if e.Before(s) {
		return Window{}, fmt.Errorf("end date %s is before start date %s", e.Format(DateLayout), s.Format(DateLayout))
	}

	return Window{Start: s, End: e}, nil
}

// Contains reports whether t falls inside the window (inclusive).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the number of dates the window covers.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// String renders the window as "start..end".
func (w Window) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}
