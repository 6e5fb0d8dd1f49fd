package trip

import (
	"fmt"
)

// Minute is a wall-clock minute-of-day in the trip destination's local
// time. All scheduling arithmetic uses integer minutes; floating point is
// never used for scheduling decisions.
type Minute int

// MinutesPerDay bounds a valid Minute value.
const MinutesPerDay = 24 * 60

// ParseClock parses "HH:MM" into a Minute.
func ParseClock(s string) (Minute, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return Minute(h*60 + m), nil
}

// MustClock parses "HH:MM" and panics on error. For package-level defaults
// and tests only.
func MustClock(s string) Minute {
	m, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String formats the minute as "HH:MM".
func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Valid reports whether the minute falls within a single day.
func (m Minute) Valid() bool {
	return m >= 0 && m < MinutesPerDay
}

// TimeWindow is a half-open [Start, End) interval of minutes-of-day.
type TimeWindow struct {
	Start Minute `json:"start"`
	End   Minute `json:"end"`
}

// Valid reports whether the window is well-formed and non-empty.
func (w TimeWindow) Valid() bool {
	return w.Start.Valid() && w.End > w.Start && w.End <= MinutesPerDay
}

// Contains reports whether the minute falls inside the window.
func (w TimeWindow) Contains(m Minute) bool {
	return m >= w.Start && m < w.End
}

// Covers reports whether the window fully contains another window.
func (w TimeWindow) Covers(other TimeWindow) bool {
	return other.Start >= w.Start && other.End <= w.End
}

// Overlaps reports whether two windows share any minute.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && other.Start < w.End
}

// Duration returns the window length in minutes.
func (w TimeWindow) Duration() int {
	return int(w.End - w.Start)
}

// String formats the window as "HH:MM-HH:MM".
func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}
