package notification

import (
	"fmt"
	"slices"
	"time"
)

// TimeOfDay is a wall-clock time without a date, minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(raw, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", raw, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", raw)
	}
	return t, nil
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeWindow is a recurring daily interval [Start, End) in local wall-clock
// time, optionally restricted to a set of weekdays. When End is not after
// Start the window crosses midnight (22:00-06:00 covers late evening and
// early morning).
type TimeWindow struct {
	Start    TimeOfDay
	End      TimeOfDay
	Weekdays []time.Weekday // empty means every day
}

// Contains reports whether the instant falls inside the window. The start
// is inclusive, the end exclusive. Weekday membership is evaluated against
// the instant's local weekday; an empty weekday set means every day is
// active.
func (w *TimeWindow) Contains(instant time.Time) bool {
	if len(w.Weekdays) > 0 && !slices.Contains(w.Weekdays, instant.Weekday()) {
		return false
	}

	t := instant.Hour()*60 + instant.Minute()
	start := w.Start.Minutes()
	end := w.End.Minutes()

	if end > start {
		// Same-day window
		return t >= start && t < end
	}
	// Window wraps past midnight; a same-day comparison would exclude the
	// entire window here
	return t >= start || t < end
}

// Clone returns an independent copy of the window.
func (w *TimeWindow) Clone() *TimeWindow {
	if w == nil {
		return nil
	}
	clone := *w
	clone.Weekdays = slices.Clone(w.Weekdays)
	return &clone
}
