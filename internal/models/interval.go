package models

import "time"

// TimeInterval is an absolute half-open span [Start, End). Start must
// precede End; instants are always timezone-free points, never naive
// local times.
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the interval length.
func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether the two intervals share any instant.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// BusyBlock is a committed interval in one user's schedule. Source is an
// opaque tag describing where the block came from (e.g. "calendar",
// "hangout").
type BusyBlock struct {
	UserID   string
	Interval TimeInterval
	Source   string
}

// AvailabilityWindow is an interval known to be free for both users.
type AvailabilityWindow struct {
	Interval        TimeInterval
	DurationMinutes int
}

// NewAvailabilityWindow derives the minute duration from the interval.
func NewAvailabilityWindow(iv TimeInterval) AvailabilityWindow {
	return AvailabilityWindow{
		Interval:        iv,
		DurationMinutes: int(iv.Duration().Minutes()),
	}
}
