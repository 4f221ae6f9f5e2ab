package models

import "time"

// ClockRange is a daily local wall-clock span in "15:04" form.
type ClockRange struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// SchedulePreferences is a user's declared working-hour template. A nil
// or partially empty template degrades to the engine-wide default
// rather than failing.
type SchedulePreferences struct {
	Timezone     string
	Days         []time.Weekday
	WorkingHours []ClockRange
}

// AvailabilityRequest carries everything the availability calculation
// needs for one user pair and date range. Dates are "2006-01-02"
// strings interpreted in each user's own timezone.
type AvailabilityRequest struct {
	UserAID         string
	UserBID         string
	BusyA           []BusyBlock
	BusyB           []BusyBlock
	PrefsA          *SchedulePreferences
	PrefsB          *SchedulePreferences
	StartDate       string
	EndDate         string
	DurationMinutes int
	BufferMinutes   int
}

// Swapped returns the same request with the two users exchanged, used
// to exercise the symmetry guarantee.
func (r AvailabilityRequest) Swapped() AvailabilityRequest {
	out := r
	out.UserAID, out.UserBID = r.UserBID, r.UserAID
	out.BusyA, out.BusyB = r.BusyB, r.BusyA
	out.PrefsA, out.PrefsB = r.PrefsB, r.PrefsA
	return out
}
