package models

import "time"

// HistoricalMeeting is a read-only record of a past meeting between two
// users, used to infer scheduling habits.
type HistoricalMeeting struct {
	Start           time.Time
	DurationMinutes int
	WasSuccessful   bool
	DayOfWeek       time.Weekday
}

// TimeRangeFrequency is one local time-of-day bucket with the share of
// successful meetings that fell into it.
type TimeRangeFrequency struct {
	Weekday     time.Weekday
	StartMinute int // minutes after local midnight
	EndMinute   int
	Frequency   float64 // in [0,1]
}

// Contains reports whether the given local weekday/minute falls inside
// the bucket.
func (r TimeRangeFrequency) Contains(day time.Weekday, minute int) bool {
	return day == r.Weekday && minute >= r.StartMinute && minute < r.EndMinute
}

// UserSchedulePattern summarises one user's historical scheduling
// behaviour. It is derived per analysis call; the engine keeps no
// persistent copy.
type UserSchedulePattern struct {
	UserID                 string
	Timezone               string
	PreferredDays          []time.Weekday
	PreferredTimeRanges    []TimeRangeFrequency // sorted descending by frequency
	AverageMeetingDuration time.Duration
	Confidence             float64 // in [0,1]; 0 means no pattern data
	SampleSize             int     // successful meetings the pattern is based on
}

// HasData reports whether the pattern carries any historical signal.
func (p UserSchedulePattern) HasData() bool {
	return p.SampleSize > 0 && p.Confidence > 0
}
