// Package patterns derives schedule patterns from historical meetings.
package patterns

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/syncupstack/syncup-engine/internal/interval"
	"github.com/syncupstack/syncup-engine/internal/models"
	"github.com/syncupstack/syncup-engine/internal/timezone"
)

// Analyzer buckets successful meetings by local day-of-week and
// time-of-day and turns the bucket frequencies into a schedule pattern.
type Analyzer struct {
	logger        *slog.Logger
	bucketMinutes int
	minFrequency  float64
}

// NewAnalyzer constructs an Analyzer. bucketMinutes defaults to 30 and
// minFrequency to 0.2 when out of range.
func NewAnalyzer(logger *slog.Logger, bucketMinutes int, minFrequency float64) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if bucketMinutes <= 0 || bucketMinutes > 24*60 {
		bucketMinutes = 30
	}
	if minFrequency <= 0 || minFrequency > 1 {
		minFrequency = 0.2
	}
	return &Analyzer{logger: logger, bucketMinutes: bucketMinutes, minFrequency: minFrequency}
}

// BucketMinutes exposes the configured granularity so the ranker can
// look up window starts in matching buckets.
func (a *Analyzer) BucketMinutes() int {
	return a.bucketMinutes
}

type bucketKey struct {
	day    time.Weekday
	minute int // bucket start, minutes after local midnight
}

// Analyze derives a UserSchedulePattern from history. Only successful
// meetings count. Empty history yields a zero-confidence pattern, not
// an error; structurally invalid entries do raise.
func (a *Analyzer) Analyze(userID, tzID string, history []models.HistoricalMeeting) (models.UserSchedulePattern, error) {
	loc, err := timezone.LoadZone(tzID)
	if err != nil {
		return models.UserSchedulePattern{}, err
	}

	pattern := models.UserSchedulePattern{UserID: userID, Timezone: tzID}

	bucketCounts := make(map[bucketKey]int)
	dayCounts := make(map[time.Weekday]int)
	totalDuration := 0
	successful := 0

	for _, meeting := range history {
		if meeting.Start.IsZero() || meeting.DurationMinutes <= 0 {
			return models.UserSchedulePattern{}, fmt.Errorf("%w: meeting at %s with duration %dm",
				interval.ErrInvalidInterval, meeting.Start.Format(time.RFC3339), meeting.DurationMinutes)
		}
		if !meeting.WasSuccessful {
			continue
		}
		successful++
		totalDuration += meeting.DurationMinutes

		local := meeting.Start.In(loc)
		minute := local.Hour()*60 + local.Minute()
		key := bucketKey{day: local.Weekday(), minute: minute - minute%a.bucketMinutes}
		bucketCounts[key]++
		dayCounts[local.Weekday()]++
	}

	if successful == 0 {
		return pattern, nil
	}

	for key, count := range bucketCounts {
		freq := float64(count) / float64(successful)
		if freq < a.minFrequency {
			continue
		}
		pattern.PreferredTimeRanges = append(pattern.PreferredTimeRanges, models.TimeRangeFrequency{
			Weekday:     key.day,
			StartMinute: key.minute,
			EndMinute:   key.minute + a.bucketMinutes,
			Frequency:   freq,
		})
	}
	sort.Slice(pattern.PreferredTimeRanges, func(i, j int) bool {
		ri, rj := pattern.PreferredTimeRanges[i], pattern.PreferredTimeRanges[j]
		if ri.Frequency != rj.Frequency {
			return ri.Frequency > rj.Frequency
		}
		if ri.Weekday != rj.Weekday {
			return ri.Weekday < rj.Weekday
		}
		return ri.StartMinute < rj.StartMinute
	})

	for day, count := range dayCounts {
		if float64(count)/float64(successful) >= a.minFrequency {
			pattern.PreferredDays = append(pattern.PreferredDays, day)
		}
	}
	sort.Slice(pattern.PreferredDays, func(i, j int) bool {
		return pattern.PreferredDays[i] < pattern.PreferredDays[j]
	})

	pattern.AverageMeetingDuration = time.Duration(totalDuration/successful) * time.Minute
	pattern.SampleSize = successful
	// Confidence grows with evidence and saturates at ten meetings.
	pattern.Confidence = float64(successful) / 10.0
	if pattern.Confidence > 1 {
		pattern.Confidence = 1
	}

	a.logger.Debug("pattern analysed",
		slog.String("user_id", userID),
		slog.Int("sample_size", successful),
		slog.Int("preferred_ranges", len(pattern.PreferredTimeRanges)))

	return pattern, nil
}
