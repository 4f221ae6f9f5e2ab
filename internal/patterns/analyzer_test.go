package patterns

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/syncupstack/syncup-engine/internal/interval"
	"github.com/syncupstack/syncup-engine/internal/models"
	"github.com/syncupstack/syncup-engine/internal/timezone"
	"github.com/syncupstack/syncup-engine/internal/utils"
)

func testAnalyzer() *Analyzer {
	return NewAnalyzer(utils.NewDiscardLogger(), 30, 0.2)
}

func meeting(t *testing.T, start string, minutes int, successful bool) models.HistoricalMeeting {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("parse %q: %v", start, err)
	}
	return models.HistoricalMeeting{
		Start:           s,
		DurationMinutes: minutes,
		WasSuccessful:   successful,
		DayOfWeek:       s.Weekday(),
	}
}

func TestAnalyzeRecurringTuesdayEvenings(t *testing.T) {
	analyzer := testAnalyzer()

	// Three successful Tuesday 18:00 meetings across consecutive weeks
	// plus one unsuccessful Monday attempt that must not count.
	history := []models.HistoricalMeeting{
		meeting(t, "2026-01-06T18:00:00Z", 60, true),
		meeting(t, "2026-01-13T18:00:00Z", 45, true),
		meeting(t, "2026-01-20T18:00:00Z", 60, true),
		meeting(t, "2026-01-05T09:00:00Z", 30, false),
	}

	pattern, err := analyzer.Analyze("alice", "UTC", history)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if pattern.UserID != "alice" || pattern.Timezone != "UTC" {
		t.Errorf("identity = %s/%s", pattern.UserID, pattern.Timezone)
	}
	if pattern.SampleSize != 3 {
		t.Errorf("sample size = %d, want 3", pattern.SampleSize)
	}
	if math.Abs(pattern.Confidence-0.3) > 1e-9 {
		t.Errorf("confidence = %f, want 0.3", pattern.Confidence)
	}
	if pattern.AverageMeetingDuration != 55*time.Minute {
		t.Errorf("average duration = %s, want 55m", pattern.AverageMeetingDuration)
	}

	if len(pattern.PreferredTimeRanges) != 1 {
		t.Fatalf("preferred ranges = %v, want exactly the Tuesday bucket", pattern.PreferredTimeRanges)
	}
	top := pattern.PreferredTimeRanges[0]
	if top.Weekday != time.Tuesday || top.StartMinute != 18*60 || top.EndMinute != 18*60+30 {
		t.Errorf("bucket = %+v, want Tuesday 1080-1110", top)
	}
	if top.Frequency != 1.0 {
		t.Errorf("frequency = %f, want 1.0", top.Frequency)
	}

	if len(pattern.PreferredDays) != 1 || pattern.PreferredDays[0] != time.Tuesday {
		t.Errorf("preferred days = %v, want [Tuesday]", pattern.PreferredDays)
	}
	if !pattern.HasData() {
		t.Error("pattern with samples must report data")
	}
}

func TestAnalyzeBucketsInLocalTime(t *testing.T) {
	analyzer := testAnalyzer()

	// 23:30 UTC on a Tuesday is 08:30 Wednesday in Tokyo; the bucket
	// must reflect the user's local morning, not the UTC evening.
	history := []models.HistoricalMeeting{
		meeting(t, "2026-01-06T23:30:00Z", 30, true),
	}

	pattern, err := analyzer.Analyze("bob", "Asia/Tokyo", history)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(pattern.PreferredTimeRanges) != 1 {
		t.Fatalf("preferred ranges = %v, want 1", pattern.PreferredTimeRanges)
	}
	got := pattern.PreferredTimeRanges[0]
	if got.Weekday != time.Wednesday || got.StartMinute != 8*60+30 {
		t.Errorf("bucket = %+v, want Wednesday 510", got)
	}
}

func TestAnalyzeRangesSortedByFrequency(t *testing.T) {
	analyzer := testAnalyzer()

	// Four on Tuesday 18:00, one on Thursday 10:00: the Tuesday bucket
	// must come first with the higher share.
	history := []models.HistoricalMeeting{
		meeting(t, "2026-01-06T18:00:00Z", 60, true),
		meeting(t, "2026-01-13T18:00:00Z", 60, true),
		meeting(t, "2026-01-20T18:00:00Z", 60, true),
		meeting(t, "2026-01-27T18:00:00Z", 60, true),
		meeting(t, "2026-01-08T10:00:00Z", 60, true),
	}

	pattern, err := analyzer.Analyze("alice", "UTC", history)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(pattern.PreferredTimeRanges) != 2 {
		t.Fatalf("preferred ranges = %v, want 2", pattern.PreferredTimeRanges)
	}
	if pattern.PreferredTimeRanges[0].Weekday != time.Tuesday {
		t.Errorf("first range = %+v, want the dominant Tuesday bucket", pattern.PreferredTimeRanges[0])
	}
	if pattern.PreferredTimeRanges[0].Frequency <= pattern.PreferredTimeRanges[1].Frequency {
		t.Error("ranges not sorted descending by frequency")
	}
}

func TestAnalyzeLowFrequencyBucketsDropped(t *testing.T) {
	// With a 0.5 threshold, only buckets holding at least half the
	// successful meetings survive.
	analyzer := NewAnalyzer(utils.NewDiscardLogger(), 30, 0.5)

	history := []models.HistoricalMeeting{
		meeting(t, "2026-01-06T18:00:00Z", 60, true),
		meeting(t, "2026-01-13T18:00:00Z", 60, true),
		meeting(t, "2026-01-08T10:00:00Z", 60, true),
		meeting(t, "2026-01-09T13:00:00Z", 60, true),
	}

	pattern, err := analyzer.Analyze("alice", "UTC", history)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(pattern.PreferredTimeRanges) != 1 {
		t.Fatalf("preferred ranges = %v, want only the Tuesday bucket", pattern.PreferredTimeRanges)
	}
	if pattern.PreferredTimeRanges[0].Weekday != time.Tuesday {
		t.Errorf("surviving bucket = %+v, want Tuesday", pattern.PreferredTimeRanges[0])
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	analyzer := testAnalyzer()

	for _, history := range [][]models.HistoricalMeeting{
		nil,
		{},
		{meeting(t, "2026-01-05T09:00:00Z", 30, false)}, // only failures
	} {
		pattern, err := analyzer.Analyze("alice", "UTC", history)
		if err != nil {
			t.Fatalf("Analyze(%v): %v", history, err)
		}
		if pattern.Confidence != 0 || pattern.SampleSize != 0 {
			t.Errorf("empty history pattern = %+v, want zero confidence", pattern)
		}
		if pattern.HasData() {
			t.Error("empty pattern must not report data")
		}
		if pattern.UserID != "alice" {
			t.Errorf("user id = %s, want alice", pattern.UserID)
		}
	}
}

func TestAnalyzeConfidenceSaturates(t *testing.T) {
	analyzer := testAnalyzer()

	var history []models.HistoricalMeeting
	start := time.Date(2026, 1, 6, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		history = append(history, models.HistoricalMeeting{
			Start:           start.AddDate(0, 0, 7*i),
			DurationMinutes: 30,
			WasSuccessful:   true,
		})
	}

	pattern, err := analyzer.Analyze("alice", "UTC", history)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if pattern.Confidence != 1 {
		t.Errorf("confidence = %f, want saturated 1.0", pattern.Confidence)
	}
	if pattern.SampleSize != 25 {
		t.Errorf("sample size = %d, want 25", pattern.SampleSize)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	analyzer := testAnalyzer()

	if _, err := analyzer.Analyze("alice", "Not/AZone", nil); !errors.Is(err, timezone.ErrInvalidTimezone) {
		t.Errorf("invalid zone: got %v, want ErrInvalidTimezone", err)
	}

	zeroStart := []models.HistoricalMeeting{{DurationMinutes: 30, WasSuccessful: true}}
	if _, err := analyzer.Analyze("alice", "UTC", zeroStart); !errors.Is(err, interval.ErrInvalidInterval) {
		t.Errorf("zero start: got %v, want ErrInvalidInterval", err)
	}

	badDuration := []models.HistoricalMeeting{meeting(t, "2026-01-06T18:00:00Z", 0, true)}
	if _, err := analyzer.Analyze("alice", "UTC", badDuration); !errors.Is(err, interval.ErrInvalidInterval) {
		t.Errorf("zero duration: got %v, want ErrInvalidInterval", err)
	}
}

func TestNewAnalyzerDefaults(t *testing.T) {
	a := NewAnalyzer(nil, 0, -1)
	if a.BucketMinutes() != 30 {
		t.Errorf("bucket minutes = %d, want default 30", a.BucketMinutes())
	}
	if a.minFrequency != 0.2 {
		t.Errorf("min frequency = %f, want default 0.2", a.minFrequency)
	}
}
