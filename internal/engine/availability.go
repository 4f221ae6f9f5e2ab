// Package engine computes mutual availability, conflicts, and ranked
// suggestions. Every component is a pure function over its inputs; the
// engine holds no state between calls.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/syncupstack/syncup-engine/internal/interval"
	"github.com/syncupstack/syncup-engine/internal/models"
	"github.com/syncupstack/syncup-engine/internal/timezone"
)

// Calculator intersects two users' schedules into candidate meeting
// windows.
type Calculator struct {
	logger   *slog.Logger
	defaults models.SchedulePreferences
}

// NewCalculator constructs a Calculator. defaults is the system-wide
// working-hour template applied when a user declares no preferences.
func NewCalculator(logger *slog.Logger, defaults models.SchedulePreferences) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	if len(defaults.WorkingHours) == 0 {
		defaults.WorkingHours = []models.ClockRange{{Start: "08:00", End: "21:00"}}
	}
	return &Calculator{logger: logger, defaults: defaults}
}

// ComputeMutualAvailability produces the windows free for both users in
// the requested date range, sorted ascending by start. The result is
// symmetric in the two users; an empty result is valid, not an error.
func (c *Calculator) ComputeMutualAvailability(req models.AvailabilityRequest) ([]models.AvailabilityWindow, error) {
	if req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration %dm", interval.ErrInvalidInterval, req.DurationMinutes)
	}
	if req.BufferMinutes < 0 {
		return nil, fmt.Errorf("%w: buffer %dm", interval.ErrInvalidInterval, req.BufferMinutes)
	}

	buffer := time.Duration(req.BufferMinutes) * time.Minute

	freeA, err := c.userFree(req.PrefsA, req.BusyA, req.StartDate, req.EndDate, buffer)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", req.UserAID, err)
	}
	freeB, err := c.userFree(req.PrefsB, req.BusyB, req.StartDate, req.EndDate, buffer)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", req.UserBID, err)
	}

	mutual := interval.Intersect(freeA, freeB)
	mutual = interval.FilterMinDuration(mutual, time.Duration(req.DurationMinutes)*time.Minute)

	windows := make([]models.AvailabilityWindow, 0, len(mutual))
	for _, iv := range mutual {
		windows = append(windows, models.NewAvailabilityWindow(iv))
	}

	c.logger.Debug("mutual availability computed",
		slog.String("user_a", req.UserAID),
		slog.String("user_b", req.UserBID),
		slog.Int("windows", len(windows)))

	return windows, nil
}

// userFree builds one user's declared-free set for the range and
// removes their padded busy blocks from it.
func (c *Calculator) userFree(prefs *models.SchedulePreferences, busy []models.BusyBlock, startDate, endDate string, buffer time.Duration) ([]models.TimeInterval, error) {
	resolved := c.resolvePrefs(prefs)

	declared, err := c.declaredFree(resolved, startDate, endDate)
	if err != nil {
		return nil, err
	}

	blocks := make([]models.TimeInterval, 0, len(busy))
	for _, b := range busy {
		blocks = append(blocks, b.Interval)
	}
	if err := interval.Validate(blocks); err != nil {
		return nil, err
	}

	padded := interval.Pad(blocks, buffer)
	return interval.Subtract(declared, padded), nil
}

// declaredFree expands the daily template across the date range in the
// user's own timezone and clips it to the range bounds. Working-hour
// boundaries that fall into a DST gap roll forward to the next valid
// instant.
func (c *Calculator) declaredFree(prefs models.SchedulePreferences, startDate, endDate string) ([]models.TimeInterval, error) {
	start, err := time.Parse(timezone.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q", timezone.ErrInvalidTime, startDate)
	}
	end, err := time.Parse(timezone.DateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end date %q", timezone.ErrInvalidTime, endDate)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range %s after %s", timezone.ErrInvalidTime, startDate, endDate)
	}

	allowed := make(map[time.Weekday]bool, len(prefs.Days))
	for _, d := range prefs.Days {
		allowed[d] = true
	}

	var declared []models.TimeInterval
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if len(allowed) > 0 && !allowed[day.Weekday()] {
			continue
		}
		date := day.Format(timezone.DateLayout)
		for _, wh := range prefs.WorkingHours {
			s, err := timezone.ToInstantForward(date, wh.Start, prefs.Timezone)
			if err != nil {
				return nil, err
			}
			e, err := timezone.ToInstantForward(date, wh.End, prefs.Timezone)
			if err != nil {
				return nil, err
			}
			if s.Before(e) {
				declared = append(declared, models.TimeInterval{Start: s, End: e})
			}
		}
	}

	rangeStart, err := timezone.ToInstantForward(startDate, "00:00", prefs.Timezone)
	if err != nil {
		return nil, err
	}
	rangeEnd, err := timezone.ToInstantForward(end.AddDate(0, 0, 1).Format(timezone.DateLayout), "00:00", prefs.Timezone)
	if err != nil {
		return nil, err
	}

	bounds := []models.TimeInterval{{Start: rangeStart, End: rangeEnd}}
	return interval.Intersect(interval.Normalize(declared), bounds), nil
}

// resolvePrefs fills missing template pieces from the engine defaults.
func (c *Calculator) resolvePrefs(prefs *models.SchedulePreferences) models.SchedulePreferences {
	resolved := c.defaults
	if prefs == nil {
		return resolved
	}
	if prefs.Timezone != "" {
		resolved.Timezone = prefs.Timezone
	}
	if len(prefs.Days) > 0 {
		resolved.Days = prefs.Days
	}
	if len(prefs.WorkingHours) > 0 {
		resolved.WorkingHours = prefs.WorkingHours
	}
	return resolved
}
