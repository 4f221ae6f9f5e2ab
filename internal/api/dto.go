package api

import (
	"fmt"
	"time"

	"github.com/syncupstack/syncup-engine/internal/ingest"
	"github.com/syncupstack/syncup-engine/internal/models"
	"github.com/syncupstack/syncup-engine/internal/utils"
)

// Wire shapes for the HTTP surface. Instants travel as RFC 3339
// strings; dates as "2006-01-02"; wall clocks as "15:04".

type intervalDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type busyBlockDTO struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Source string `json:"source,omitempty"`
}

type preferencesDTO struct {
	Timezone     string              `json:"timezone,omitempty"`
	Days         []int               `json:"days,omitempty"`
	WorkingHours []models.ClockRange `json:"working_hours,omitempty"`
}

type availabilityRequestDTO struct {
	UserA           string          `json:"user_a"`
	UserB           string          `json:"user_b"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	DurationMinutes int             `json:"duration_minutes"`
	BufferMinutes   int             `json:"buffer_minutes"`
	BusyA           []busyBlockDTO  `json:"busy_a,omitempty"`
	BusyB           []busyBlockDTO  `json:"busy_b,omitempty"`
	BusyAICS        string          `json:"busy_a_ics,omitempty"`
	BusyBICS        string          `json:"busy_b_ics,omitempty"`
	PrefsA          *preferencesDTO `json:"prefs_a,omitempty"`
	PrefsB          *preferencesDTO `json:"prefs_b,omitempty"`
}

type windowDTO struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
}

type conflictRequestDTO struct {
	Slot          intervalDTO    `json:"slot"`
	BusyA         []busyBlockDTO `json:"busy_a"`
	BusyB         []busyBlockDTO `json:"busy_b"`
	BufferMinutes int            `json:"buffer_minutes"`
}

type conflictBatchRequestDTO struct {
	Slots         []intervalDTO  `json:"slots"`
	BusyA         []busyBlockDTO `json:"busy_a"`
	BusyB         []busyBlockDTO `json:"busy_b"`
	BufferMinutes int            `json:"buffer_minutes"`
	Concurrency   int            `json:"concurrency,omitempty"`
}

type conflictRecordDTO struct {
	Slot              intervalDTO    `json:"slot"`
	Severity          string         `json:"severity"`
	AffectedUser      string         `json:"affected_user"`
	ConflictingBlocks []busyBlockDTO `json:"conflicting_blocks,omitempty"`
}

type analyzeRequestDTO struct {
	UserID   string       `json:"user_id"`
	Timezone string       `json:"timezone,omitempty"`
	History  []meetingDTO `json:"history,omitempty"`
}

type meetingDTO struct {
	Start           string `json:"start"`
	DurationMinutes int    `json:"duration_minutes"`
	WasSuccessful   bool   `json:"was_successful"`
}

type patternDTO struct {
	UserID                 string          `json:"user_id"`
	Timezone               string          `json:"timezone,omitempty"`
	PreferredDays          []int           `json:"preferred_days,omitempty"`
	PreferredTimeRanges    []timeRangeDTO  `json:"preferred_time_ranges,omitempty"`
	AverageDurationMinutes int             `json:"average_duration_minutes"`
	Confidence             float64         `json:"confidence"`
	SampleSize             int             `json:"sample_size"`
}

type timeRangeDTO struct {
	Weekday     int     `json:"weekday"`
	StartMinute int     `json:"start_minute"`
	EndMinute   int     `json:"end_minute"`
	Frequency   float64 `json:"frequency"`
}

type suggestRequestDTO struct {
	availabilityRequestDTO
	MaxSuggestions int `json:"max_suggestions"`
}

type suggestionDTO struct {
	ID                string    `json:"id"`
	Window            windowDTO `json:"window"`
	Confidence        float64   `json:"confidence"`
	Reasoning         []string  `json:"reasoning"`
	PatternBased      bool      `json:"pattern_based"`
	MutualConvenience float64   `json:"mutual_convenience"`
	SuggestionType    string    `json:"suggestion_type"`
}

func toDomainInterval(dto intervalDTO) (models.TimeInterval, error) {
	start, err := utils.ParseRFC3339(dto.Start)
	if err != nil {
		return models.TimeInterval{}, fmt.Errorf("slot start: %w", err)
	}
	end, err := utils.ParseRFC3339(dto.End)
	if err != nil {
		return models.TimeInterval{}, fmt.Errorf("slot end: %w", err)
	}
	return models.TimeInterval{Start: start, End: end}, nil
}

func toDomainBusy(userID string, dtos []busyBlockDTO) ([]models.BusyBlock, error) {
	if dtos == nil {
		return nil, nil
	}
	blocks := make([]models.BusyBlock, 0, len(dtos))
	for _, dto := range dtos {
		iv, err := toDomainInterval(intervalDTO{Start: dto.Start, End: dto.End})
		if err != nil {
			return nil, fmt.Errorf("busy block: %w", err)
		}
		blocks = append(blocks, models.BusyBlock{UserID: userID, Interval: iv, Source: dto.Source})
	}
	return blocks, nil
}

func toDomainPrefs(dto *preferencesDTO) *models.SchedulePreferences {
	if dto == nil {
		return nil
	}
	prefs := &models.SchedulePreferences{
		Timezone:     dto.Timezone,
		WorkingHours: dto.WorkingHours,
	}
	for _, d := range dto.Days {
		prefs.Days = append(prefs.Days, time.Weekday(d))
	}
	return prefs
}

// toDomainAvailabilityRequest merges JSON busy blocks with any inline
// iCalendar payloads for the same user.
func toDomainAvailabilityRequest(dto availabilityRequestDTO) (models.AvailabilityRequest, error) {
	req := models.AvailabilityRequest{
		UserAID:         dto.UserA,
		UserBID:         dto.UserB,
		StartDate:       dto.StartDate,
		EndDate:         dto.EndDate,
		DurationMinutes: dto.DurationMinutes,
		BufferMinutes:   dto.BufferMinutes,
		PrefsA:          toDomainPrefs(dto.PrefsA),
		PrefsB:          toDomainPrefs(dto.PrefsB),
	}

	var err error
	if req.BusyA, err = toDomainBusy(dto.UserA, dto.BusyA); err != nil {
		return models.AvailabilityRequest{}, err
	}
	if req.BusyB, err = toDomainBusy(dto.UserB, dto.BusyB); err != nil {
		return models.AvailabilityRequest{}, err
	}

	if dto.BusyAICS != "" {
		blocks, err := icsBlocks(dto.UserA, dto.BusyAICS, dto.StartDate, dto.EndDate)
		if err != nil {
			return models.AvailabilityRequest{}, err
		}
		req.BusyA = append(req.BusyA, blocks...)
	}
	if dto.BusyBICS != "" {
		blocks, err := icsBlocks(dto.UserB, dto.BusyBICS, dto.StartDate, dto.EndDate)
		if err != nil {
			return models.AvailabilityRequest{}, err
		}
		req.BusyB = append(req.BusyB, blocks...)
	}
	return req, nil
}

func icsBlocks(userID, payload, startDate, endDate string) ([]models.BusyBlock, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	return ingest.BusyBlocksFromICS(userID, []byte(payload), start.AddDate(0, 0, -1), end.AddDate(0, 0, 2))
}

func toDomainHistory(dtos []meetingDTO) ([]models.HistoricalMeeting, error) {
	if dtos == nil {
		return nil, nil
	}
	meetings := make([]models.HistoricalMeeting, 0, len(dtos))
	for _, dto := range dtos {
		start, err := utils.ParseRFC3339(dto.Start)
		if err != nil {
			return nil, fmt.Errorf("meeting start: %w", err)
		}
		meetings = append(meetings, models.HistoricalMeeting{
			Start:           start,
			DurationMinutes: dto.DurationMinutes,
			WasSuccessful:   dto.WasSuccessful,
			DayOfWeek:       start.Weekday(),
		})
	}
	return meetings, nil
}

func fromDomainWindows(windows []models.AvailabilityWindow) []windowDTO {
	out := make([]windowDTO, 0, len(windows))
	for _, w := range windows {
		out = append(out, windowDTO{
			Start:           w.Interval.Start.Format(time.RFC3339),
			End:             w.Interval.End.Format(time.RFC3339),
			DurationMinutes: w.DurationMinutes,
		})
	}
	return out
}

func fromDomainConflict(record models.ConflictRecord) conflictRecordDTO {
	dto := conflictRecordDTO{
		Slot: intervalDTO{
			Start: record.Slot.Start.Format(time.RFC3339),
			End:   record.Slot.End.Format(time.RFC3339),
		},
		Severity:     string(record.Severity),
		AffectedUser: string(record.AffectedUser),
	}
	for _, b := range record.ConflictingBlocks {
		dto.ConflictingBlocks = append(dto.ConflictingBlocks, busyBlockDTO{
			Start:  b.Interval.Start.Format(time.RFC3339),
			End:    b.Interval.End.Format(time.RFC3339),
			Source: b.Source,
		})
	}
	return dto
}

func fromDomainPattern(pattern models.UserSchedulePattern) patternDTO {
	dto := patternDTO{
		UserID:                 pattern.UserID,
		Timezone:               pattern.Timezone,
		AverageDurationMinutes: int(pattern.AverageMeetingDuration.Minutes()),
		Confidence:             pattern.Confidence,
		SampleSize:             pattern.SampleSize,
	}
	for _, d := range pattern.PreferredDays {
		dto.PreferredDays = append(dto.PreferredDays, int(d))
	}
	for _, r := range pattern.PreferredTimeRanges {
		dto.PreferredTimeRanges = append(dto.PreferredTimeRanges, timeRangeDTO{
			Weekday:     int(r.Weekday),
			StartMinute: r.StartMinute,
			EndMinute:   r.EndMinute,
			Frequency:   r.Frequency,
		})
	}
	return dto
}

func fromDomainSuggestions(suggestions []models.SmartSuggestion) []suggestionDTO {
	out := make([]suggestionDTO, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, suggestionDTO{
			ID: s.ID,
			Window: windowDTO{
				Start:           s.Window.Interval.Start.Format(time.RFC3339),
				End:             s.Window.Interval.End.Format(time.RFC3339),
				DurationMinutes: s.Window.DurationMinutes,
			},
			Confidence:        s.Confidence,
			Reasoning:         s.Reasoning,
			PatternBased:      s.PatternBased,
			MutualConvenience: s.MutualConvenience,
			SuggestionType:    string(s.SuggestionType),
		})
	}
	return out
}
