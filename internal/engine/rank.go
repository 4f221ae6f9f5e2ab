package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/syncupstack/syncup-engine/internal/config"
	"github.com/syncupstack/syncup-engine/internal/models"
	"github.com/syncupstack/syncup-engine/internal/utils"
)

// Ranker scores candidate windows against both users' patterns and
// mutual-convenience heuristics and orders them by confidence.
type Ranker struct {
	logger *slog.Logger
	cfg    config.RankerConfig
}

// NewRanker constructs a Ranker with the configured weights. Weights
// are documented defaults, not constants; zero-value config falls back
// to them.
func NewRanker(logger *slog.Logger, cfg config.RankerConfig) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PatternWeight+cfg.ConvenienceWeight+cfg.DurationFitWeight+cfg.FairnessWeight <= 0 {
		cfg.PatternWeight = 0.35
		cfg.ConvenienceWeight = 0.25
		cfg.DurationFitWeight = 0.2
		cfg.FairnessWeight = 0.2
	}
	if cfg.ComfortStartHour <= 0 {
		cfg.ComfortStartHour = 7
	}
	if cfg.ComfortEndHour <= 0 {
		cfg.ComfortEndHour = 22
	}
	if cfg.DurationToleranceMinutes <= 0 {
		cfg.DurationToleranceMinutes = 30
	}
	if cfg.OptimalThreshold <= 0 {
		cfg.OptimalThreshold = 0.8
	}
	return &Ranker{logger: logger, cfg: cfg}
}

type windowScores struct {
	pattern     float64
	convenience float64
	durationFit float64
	fairness    float64
}

// Rank scores the windows and returns up to maxSuggestions suggestions
// ordered descending by confidence, ties broken by earlier start.
func (r *Ranker) Rank(windows []models.AvailabilityWindow, patternA, patternB models.UserSchedulePattern, maxSuggestions, durationMinutes int) []models.SmartSuggestion {
	if maxSuggestions <= 0 {
		maxSuggestions = 5
	}

	locA := zoneOf(patternA.Timezone)
	locB := zoneOf(patternB.Timezone)

	suggestions := make([]models.SmartSuggestion, 0, len(windows))
	for _, window := range windows {
		scores := windowScores{
			pattern:     averagePatternScore(window, patternA, patternB),
			convenience: r.convenienceScore(window, patternA, patternB, locA, locB),
			durationFit: r.durationFitScore(window, durationMinutes),
			fairness:    r.fairnessScore(window, durationMinutes, locA, locB),
		}

		weightSum := r.cfg.PatternWeight + r.cfg.ConvenienceWeight + r.cfg.DurationFitWeight + r.cfg.FairnessWeight
		confidence := (r.cfg.PatternWeight*scores.pattern +
			r.cfg.ConvenienceWeight*scores.convenience +
			r.cfg.DurationFitWeight*scores.durationFit +
			r.cfg.FairnessWeight*scores.fairness) / weightSum
		confidence = utils.Clamp(confidence, 0, 1)

		suggestions = append(suggestions, models.SmartSuggestion{
			ID:                uuid.NewString(),
			Window:            window,
			Confidence:        confidence,
			Reasoning:         r.reasoning(window, scores, patternA, patternB, locA),
			PatternBased:      scores.pattern > 0,
			MutualConvenience: scores.convenience,
			SuggestionType:    r.suggestionType(scores),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].Window.Interval.Start.Before(suggestions[j].Window.Interval.Start)
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// suggestionType names the dominant signal per the scoring policy:
// pattern dominance first, then the optimal combination, then
// preference fit, else plain availability.
func (r *Ranker) suggestionType(s windowScores) models.SuggestionType {
	contribs := map[models.SuggestionType]float64{
		models.SuggestionPattern:    r.cfg.PatternWeight * s.pattern,
		models.SuggestionPreference: r.cfg.FairnessWeight * s.fairness,
	}
	convenience := r.cfg.ConvenienceWeight * s.convenience
	durationFit := r.cfg.DurationFitWeight * s.durationFit

	if s.pattern > 0 &&
		contribs[models.SuggestionPattern] >= contribs[models.SuggestionPreference] &&
		contribs[models.SuggestionPattern] >= convenience &&
		contribs[models.SuggestionPattern] >= durationFit {
		return models.SuggestionPattern
	}
	if s.convenience >= r.cfg.OptimalThreshold && s.durationFit >= r.cfg.OptimalThreshold {
		return models.SuggestionOptimal
	}
	if contribs[models.SuggestionPreference] >= convenience && contribs[models.SuggestionPreference] >= durationFit {
		return models.SuggestionPreference
	}
	return models.SuggestionAvailability
}

// averagePatternScore looks up the window start in each user's
// frequency buckets and averages the users that have pattern data.
func averagePatternScore(window models.AvailabilityWindow, patterns ...models.UserSchedulePattern) float64 {
	total := 0.0
	withData := 0
	for _, p := range patterns {
		if !p.HasData() {
			continue
		}
		withData++
		total += bucketFrequencyAt(p, window.Interval.Start)
	}
	if withData == 0 {
		return 0
	}
	return total / float64(withData)
}

func bucketFrequencyAt(p models.UserSchedulePattern, instant time.Time) float64 {
	local := instant.In(zoneOf(p.Timezone))
	minute := local.Hour()*60 + local.Minute()
	for _, rng := range p.PreferredTimeRanges {
		if rng.Contains(local.Weekday(), minute) {
			return rng.Frequency
		}
	}
	return 0
}

// convenienceScore rewards slots equally close to both users' preferred
// time-of-day centers and penalises slots convenient to only one.
func (r *Ranker) convenienceScore(window models.AvailabilityWindow, patternA, patternB models.UserSchedulePattern, locA, locB *time.Location) float64 {
	offA := hourOffset(window.Interval.Start, preferredCenter(patternA), locA)
	offB := hourOffset(window.Interval.Start, preferredCenter(patternB), locB)
	return utils.Clamp(1-(offA+offB)/12, 0, 1)
}

// preferredCenter is the fractional local hour a user most often meets
// at, taken from the top frequency bucket, or the middle of the default
// working day when no pattern data exists.
func preferredCenter(p models.UserSchedulePattern) float64 {
	if len(p.PreferredTimeRanges) > 0 {
		top := p.PreferredTimeRanges[0]
		return float64(top.StartMinute+top.EndMinute) / 2 / 60
	}
	return 14.5
}

func hourOffset(instant time.Time, centerHour float64, loc *time.Location) float64 {
	local := instant.In(loc)
	hour := float64(local.Hour()) + float64(local.Minute())/60
	off := hour - centerHour
	if off < 0 {
		off = -off
	}
	if off > 12 {
		off = 24 - off
	}
	return off
}

// durationFitScore is 1.0 when the window accommodates the meeting with
// at most the tolerated slack, then decays as the window grows far
// beyond what is needed.
func (r *Ranker) durationFitScore(window models.AvailabilityWindow, durationMinutes int) float64 {
	excess := window.DurationMinutes - durationMinutes
	if excess < 0 {
		return 0 // never produced: shorter windows are filtered upstream
	}
	if excess <= r.cfg.DurationToleranceMinutes {
		return 1
	}
	return utils.Clamp(1-float64(excess-r.cfg.DurationToleranceMinutes)/480, 0, 1)
}

// fairnessScore penalises meetings outside comfortable local hours for
// either user.
func (r *Ranker) fairnessScore(window models.AvailabilityWindow, durationMinutes int, locA, locB *time.Location) float64 {
	meetingEnd := window.Interval.Start.Add(time.Duration(durationMinutes) * time.Minute)
	score := 1.0
	for _, loc := range []*time.Location{locA, locB} {
		startHour := float64(window.Interval.Start.In(loc).Hour()) + float64(window.Interval.Start.In(loc).Minute())/60
		endHour := float64(meetingEnd.In(loc).Hour()) + float64(meetingEnd.In(loc).Minute())/60
		if startHour < float64(r.cfg.ComfortStartHour) || (endHour > float64(r.cfg.ComfortEndHour) && endHour > startHour) {
			score -= 0.5
		}
	}
	return utils.Clamp(score, 0, 1)
}

func (r *Ranker) reasoning(window models.AvailabilityWindow, s windowScores, patternA, patternB models.UserSchedulePattern, locA *time.Location) []string {
	var reasons []string
	if s.pattern > 0 {
		local := window.Interval.Start.In(locA)
		if !patternA.HasData() {
			local = window.Interval.Start.In(zoneOf(patternB.Timezone))
		}
		reasons = append(reasons, fmt.Sprintf("Matches a recurring %s %s meeting habit",
			local.Weekday(), local.Format("15:04")))
	}
	if s.convenience >= 0.7 {
		reasons = append(reasons, "Similar local hours for both users")
	}
	if s.durationFit >= 1 {
		reasons = append(reasons, "Window closely fits the requested duration")
	}
	if s.fairness >= 1 {
		reasons = append(reasons, "Within comfortable local hours for both users")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Both users are free at this time")
	}
	return reasons
}

func zoneOf(tzID string) *time.Location {
	if tzID == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return time.UTC
	}
	return loc
}
