package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/syncupstack/syncup-engine/internal/cache"
	"github.com/syncupstack/syncup-engine/internal/engine"
	"github.com/syncupstack/syncup-engine/internal/metrics"
	"github.com/syncupstack/syncup-engine/internal/models"
	"github.com/syncupstack/syncup-engine/internal/patterns"
	"github.com/syncupstack/syncup-engine/internal/timezone"
	"github.com/syncupstack/syncup-engine/internal/utils"
)

// DataProvider abstracts the external schedule data provider. All
// fetching and retry policy lives behind it; the engine itself performs
// no I/O.
type DataProvider interface {
	FetchBusyBlocks(ctx context.Context, userID string, start, end time.Time) ([]models.BusyBlock, error)
	FetchPreferences(ctx context.Context, userID string) (*models.SchedulePreferences, error)
	FetchHistory(ctx context.Context, userID string) ([]models.HistoricalMeeting, error)
}

// SchedulerService fronts the four engine operations for the transport
// layer. It owns the caller-side cache of availability results and the
// operational metrics; the engine packages below it stay pure.
type SchedulerService struct {
	logger          *slog.Logger
	calculator      *engine.Calculator
	detector        *engine.Detector
	analyzer        *patterns.Analyzer
	ranker          *engine.Ranker
	provider        DataProvider
	cache           cache.Provider
	availabilityTTL time.Duration
	patternTTL      time.Duration
	latencies       *utils.LatencyTracker
}

// NewSchedulerService constructs the service facade. provider may be
// nil when callers always supply schedule data inline; cacheProvider
// may be nil to disable caching.
func NewSchedulerService(
	logger *slog.Logger,
	calculator *engine.Calculator,
	detector *engine.Detector,
	analyzer *patterns.Analyzer,
	ranker *engine.Ranker,
	provider DataProvider,
	cacheProvider cache.Provider,
	availabilityTTL, patternTTL time.Duration,
) *SchedulerService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	return &SchedulerService{
		logger:          logger,
		calculator:      calculator,
		detector:        detector,
		analyzer:        analyzer,
		ranker:          ranker,
		provider:        provider,
		cache:           cacheProvider,
		availabilityTTL: availabilityTTL,
		patternTTL:      patternTTL,
		latencies:       utils.NewLatencyTracker(1024),
	}
}

// ComputeMutualAvailability resolves missing schedule data through the
// provider, consults the cache, and falls through to the engine.
func (s *SchedulerService) ComputeMutualAvailability(ctx context.Context, req models.AvailabilityRequest) ([]models.AvailabilityWindow, error) {
	start := time.Now()

	// Only provider-sourced requests are cacheable: inline snapshots
	// are owned by the caller and may differ between calls with the
	// same key.
	cacheable := s.provider != nil &&
		req.BusyA == nil && req.BusyB == nil && req.PrefsA == nil && req.PrefsB == nil

	key := availabilityCacheKey(req)
	if cacheable {
		if payload, err := s.cache.Get(ctx, key); err == nil {
			var windows []models.AvailabilityWindow
			if err := json.Unmarshal(payload, &windows); err == nil {
				metrics.ObserveOperation(metrics.OpAvailability, time.Since(start), metrics.OutcomeSuccess)
				return windows, nil
			}
			// Corrupt entry; drop it and recompute.
			_ = s.cache.Del(ctx, key)
		}
	}

	if err := s.hydrate(ctx, &req); err != nil {
		metrics.ObserveOperation(metrics.OpAvailability, time.Since(start), metrics.OutcomeError)
		return nil, err
	}

	windows, err := s.calculator.ComputeMutualAvailability(req)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveOperation(metrics.OpAvailability, duration, metrics.OutcomeError)
		return nil, utils.WrapOp("availability", "mutual availability failed", err)
	}
	s.observe(metrics.OpAvailability, duration)

	if cacheable {
		if payload, err := json.Marshal(windows); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.availabilityTTL); err != nil {
				s.logger.Warn("availability cache store failed", slog.Any("error", err))
			}
		}
	}
	return windows, nil
}

// DetectConflicts evaluates one proposed slot.
func (s *SchedulerService) DetectConflicts(ctx context.Context, slot models.TimeInterval, busyA, busyB []models.BusyBlock, bufferMinutes int) (models.ConflictRecord, error) {
	start := time.Now()
	record, err := s.detector.Detect(slot, busyA, busyB, bufferMinutes)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveOperation(metrics.OpConflicts, duration, metrics.OutcomeError)
		return models.ConflictRecord{}, utils.WrapOp("conflicts", "conflict detection failed", err)
	}
	s.observe(metrics.OpConflicts, duration)
	return record, nil
}

// DetectConflictsBatch evaluates candidate slots concurrently under the
// given limit.
func (s *SchedulerService) DetectConflictsBatch(ctx context.Context, slots []models.TimeInterval, busyA, busyB []models.BusyBlock, bufferMinutes, limit int) ([]models.ConflictRecord, error) {
	start := time.Now()
	records, err := s.detector.DetectBatch(ctx, slots, busyA, busyB, bufferMinutes, limit)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveOperation(metrics.OpConflicts, duration, metrics.OutcomeError)
		return nil, utils.WrapOp("conflicts", "batch conflict detection failed", err)
	}
	s.observe(metrics.OpConflicts, duration)
	return records, nil
}

// AnalyzePattern derives a schedule pattern, fetching history from the
// provider when the caller supplied none.
func (s *SchedulerService) AnalyzePattern(ctx context.Context, userID, tzID string, history []models.HistoricalMeeting) (models.UserSchedulePattern, error) {
	start := time.Now()

	if history == nil && s.provider != nil {
		key := patternCacheKey(userID, tzID)
		if payload, err := s.cache.Get(ctx, key); err == nil {
			var pattern models.UserSchedulePattern
			if err := json.Unmarshal(payload, &pattern); err == nil {
				metrics.ObserveOperation(metrics.OpAnalyze, time.Since(start), metrics.OutcomeSuccess)
				return pattern, nil
			}
			_ = s.cache.Del(ctx, key)
		}

		fetched, err := s.provider.FetchHistory(ctx, userID)
		if err != nil {
			metrics.ObserveOperation(metrics.OpAnalyze, time.Since(start), metrics.OutcomeError)
			return models.UserSchedulePattern{}, utils.WrapOp("analyze", "history fetch failed", err)
		}
		history = fetched

		pattern, err := s.analyzer.Analyze(userID, tzID, history)
		duration := time.Since(start)
		if err != nil {
			metrics.ObserveOperation(metrics.OpAnalyze, duration, metrics.OutcomeError)
			return models.UserSchedulePattern{}, utils.WrapOp("analyze", "pattern analysis failed", err)
		}
		s.observe(metrics.OpAnalyze, duration)

		if payload, err := json.Marshal(pattern); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.patternTTL); err != nil {
				s.logger.Warn("pattern cache store failed", slog.Any("error", err))
			}
		}
		return pattern, nil
	}

	pattern, err := s.analyzer.Analyze(userID, tzID, history)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveOperation(metrics.OpAnalyze, duration, metrics.OutcomeError)
		return models.UserSchedulePattern{}, utils.WrapOp("analyze", "pattern analysis failed", err)
	}
	s.observe(metrics.OpAnalyze, duration)
	return pattern, nil
}

// RankSuggestions scores and orders candidate windows.
func (s *SchedulerService) RankSuggestions(ctx context.Context, windows []models.AvailabilityWindow, patternA, patternB models.UserSchedulePattern, maxSuggestions, durationMinutes int) []models.SmartSuggestion {
	start := time.Now()
	suggestions := s.ranker.Rank(windows, patternA, patternB, maxSuggestions, durationMinutes)
	s.observe(metrics.OpRank, time.Since(start))
	return suggestions
}

// SuggestTimes chains availability, pattern analysis, and ranking into
// ready-to-present suggestions for a user pair.
func (s *SchedulerService) SuggestTimes(ctx context.Context, req models.AvailabilityRequest, maxSuggestions int) ([]models.SmartSuggestion, error) {
	windows, err := s.ComputeMutualAvailability(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, nil
	}

	patternA, err := s.patternFor(ctx, req.UserAID, req.PrefsA)
	if err != nil {
		return nil, err
	}
	patternB, err := s.patternFor(ctx, req.UserBID, req.PrefsB)
	if err != nil {
		return nil, err
	}

	return s.RankSuggestions(ctx, windows, patternA, patternB, maxSuggestions, req.DurationMinutes), nil
}

// patternFor analyses provider history when available and degrades to a
// zero-confidence pattern otherwise.
func (s *SchedulerService) patternFor(ctx context.Context, userID string, prefs *models.SchedulePreferences) (models.UserSchedulePattern, error) {
	tzID := ""
	if prefs != nil {
		tzID = prefs.Timezone
	}
	if s.provider == nil {
		return models.UserSchedulePattern{UserID: userID, Timezone: tzID}, nil
	}
	return s.AnalyzePattern(ctx, userID, tzID, nil)
}

// hydrate fills missing busy blocks and preferences from the provider.
// Inline non-nil data always wins; nil means "fetch for me".
func (s *SchedulerService) hydrate(ctx context.Context, req *models.AvailabilityRequest) error {
	if s.provider == nil {
		return nil
	}

	rangeStart, rangeEnd, err := rangeBounds(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}

	if req.PrefsA == nil {
		if req.PrefsA, err = s.provider.FetchPreferences(ctx, req.UserAID); err != nil {
			return utils.WrapOp("availability", "preferences fetch failed", err)
		}
	}
	if req.PrefsB == nil {
		if req.PrefsB, err = s.provider.FetchPreferences(ctx, req.UserBID); err != nil {
			return utils.WrapOp("availability", "preferences fetch failed", err)
		}
	}
	if req.BusyA == nil {
		if req.BusyA, err = s.provider.FetchBusyBlocks(ctx, req.UserAID, rangeStart, rangeEnd); err != nil {
			return utils.WrapOp("availability", "busy fetch failed", err)
		}
	}
	if req.BusyB == nil {
		if req.BusyB, err = s.provider.FetchBusyBlocks(ctx, req.UserBID, rangeStart, rangeEnd); err != nil {
			return utils.WrapOp("availability", "busy fetch failed", err)
		}
	}
	return nil
}

func (s *SchedulerService) observe(op string, duration time.Duration) {
	metrics.ObserveOperation(op, duration, metrics.OutcomeSuccess)
	s.latencies.Observe(op, duration)
	if count := s.latencies.Count(op); count >= 20 && count%20 == 0 {
		s.logger.Info("operation latency",
			slog.String("operation", op),
			slog.Duration("p95", s.latencies.Percentile(op, 95)),
			slog.Int("samples", count))
	}
}

// availabilityCacheKey is order-insensitive in the user pair so the
// symmetric call hits the same entry.
func availabilityCacheKey(req models.AvailabilityRequest) string {
	users := []string{req.UserAID, req.UserBID}
	sort.Strings(users)
	return fmt.Sprintf("availability:%s:%s:%s:%s:%d:%d",
		strings.Join(users, ":"), req.StartDate, req.EndDate, "v1", req.DurationMinutes, req.BufferMinutes)
}

func patternCacheKey(userID, tzID string) string {
	return fmt.Sprintf("pattern:%s:%s", userID, tzID)
}

// rangeBounds widens the civil date range into UTC instants for
// provider fetches; each user's own timezone is applied later inside
// the engine.
func rangeBounds(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(timezone.DateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %q", timezone.ErrInvalidTime, startDate)
	}
	end, err := time.Parse(timezone.DateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %q", timezone.ErrInvalidTime, endDate)
	}
	// Pad by a day on both sides so zone offsets cannot clip blocks.
	return start.AddDate(0, 0, -1), end.AddDate(0, 0, 2), nil
}
