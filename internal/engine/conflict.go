package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syncupstack/syncup-engine/internal/interval"
	"github.com/syncupstack/syncup-engine/internal/models"
)

// Detector evaluates proposed slots against both users' busy blocks.
// It holds no mutable state, so any number of evaluations may run
// concurrently.
type Detector struct {
	logger *slog.Logger
}

// NewDetector constructs a Detector.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// Detect classifies one proposed slot. Most severe classification wins:
// a hard overlap with an unpadded block beats a buffer violation, which
// beats none.
func (d *Detector) Detect(slot models.TimeInterval, busyA, busyB []models.BusyBlock, bufferMinutes int) (models.ConflictRecord, error) {
	if !slot.Start.Before(slot.End) {
		return models.ConflictRecord{}, fmt.Errorf("%w: proposed slot", interval.ErrInvalidInterval)
	}
	if bufferMinutes < 0 {
		return models.ConflictRecord{}, fmt.Errorf("%w: buffer %dm", interval.ErrInvalidInterval, bufferMinutes)
	}
	for _, blocks := range [][]models.BusyBlock{busyA, busyB} {
		for _, b := range blocks {
			if !b.Interval.Start.Before(b.Interval.End) {
				return models.ConflictRecord{}, fmt.Errorf("%w: busy block from %q", interval.ErrInvalidInterval, b.Source)
			}
		}
	}

	buffer := time.Duration(bufferMinutes) * time.Minute

	hardA, softA := classify(slot, busyA, buffer)
	hardB, softB := classify(slot, busyB, buffer)

	record := models.ConflictRecord{Slot: slot, Severity: models.SeverityNone, AffectedUser: models.AffectedNone}
	switch {
	case len(hardA) > 0 || len(hardB) > 0:
		record.Severity = models.SeverityHardOverlap
		record.ConflictingBlocks = append(hardA, hardB...)
		record.AffectedUser = affected(len(hardA) > 0, len(hardB) > 0)
	case len(softA) > 0 || len(softB) > 0:
		record.Severity = models.SeverityBufferViolation
		record.ConflictingBlocks = append(softA, softB...)
		record.AffectedUser = affected(len(softA) > 0, len(softB) > 0)
	}
	return record, nil
}

// DetectBatch evaluates candidate slots independently and concurrently,
// bounded by limit (slot count when limit <= 0). Records come back in
// slot order.
func (d *Detector) DetectBatch(ctx context.Context, slots []models.TimeInterval, busyA, busyB []models.BusyBlock, bufferMinutes, limit int) ([]models.ConflictRecord, error) {
	if len(slots) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(slots) {
		limit = len(slots)
	}

	records := make([]models.ConflictRecord, len(slots))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, slot := range slots {
		i, slot := i, slot
		g.Go(func() error {
			record, err := d.Detect(slot, busyA, busyB, bufferMinutes)
			if err != nil {
				return fmt.Errorf("slot %d: %w", i, err)
			}
			records[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// classify splits a user's blocks into hard overlaps with the unpadded
// slot and buffer-only violations.
func classify(slot models.TimeInterval, blocks []models.BusyBlock, buffer time.Duration) (hard, soft []models.BusyBlock) {
	for _, b := range blocks {
		if slot.Overlaps(b.Interval) {
			hard = append(hard, b)
			continue
		}
		padded := models.TimeInterval{
			Start: b.Interval.Start.Add(-buffer),
			End:   b.Interval.End.Add(buffer),
		}
		if buffer > 0 && slot.Overlaps(padded) {
			soft = append(soft, b)
		}
	}
	return hard, soft
}

func affected(a, b bool) models.AffectedUser {
	switch {
	case a && b:
		return models.AffectedBoth
	case a:
		return models.AffectedUserA
	case b:
		return models.AffectedUserB
	default:
		return models.AffectedNone
	}
}
