// Package interval implements pure set algebra over ordered sequences
// of time intervals. Every operation returns a canonical set: sorted by
// start and non-overlapping.
package interval

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/syncupstack/syncup-engine/internal/models"
)

// ErrInvalidInterval signals a zero-length or inverted interval.
// Malformed input is always surfaced, never silently dropped.
var ErrInvalidInterval = errors.New("invalid interval")

// New builds a validated interval.
func New(start, end time.Time) (models.TimeInterval, error) {
	if !start.Before(end) {
		return models.TimeInterval{}, fmt.Errorf("%w: start %s not before end %s",
			ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return models.TimeInterval{Start: start, End: end}, nil
}

// Validate checks every interval in the sequence at ingestion.
func Validate(set []models.TimeInterval) error {
	for _, iv := range set {
		if !iv.Start.Before(iv.End) {
			return fmt.Errorf("%w: start %s not before end %s",
				ErrInvalidInterval, iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
		}
	}
	return nil
}

// Normalize sorts the set by start and merges overlapping or adjacent
// intervals, establishing the canonical form the other operations rely
// on. The input is not modified.
func Normalize(set []models.TimeInterval) []models.TimeInterval {
	if len(set) == 0 {
		return nil
	}
	sorted := append([]models.TimeInterval(nil), set...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := sorted[:1]
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Union merges two canonical sets into one.
func Union(a, b []models.TimeInterval) []models.TimeInterval {
	combined := make([]models.TimeInterval, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	return Normalize(combined)
}

// Intersect produces the overlap of two canonical sets with a linear
// sweep, O(|a|+|b|).
func Intersect(a, b []models.TimeInterval) []models.TimeInterval {
	var out []models.TimeInterval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := laterOf(a[i].Start, b[j].Start)
		end := earlierOf(a[i].End, b[j].End)
		if start.Before(end) {
			out = append(out, models.TimeInterval{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// Subtract removes b's coverage from a, splitting intervals as needed.
// Both inputs must be canonical.
func Subtract(a, b []models.TimeInterval) []models.TimeInterval {
	var out []models.TimeInterval
	j := 0
	for _, iv := range a {
		cursor := iv.Start
		for j < len(b) && !b[j].End.After(cursor) {
			j++
		}
		k := j
		for k < len(b) && b[k].Start.Before(iv.End) {
			if b[k].Start.After(cursor) {
				out = append(out, models.TimeInterval{Start: cursor, End: b[k].Start})
			}
			if b[k].End.After(cursor) {
				cursor = b[k].End
			}
			k++
		}
		if cursor.Before(iv.End) {
			out = append(out, models.TimeInterval{Start: cursor, End: iv.End})
		}
	}
	return out
}

// Pad expands every interval by the buffer on both ends and returns the
// canonical form. This models "no back-to-back meetings" before a
// subtraction.
func Pad(set []models.TimeInterval, buffer time.Duration) []models.TimeInterval {
	if buffer <= 0 {
		return Normalize(set)
	}
	padded := make([]models.TimeInterval, 0, len(set))
	for _, iv := range set {
		padded = append(padded, models.TimeInterval{
			Start: iv.Start.Add(-buffer),
			End:   iv.End.Add(buffer),
		})
	}
	return Normalize(padded)
}

// FilterMinDuration drops intervals shorter than the threshold. A free
// sliver too short to meet in is not a valid window.
func FilterMinDuration(set []models.TimeInterval, min time.Duration) []models.TimeInterval {
	var out []models.TimeInterval
	for _, iv := range set {
		if iv.Duration() >= min {
			out = append(out, iv)
		}
	}
	return out
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
