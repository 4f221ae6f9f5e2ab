package utils

import (
	"sort"
	"sync"
	"time"
)

// LatencyTracker keeps a bounded window of duration samples per
// operation and computes percentiles over them.
type LatencyTracker struct {
	mu      sync.RWMutex
	samples map[string][]time.Duration
	maxSize int
}

// NewLatencyTracker creates a tracker storing up to maxSize samples per
// operation.
func NewLatencyTracker(maxSize int) *LatencyTracker {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &LatencyTracker{samples: make(map[string][]time.Duration), maxSize: maxSize}
}

// Observe records a duration for the named operation.
func (l *LatencyTracker) Observe(op string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := append(l.samples[op], d)
	if len(window) > l.maxSize {
		// Drop oldest sample to bound memory.
		copy(window[0:], window[1:])
		window = window[:l.maxSize]
	}
	l.samples[op] = window
}

// Percentile returns the percentile (0-100) duration for the operation.
// Returns zero when no samples have been recorded.
func (l *LatencyTracker) Percentile(op string, p float64) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	window := l.samples[op]
	if len(window) == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), window...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	index := int((p / 100.0) * float64(len(sorted)-1))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// Count returns the number of samples recorded for the operation.
func (l *LatencyTracker) Count(op string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.samples[op])
}
