package app

import (
	"github.com/yourusername/ytmp3-go/internal/domain"
)

// ProgressTracker turns raw byte samples into percentage, throughput and ETA.
// It keeps only the previous sample, so throughput is instantaneous. One
// tracker serves one transfer and is not safe for concurrent use.
type ProgressTracker struct {
	prev    *domain.ProgressSample
	percent float64
}

// NewProgressTracker creates a tracker with no history
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

// Observe folds in a sample and returns the derived state.
//
// Percentage never decreases and is capped at 100. Throughput is 0 on the
// first sample and whenever the clock did not advance. ETA is whole seconds,
// or domain.ETAUnknown without a positive throughput or a known total.
func (t *ProgressTracker) Observe(s domain.ProgressSample) domain.ProgressState {
	if s.BytesTotal > 0 {
		p := float64(s.BytesTransferred) / float64(s.BytesTotal) * 100
		if p > 100 {
			p = 100
		}
		if p > t.percent {
			t.percent = p
		}
	}

	var throughput float64
	if t.prev != nil {
		dt := s.Timestamp.Sub(t.prev.Timestamp).Seconds()
		db := s.BytesTransferred - t.prev.BytesTransferred
		if dt > 0 && db > 0 {
			throughput = float64(db) / dt
		}
	}

	eta := domain.ETAUnknown
	if throughput > 0 && s.BytesTotal > 0 {
		remaining := s.BytesTotal - s.BytesTransferred
		if remaining < 0 {
			remaining = 0
		}
		eta = int64(float64(remaining) / throughput)
	}

	sample := s
	t.prev = &sample

	return domain.ProgressState{
		Percentage: t.percent,
		Throughput: throughput,
		ETASeconds: eta,
	}
}

// Reset forgets all history
func (t *ProgressTracker) Reset() {
	t.prev = nil
	t.percent = 0
}
