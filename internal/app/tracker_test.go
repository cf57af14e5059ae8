package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

func TestProgressTracker_FirstSample(t *testing.T) {
	tracker := NewProgressTracker()

	state := tracker.Observe(domain.ProgressSample{BytesTransferred: 100, BytesTotal: 1000, Timestamp: time.Now()})

	assert.InDelta(t, 10.0, state.Percentage, 0.001)
	assert.Zero(t, state.Throughput)
	assert.Equal(t, domain.ETAUnknown, state.ETASeconds)
	assert.False(t, state.HasETA())
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	tracker := NewProgressTracker()
	start := time.Now()

	tracker.Observe(domain.ProgressSample{BytesTransferred: 0, BytesTotal: 0, Timestamp: start})
	state := tracker.Observe(domain.ProgressSample{BytesTransferred: 500, BytesTotal: 0, Timestamp: start.Add(time.Second)})

	assert.Zero(t, state.Percentage)
	assert.InDelta(t, 500.0, state.Throughput, 0.001)
	assert.Equal(t, domain.ETAUnknown, state.ETASeconds)
}

func TestProgressTracker_ThroughputAndETA(t *testing.T) {
	tracker := NewProgressTracker()
	start := time.Now()

	tracker.Observe(domain.ProgressSample{BytesTransferred: 0, BytesTotal: 10000, Timestamp: start})
	state := tracker.Observe(domain.ProgressSample{BytesTransferred: 2000, BytesTotal: 10000, Timestamp: start.Add(2 * time.Second)})

	assert.InDelta(t, 20.0, state.Percentage, 0.001)
	assert.InDelta(t, 1000.0, state.Throughput, 0.001)
	assert.Equal(t, int64(8), state.ETASeconds)

	// Throughput uses only the previous sample.
	state = tracker.Observe(domain.ProgressSample{BytesTransferred: 2500, BytesTotal: 10000, Timestamp: start.Add(3 * time.Second)})
	assert.InDelta(t, 500.0, state.Throughput, 0.001)
	assert.Equal(t, int64(15), state.ETASeconds)
}

func TestProgressTracker_ETATruncated(t *testing.T) {
	tracker := NewProgressTracker()
	start := time.Now()

	tracker.Observe(domain.ProgressSample{BytesTransferred: 0, BytesTotal: 1000, Timestamp: start})
	state := tracker.Observe(domain.ProgressSample{BytesTransferred: 300, BytesTotal: 1000, Timestamp: start.Add(time.Second)})

	// 700 / 300 = 2.33s
	assert.Equal(t, int64(2), state.ETASeconds)
}

func TestProgressTracker_SameTimestamp(t *testing.T) {
	tracker := NewProgressTracker()
	now := time.Now()

	tracker.Observe(domain.ProgressSample{BytesTransferred: 10, BytesTotal: 100, Timestamp: now})
	state := tracker.Observe(domain.ProgressSample{BytesTransferred: 20, BytesTotal: 100, Timestamp: now})

	assert.Zero(t, state.Throughput)
	assert.Equal(t, domain.ETAUnknown, state.ETASeconds)
	assert.InDelta(t, 20.0, state.Percentage, 0.001)
}

func TestProgressTracker_PercentageMonotonic(t *testing.T) {
	tracker := NewProgressTracker()
	start := time.Now()

	samples := []int64{0, 100, 250, 250, 900, 1000, 1200}
	var last float64
	for i, b := range samples {
		state := tracker.Observe(domain.ProgressSample{
			BytesTransferred: b,
			BytesTotal:       1000,
			Timestamp:        start.Add(time.Duration(i) * time.Second),
		})
		assert.GreaterOrEqual(t, state.Percentage, last)
		assert.LessOrEqual(t, state.Percentage, 100.0)
		last = state.Percentage
	}
	assert.Equal(t, 100.0, last)

	// A smaller reported total must not move the bar backwards either.
	state := tracker.Observe(domain.ProgressSample{BytesTransferred: 10, BytesTotal: 1000, Timestamp: start.Add(time.Minute)})
	assert.Equal(t, 100.0, state.Percentage)
}

func TestProgressTracker_Reset(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.Observe(domain.ProgressSample{BytesTransferred: 900, BytesTotal: 1000, Timestamp: time.Now()})

	tracker.Reset()
	state := tracker.Observe(domain.ProgressSample{BytesTransferred: 100, BytesTotal: 1000, Timestamp: time.Now()})

	assert.InDelta(t, 10.0, state.Percentage, 0.001)
	assert.Zero(t, state.Throughput)
}
