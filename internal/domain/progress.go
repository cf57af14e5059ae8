package domain

import (
	"fmt"
	"time"
)

// ETAUnknown marks a ProgressState without an estimate
const ETAUnknown int64 = -1

// ProgressSample is one raw byte-progress report from a MediaSource
type ProgressSample struct {
	BytesTransferred int64
	BytesTotal       int64
	Timestamp        time.Time
}

// ProgressState is derived from samples by the progress tracker
type ProgressState struct {
	Percentage float64 `json:"percentage"`  // 0 to 100
	Throughput float64 `json:"throughput"`  // bytes/sec, 0 if unknown
	ETASeconds int64   `json:"eta_seconds"` // -1 if unknown
}

// IdleProgress is the state before any sample was observed
func IdleProgress() ProgressState {
	return ProgressState{ETASeconds: ETAUnknown}
}

// HasETA reports whether an estimate is available
func (p ProgressState) HasETA() bool {
	return p.ETASeconds >= 0
}

// ETAString returns ETA formatted as hh:mm:ss or mm:ss, or "—" if unknown
func (p ProgressState) ETAString() string {
	if !p.HasETA() {
		return "—"
	}

	hours := p.ETASeconds / 3600
	minutes := (p.ETASeconds % 3600) / 60
	seconds := p.ETASeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// SpeedString returns throughput as e.g. "1.25 MB/s", or empty when unknown
func (p ProgressState) SpeedString() string {
	if p.Throughput <= 0 {
		return ""
	}
	return FormatBytes(int64(p.Throughput)) + "/s"
}

// FormatBytes formats bytes as a human-readable string
func FormatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
