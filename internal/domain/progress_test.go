package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressState_ETAString(t *testing.T) {
	assert.Equal(t, "—", IdleProgress().ETAString())
	assert.Equal(t, "00:00", ProgressState{ETASeconds: 0}.ETAString())
	assert.Equal(t, "01:05", ProgressState{ETASeconds: 65}.ETAString())
	assert.Equal(t, "02:00:01", ProgressState{ETASeconds: 7201}.ETAString())
}

func TestProgressState_SpeedString(t *testing.T) {
	assert.Empty(t, ProgressState{}.SpeedString())
	assert.Equal(t, "1.50 MB/s", ProgressState{Throughput: 1.5 * 1024 * 1024}.SpeedString())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.00 KB", FormatBytes(1024))
	assert.Equal(t, "2.50 MB", FormatBytes(2621440))
	assert.Equal(t, "1.00 GB", FormatBytes(1<<30))
}

func TestEvent_StatusText(t *testing.T) {
	item := NewBatchItem("https://youtu.be/x", 2, 4)

	assert.Equal(t, "Processing video 2/4: Fetching video information...", NewItemEvent(PhaseResolving, item, IdleProgress()).StatusText())
	assert.Equal(t, "Processing video 2/4: Converting to MP3...", NewItemEvent(PhaseTranscoding, item, IdleProgress()).StatusText())

	done := NewItemEvent(PhaseItemDone, item, IdleProgress())
	r := CancelledResult(item)
	done.Result = &r
	assert.Equal(t, "Processing video 2/4: Stopped by user", done.StatusText())

	single := NewItemEvent(PhaseDownloading, NewDownloadItem("https://youtu.be/y"), IdleProgress())
	assert.Equal(t, "Downloading audio stream...", single.StatusText())
}
