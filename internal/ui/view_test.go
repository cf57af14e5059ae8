package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

func TestDescribe_Downloading(t *testing.T) {
	v := describe(domain.Event{
		Phase:    domain.PhaseDownloading,
		Title:    "Song",
		Index:    2,
		Total:    3,
		Progress: domain.ProgressState{Percentage: 40, Throughput: 1024 * 1024, ETASeconds: 3725},
	})

	assert.InDelta(t, 0.4, v.Progress, 1e-9)
	assert.Equal(t, "Song", v.Title)
	assert.Equal(t, "Speed: 1.00 MB/s   ETA: 01:02:05", v.Speed)
	assert.Equal(t, "Processing video 2/3: Downloading audio stream...", v.Status)
	assert.Empty(t, v.LogLine)
	assert.False(t, v.Finished)
}

func TestDescribe_UnknownSpeed(t *testing.T) {
	v := describe(domain.Event{Phase: domain.PhaseDownloading, Progress: domain.IdleProgress()})
	assert.Equal(t, "Speed: —   ETA: —", v.Speed)
}

func TestDescribe_LoggedPhases(t *testing.T) {
	at := time.Date(2026, 10, 17, 14, 5, 9, 0, time.UTC)
	item := domain.NewDownloadItem("https://youtu.be/abc")
	item.Title = "Song"
	result := domain.CompletedResult(item, "/music/Song.mp3")

	v := describe(domain.Event{Phase: domain.PhaseItemDone, Result: &result, Timestamp: at})
	assert.Equal(t, "[14:05:09] Completed: Song", v.LogLine)
	assert.Empty(t, v.Speed)

	v = describe(domain.Event{Phase: domain.PhaseJobDone, Message: "All downloads finished (1 completed)", Timestamp: at})
	assert.True(t, v.Finished)
	assert.Equal(t, "[14:05:09] All downloads finished (1 completed)", v.LogLine)

	v = describe(domain.Event{Phase: domain.PhaseTranscoding, Progress: domain.ProgressState{Percentage: 100}})
	assert.Empty(t, v.LogLine)
	assert.Equal(t, 1.0, v.Progress)
}
