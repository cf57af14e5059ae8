package ui

import (
	"fmt"
	"time"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// eventView is what the window shows for one event
type eventView struct {
	Progress float64 // 0 to 1
	Title    string  // empty keeps the current title
	Speed    string
	Status   string
	LogLine  string // empty when the event is not logged
	Finished bool
}

func describe(e domain.Event) eventView {
	v := eventView{
		Progress: e.Progress.Percentage / 100,
		Title:    e.Title,
		Status:   e.StatusText(),
		Finished: e.Phase == domain.PhaseJobDone,
	}

	if e.Phase == domain.PhaseDownloading {
		speed := e.Progress.SpeedString()
		if speed == "" {
			speed = "—"
		}
		v.Speed = fmt.Sprintf("Speed: %s   ETA: %s", speed, e.Progress.ETAString())
	}

	switch e.Phase {
	case domain.PhaseResolving, domain.PhaseItemDone, domain.PhaseJobDone:
		v.LogLine = logLine(e.Timestamp, v.Status)
	}
	return v
}

func logLine(at time.Time, msg string) string {
	if at.IsZero() {
		at = time.Now()
	}
	return fmt.Sprintf("[%s] %s", at.Format("15:04:05"), msg)
}
