package domain

import (
	"fmt"
	"time"
)

// Phase identifies the pipeline step an Event reports on
type Phase string

const (
	PhaseResolving   Phase = "resolving"
	PhaseDownloading Phase = "downloading"
	PhaseTranscoding Phase = "transcoding"
	PhaseCleanup     Phase = "cleanup"
	PhaseItemDone    Phase = "item_done"
	PhaseJobDone     Phase = "job_done"
)

// Terminal reports whether the phase closes an item or a job
func (p Phase) Terminal() bool {
	return p == PhaseItemDone || p == PhaseJobDone
}

// Event is emitted by the worker for controllers (CLI, HTTP, desktop window)
type Event struct {
	JobID     string          `json:"job_id,omitempty"`
	Phase     Phase           `json:"phase"`
	URL       string          `json:"url,omitempty"`
	Title     string          `json:"title,omitempty"`
	Index     int             `json:"index,omitempty"`
	Total     int             `json:"total,omitempty"`
	Progress  ProgressState   `json:"progress"`
	Result    *PipelineResult `json:"result,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// EventSink receives pipeline events. Implementations must not block for long.
type EventSink func(Event)

// NewItemEvent builds an event describing item at the given phase
func NewItemEvent(phase Phase, item *DownloadItem, progress ProgressState) Event {
	return Event{
		Phase:     phase,
		URL:       item.URL,
		Title:     item.Title,
		Index:     item.Index,
		Total:     item.Total,
		Progress:  progress,
		Timestamp: time.Now(),
	}
}

// StatusText returns the one-line status a controller shows for this event
func (e Event) StatusText() string {
	prefix := ""
	if e.Total > 0 {
		prefix = fmt.Sprintf("Processing video %d/%d: ", e.Index, e.Total)
	}

	switch e.Phase {
	case PhaseResolving:
		return prefix + "Fetching video information..."
	case PhaseDownloading:
		return prefix + "Downloading audio stream..."
	case PhaseTranscoding:
		return prefix + "Converting to MP3..."
	case PhaseCleanup:
		return prefix + "Cleaning up..."
	case PhaseItemDone:
		if e.Result == nil {
			return prefix + "Done"
		}
		switch e.Result.Outcome {
		case OutcomeCompleted:
			return prefix + "Completed: " + e.Result.Item.Label()
		case OutcomeCancelled:
			return prefix + "Stopped by user"
		default:
			return prefix + "Failed: " + e.Result.Reason()
		}
	case PhaseJobDone:
		if e.Message != "" {
			return e.Message
		}
		return "All downloads finished"
	default:
		return string(e.Phase)
	}
}
