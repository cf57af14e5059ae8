package domain

// Outcome is the terminal state of one pipeline run
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// PipelineResult is returned once per item
type PipelineResult struct {
	Item       DownloadItem `json:"item"`
	Outcome    Outcome      `json:"outcome"`
	OutputPath string       `json:"output_path,omitempty"` // set only when Completed
	Err        error        `json:"-"`
}

// CompletedResult builds a successful result
func CompletedResult(item *DownloadItem, outputPath string) PipelineResult {
	return PipelineResult{Item: *item, Outcome: OutcomeCompleted, OutputPath: outputPath}
}

// CancelledResult builds a result for a user stop
func CancelledResult(item *DownloadItem) PipelineResult {
	return PipelineResult{Item: *item, Outcome: OutcomeCancelled, Err: ErrCancelled}
}

// FailedResult builds a failed result carrying the reason
func FailedResult(item *DownloadItem, err error) PipelineResult {
	return PipelineResult{Item: *item, Outcome: OutcomeFailed, Err: err}
}

// Reason returns a human-readable reason for non-completed results
func (r PipelineResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// IsCompleted reports whether the item finished successfully
func (r PipelineResult) IsCompleted() bool {
	return r.Outcome == OutcomeCompleted
}

// IsCancelled reports whether the item was stopped by the user
func (r PipelineResult) IsCancelled() bool {
	return r.Outcome == OutcomeCancelled
}
