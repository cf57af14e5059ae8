package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current status of a job
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// JobKind distinguishes a single video from a playlist batch
type JobKind string

const (
	KindSingle   JobKind = "single"
	KindPlaylist JobKind = "playlist"
)

// Job represents one submitted URL and its aggregate outcome
type Job struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	URL          string     `json:"url" gorm:"not null"`
	Kind         JobKind    `json:"kind" gorm:"not null"`
	Status       JobStatus  `json:"status" gorm:"not null;index"`
	Title        string     `json:"title,omitempty"`
	Folder       string     `json:"folder"`
	Total        int        `json:"total" gorm:"default:0"`
	Completed    int        `json:"completed" gorm:"default:0"`
	Failed       int        `json:"failed" gorm:"default:0"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewJob creates a queued job. The kind is detected from the URL.
func NewJob(url, folder string) *Job {
	kind := KindSingle
	if IsPlaylistURL(url) {
		kind = KindPlaylist
	}

	now := time.Now()
	return &Job{
		ID:        uuid.New().String(),
		URL:       url,
		Kind:      kind,
		Status:    JobQueued,
		Folder:    folder,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkRunning marks the job as running
func (j *Job) MarkRunning() {
	j.Status = JobRunning
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkCompleted marks the job as completed
func (j *Job) MarkCompleted() {
	j.finish(JobCompleted)
}

// MarkCancelled marks the job as stopped by the user
func (j *Job) MarkCancelled() {
	j.finish(JobCancelled)
}

// MarkFailed marks the job as failed
func (j *Job) MarkFailed(err error) {
	if err != nil {
		j.ErrorMessage = err.Error()
	}
	j.finish(JobFailed)
}

func (j *Job) finish(status JobStatus) {
	j.Status = status
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// Record counts one item result into the job totals
func (j *Job) Record(result PipelineResult) {
	switch result.Outcome {
	case OutcomeCompleted:
		j.Completed++
	case OutcomeFailed:
		j.Failed++
	}
	j.UpdatedAt = time.Now()
}

// Settle picks the terminal status from the recorded results.
// A job with at least one completed item is completed; otherwise it failed.
func (j *Job) Settle(results []PipelineResult, runErr error) {
	for _, r := range results {
		if r.IsCancelled() {
			j.MarkCancelled()
			return
		}
	}
	if IsCancelled(runErr) {
		j.MarkCancelled()
		return
	}
	if runErr != nil {
		j.MarkFailed(runErr)
		return
	}
	if j.Completed == 0 && j.Failed > 0 {
		for _, r := range results {
			if r.Err != nil {
				j.MarkFailed(r.Err)
				return
			}
		}
	}
	j.MarkCompleted()
}

// IsTerminal checks if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed || j.Status == JobCancelled
}

// IsPending checks if the job is waiting in the queue
func (j *Job) IsPending() bool {
	return j.Status == JobQueued
}

// IsRunning checks if the job is currently running
func (j *Job) IsRunning() bool {
	return j.Status == JobRunning
}

// JobItem is the persisted result of one item of a job
type JobItem struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	JobID      string    `json:"job_id" gorm:"not null;index"`
	Index      int       `json:"index"`
	URL        string    `json:"url" gorm:"not null"`
	Title      string    `json:"title,omitempty"`
	Outcome    Outcome   `json:"outcome" gorm:"not null"`
	OutputPath string    `json:"output_path,omitempty"`
	PublishURL string    `json:"publish_url,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// NewJobItem converts a pipeline result into a JobItem
func NewJobItem(jobID string, result PipelineResult) *JobItem {
	index := result.Item.Index
	if index == 0 {
		index = 1
	}
	return &JobItem{
		JobID:      jobID,
		Index:      index,
		URL:        result.Item.URL,
		Title:      result.Item.Title,
		Outcome:    result.Outcome,
		OutputPath: result.OutputPath,
		Reason:     result.Reason(),
		CreatedAt:  time.Now(),
	}
}

// ValidateStatus checks if a job status is valid
func ValidateStatus(status JobStatus) bool {
	switch status {
	case JobQueued, JobRunning, JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}
