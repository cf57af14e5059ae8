package domain

// JobFilters holds filters for listing jobs
type JobFilters struct {
	Status JobStatus
	Kind   JobKind
	Limit  int
	Offset int
}

// JobStats holds aggregate job counts
type JobStats struct {
	Total     int64 `json:"total"`
	Queued    int64 `json:"queued"`
	Running   int64 `json:"running"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
}

// JobRepository stores jobs and their item results
type JobRepository interface {
	Create(job *Job) error
	Update(job *Job) error
	FindByID(id string) (*Job, error)
	FindAll(filters JobFilters) ([]*Job, error)
	AddItem(item *JobItem) error
	FindItems(jobID string) ([]*JobItem, error)
	GetStats() (*JobStats, error)
	Close() error
}
