package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
	"github.com/yourusername/ytmp3-go/pkg/logger"
)

var (
	// ErrQueueFull is returned by AddJob when the worker backlog is full
	ErrQueueFull = errors.New("queue is full")

	// ErrJobNotFound is returned for unknown job IDs
	ErrJobNotFound = errors.New("job not found")
)

// QueueManager owns the single background worker. Jobs run one at a time;
// controllers submit, cancel and watch progress without touching the pipeline.
type QueueManager struct {
	repo        domain.JobRepository
	downloadMgr *DownloadManager
	logs        *logger.LoggerAdapter
	token       *CancellationToken
	queue       chan *domain.Job

	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	workerWg sync.WaitGroup

	currentJob atomic.Value // string
	latest     atomic.Pointer[domain.Event]

	cancelMu  sync.Mutex
	cancelled map[string]struct{}

	subMu       sync.RWMutex
	subscribers map[chan domain.Event]struct{}
}

// NewQueueManager creates a new queue manager holding up to queueSize waiting jobs
func NewQueueManager(
	repo domain.JobRepository,
	downloadMgr *DownloadManager,
	queueSize int,
	logs *logger.LoggerAdapter,
) *QueueManager {
	if queueSize < 1 {
		queueSize = 1
	}
	if logs == nil {
		logs = logger.NewNopAdapter()
	}
	qm := &QueueManager{
		repo:        repo,
		downloadMgr: downloadMgr,
		logs:        logs,
		token:       NewCancellationToken(),
		queue:       make(chan *domain.Job, queueSize),
		cancelled:   make(map[string]struct{}),
		subscribers: make(map[chan domain.Event]struct{}),
	}
	qm.currentJob.Store("")
	return qm
}

// Start starts the worker
func (qm *QueueManager) Start(ctx context.Context) error {
	qm.mu.Lock()
	if qm.running {
		qm.mu.Unlock()
		return fmt.Errorf("queue manager already running")
	}
	qm.running = true
	qm.stopChan = make(chan struct{})
	stop := qm.stopChan
	qm.mu.Unlock()

	qm.logs.LogPipelineEvent("queue_started")

	qm.workerWg.Add(1)
	go qm.processQueue(ctx, stop)

	return nil
}

// Stop cancels the running job and waits for the worker to exit
func (qm *QueueManager) Stop() error {
	qm.mu.Lock()
	if !qm.running {
		qm.mu.Unlock()
		return fmt.Errorf("queue manager not running")
	}
	qm.running = false
	close(qm.stopChan)
	qm.mu.Unlock()

	qm.token.Request()
	qm.workerWg.Wait()

	qm.logs.LogPipelineEvent("queue_stopped")
	return nil
}

// IsRunning returns whether the worker is running
func (qm *QueueManager) IsRunning() bool {
	qm.mu.RLock()
	defer qm.mu.RUnlock()
	return qm.running
}

// AddJob validates url and queues a job writing into folder
func (qm *QueueManager) AddJob(url, folder string) (*domain.Job, error) {
	if err := domain.ValidateURL(url); err != nil {
		return nil, err
	}
	if folder == "" {
		return nil, fmt.Errorf("destination folder is required")
	}

	job := domain.NewJob(url, folder)
	if err := qm.repo.Create(job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	select {
	case qm.queue <- job:
	default:
		job.MarkFailed(ErrQueueFull)
		if err := qm.repo.Update(job); err != nil {
			qm.logs.LogError("Failed to update job status", zap.String("job_id", job.ID), zap.Error(err))
		}
		return nil, ErrQueueFull
	}

	qm.logs.LogPipelineEvent("job_added",
		zap.String("job_id", job.ID),
		zap.String("url", url),
		zap.String("kind", string(job.Kind)),
		zap.String("folder", folder))

	return job, nil
}

// GetJob retrieves a job by ID
func (qm *QueueManager) GetJob(id string) (*domain.Job, error) {
	job, err := qm.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// ListJobs lists jobs matching filters
func (qm *QueueManager) ListJobs(filters domain.JobFilters) ([]*domain.Job, error) {
	return qm.repo.FindAll(filters)
}

// JobItems returns the stored item results of a job
func (qm *QueueManager) JobItems(id string) ([]*domain.JobItem, error) {
	return qm.repo.FindItems(id)
}

// GetStats returns job statistics
func (qm *QueueManager) GetStats() (*domain.JobStats, error) {
	return qm.repo.GetStats()
}

// CancelJob stops a running job or drops a queued one
func (qm *QueueManager) CancelJob(id string) error {
	job, err := qm.GetJob(id)
	if err != nil {
		return err
	}
	if job.IsTerminal() {
		return fmt.Errorf("job already in terminal state: %s", job.Status)
	}

	if qm.CurrentJob() == id {
		qm.token.Request()
		qm.logs.LogPipelineEvent("job_cancel_requested", zap.String("job_id", id))
		return nil
	}

	qm.cancelMu.Lock()
	qm.cancelled[id] = struct{}{}
	qm.cancelMu.Unlock()

	job.MarkCancelled()
	if err := qm.repo.Update(job); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	qm.logs.LogPipelineEvent("job_cancelled", zap.String("job_id", id))
	return nil
}

// CancelCurrent requests a stop of whatever job is running. It reports
// whether a job was running.
func (qm *QueueManager) CancelCurrent() bool {
	id := qm.CurrentJob()
	if id == "" {
		return false
	}
	qm.token.Request()
	qm.logs.LogPipelineEvent("job_cancel_requested", zap.String("job_id", id))
	return true
}

// CurrentJob returns the ID of the running job, empty when idle
func (qm *QueueManager) CurrentJob() string {
	return qm.currentJob.Load().(string)
}

// Progress returns the most recent event, false before the first one
func (qm *QueueManager) Progress() (domain.Event, bool) {
	e := qm.latest.Load()
	if e == nil {
		return domain.Event{}, false
	}
	return *e, true
}

// Subscribe returns a channel receiving every event from now on and a
// function that unsubscribes. Progress events are dropped for a subscriber
// whose buffer is full; item_done and job_done are always delivered.
func (qm *QueueManager) Subscribe(buffer int) (<-chan domain.Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.Event, buffer)

	qm.subMu.Lock()
	qm.subscribers[ch] = struct{}{}
	qm.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			qm.subMu.Lock()
			delete(qm.subscribers, ch)
			qm.subMu.Unlock()
			close(ch)
		})
	}
}

func (qm *QueueManager) broadcast(e domain.Event) {
	qm.subMu.Lock()
	defer qm.subMu.Unlock()
	for ch := range qm.subscribers {
		select {
		case ch <- e:
		default:
			if e.Phase.Terminal() {
				makeRoom(ch, e)
			}
		}
	}
	qm.latest.Store(&e)
}

// makeRoom delivers e to a full channel by discarding buffered progress
// events, then the oldest terminal event if nothing else can go.
func makeRoom(ch chan domain.Event, e domain.Event) {
	var kept []domain.Event
drain:
	for {
		select {
		case old := <-ch:
			if old.Phase.Terminal() {
				kept = append(kept, old)
			}
		default:
			break drain
		}
	}

	kept = append(kept, e)
	if over := len(kept) - cap(ch); over > 0 {
		kept = kept[over:]
	}
	for _, k := range kept {
		select {
		case ch <- k:
		default:
		}
	}
}

func (qm *QueueManager) takeCancelled(id string) bool {
	qm.cancelMu.Lock()
	defer qm.cancelMu.Unlock()
	if _, ok := qm.cancelled[id]; ok {
		delete(qm.cancelled, id)
		return true
	}
	return false
}

// processQueue runs queued jobs one after another
func (qm *QueueManager) processQueue(ctx context.Context, stop <-chan struct{}) {
	defer qm.workerWg.Done()

	for {
		select {
		case <-ctx.Done():
			qm.logs.LogPipelineEvent("queue_processor_stopped", zap.String("reason", "context_cancelled"))
			return
		case <-stop:
			qm.logs.LogPipelineEvent("queue_processor_stopped", zap.String("reason", "stop_signal"))
			return
		case job := <-qm.queue:
			if qm.takeCancelled(job.ID) {
				continue
			}

			qm.token.Reset()
			qm.currentJob.Store(job.ID)

			// A stop issued between dequeue and Reset must not be lost.
			if qm.takeCancelled(job.ID) {
				qm.token.Request()
			}
			select {
			case <-stop:
				qm.token.Request()
			default:
			}

			qm.downloadMgr.ProcessJob(ctx, job, qm.token, qm.broadcast)
			qm.currentJob.Store("")
		}
	}
}
