package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
	"github.com/yourusername/ytmp3-go/pkg/logger"
)

// Notifier reports job lifecycle to the desktop
type Notifier interface {
	NotifyJobStarted(job *domain.Job)
	NotifyItemFinished(result domain.PipelineResult)
	NotifyJobFinished(job *domain.Job)
}

// DownloadManager runs one job to completion: a single video through the
// pipeline or a playlist through the batch runner. Item results are stored
// as they finish.
type DownloadManager struct {
	repo      domain.JobRepository
	pipeline  ItemRunner
	batch     *BatchRunner
	notifier  Notifier
	publisher domain.Publisher
	logs      *logger.LoggerAdapter
}

// NewDownloadManager creates a new download manager. notifier and publisher may be nil.
func NewDownloadManager(
	repo domain.JobRepository,
	pipeline ItemRunner,
	resolver PlaylistResolver,
	notifier Notifier,
	publisher domain.Publisher,
	logs *logger.LoggerAdapter,
) *DownloadManager {
	if logs == nil {
		logs = logger.NewNopAdapter()
	}
	return &DownloadManager{
		repo:      repo,
		pipeline:  pipeline,
		batch:     NewBatchRunner(resolver, pipeline, logs.Logger()),
		notifier:  notifier,
		publisher: publisher,
		logs:      logs,
	}
}

// ProcessJob runs job and leaves it in a terminal state. Events are tagged
// with the job ID before reaching sink.
func (dm *DownloadManager) ProcessJob(ctx context.Context, job *domain.Job, token *CancellationToken, sink domain.EventSink) []domain.PipelineResult {
	log := dm.logs.Logger().With(zap.String("job_id", job.ID))

	job.MarkRunning()
	if err := dm.repo.Update(job); err != nil {
		log.Error("Failed to update job status", zap.Error(err))
	}
	dm.logs.LogPipelineEvent("job_started",
		zap.String("job_id", job.ID),
		zap.String("url", job.URL),
		zap.String("kind", string(job.Kind)))
	if dm.notifier != nil {
		dm.notifier.NotifyJobStarted(job)
	}

	tagged := func(e domain.Event) {
		e.JobID = job.ID
		if e.Phase == domain.PhaseItemDone && e.Result != nil {
			dm.recordItem(ctx, job, e.Result)
		}
		if sink != nil {
			sink(e)
		}
	}

	var (
		results []domain.PipelineResult
		runErr  error
	)
	switch job.Kind {
	case domain.KindPlaylist:
		results, runErr = dm.batch.Run(ctx, job.URL, job.Folder, token, tagged)
	default:
		job.Total = 1
		item := domain.NewDownloadItem(job.URL)
		results = []domain.PipelineResult{dm.pipeline.Run(ctx, item, job.Folder, token, tagged)}
	}

	job.Settle(results, runErr)
	if err := dm.repo.Update(job); err != nil {
		log.Error("Failed to update job status", zap.Error(err))
	}

	fields := []zap.Field{
		zap.String("job_id", job.ID),
		zap.String("status", string(job.Status)),
		zap.Int("completed", job.Completed),
		zap.Int("failed", job.Failed),
		zap.Int("total", job.Total),
	}
	if runErr != nil && !domain.IsCancelled(runErr) {
		dm.logs.LogError("Job failed", append(fields, zap.Error(runErr))...)
	} else {
		dm.logs.LogPipelineEvent("job_finished", fields...)
	}

	if dm.notifier != nil {
		dm.notifier.NotifyJobFinished(job)
	}

	if sink != nil {
		sink(domain.Event{
			JobID:     job.ID,
			Phase:     domain.PhaseJobDone,
			URL:       job.URL,
			Total:     job.Total,
			Progress:  domain.IdleProgress(),
			Message:   jobSummary(job),
			Timestamp: time.Now(),
		})
	}

	return results
}

// recordItem counts, publishes and stores one finished item
func (dm *DownloadManager) recordItem(ctx context.Context, job *domain.Job, result *domain.PipelineResult) {
	if result.Item.Total > 0 {
		job.Total = result.Item.Total
	}
	if job.Kind == domain.KindSingle && result.Item.Title != "" {
		job.Title = result.Item.Title
	}
	job.Record(*result)

	item := domain.NewJobItem(job.ID, *result)

	switch {
	case result.IsCompleted():
		if dm.publisher != nil {
			url, err := dm.publisher.Publish(ctx, result.OutputPath)
			if err != nil {
				dm.logs.LogError("Failed to publish output",
					zap.String("job_id", job.ID),
					zap.String("path", result.OutputPath),
					zap.Error(err))
			} else {
				item.PublishURL = url
			}
		}
		dm.logs.LogPipelineEvent("item_completed",
			zap.String("job_id", job.ID),
			zap.String("title", result.Item.Title),
			zap.String("output", result.OutputPath))
	case result.IsCancelled():
		dm.logs.LogPipelineEvent("item_cancelled",
			zap.String("job_id", job.ID),
			zap.String("url", result.Item.URL))
	default:
		dm.logs.LogError("Item failed",
			zap.String("job_id", job.ID),
			zap.String("url", result.Item.URL),
			zap.String("title", result.Item.Title),
			zap.Error(result.Err))
	}

	if dm.notifier != nil && !result.IsCancelled() {
		dm.notifier.NotifyItemFinished(*result)
	}

	if err := dm.repo.AddItem(item); err != nil {
		dm.logs.LogError("Failed to store item result", zap.String("job_id", job.ID), zap.Error(err))
	}
	if err := dm.repo.Update(job); err != nil {
		dm.logs.LogError("Failed to update job status", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func jobSummary(job *domain.Job) string {
	switch job.Status {
	case domain.JobCancelled:
		return fmt.Sprintf("Stopped by user (%d of %d completed)", job.Completed, job.Total)
	case domain.JobFailed:
		if job.ErrorMessage != "" {
			return "Failed: " + job.ErrorMessage
		}
		return "Failed"
	default:
		if job.Failed > 0 {
			return fmt.Sprintf("Finished: %d completed, %d failed", job.Completed, job.Failed)
		}
		return fmt.Sprintf("All downloads finished (%d completed)", job.Completed)
	}
}
