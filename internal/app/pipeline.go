package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// Pipeline downloads one item and converts it to MP3.
//
// Phases run in order: resolve, download, transcode, cleanup. The token is
// checked before each phase, on every download chunk and on every transcode
// step. The MP3 is written to a part file and renamed once complete, so a
// cancelled or failed run leaves nothing behind and never touches files it
// did not create.
type Pipeline struct {
	source     domain.MediaSource
	transcoder domain.Transcoder
	bitrate    string
	logger     *zap.Logger
}

// NewPipeline creates a pipeline targeting bitrate (e.g. "320k")
func NewPipeline(source domain.MediaSource, transcoder domain.Transcoder, bitrate string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		source:     source,
		transcoder: transcoder,
		bitrate:    bitrate,
		logger:     logger,
	}
}

// Run processes item into folder. Events go to sink, which may be nil.
func (p *Pipeline) Run(ctx context.Context, item *domain.DownloadItem, folder string, token *CancellationToken, sink domain.EventSink) domain.PipelineResult {
	r := &run{
		Pipeline: p,
		item:     item,
		folder:   folder,
		token:    token,
		sink:     sink,
		logger:   p.logger.With(zap.String("url", item.URL)),
	}
	return r.execute(ctx)
}

// run holds the state of one Pipeline.Run call
type run struct {
	*Pipeline
	item   *domain.DownloadItem
	folder string
	token  *CancellationToken
	sink   domain.EventSink
	logger *zap.Logger

	downloaded string
	partial    string
	output     string
}

func (r *run) execute(ctx context.Context) domain.PipelineResult {
	if err := r.token.Check(); err != nil {
		return r.cancelled()
	}

	// Resolve
	r.emit(domain.PhaseResolving, domain.IdleProgress())
	media, err := r.source.Resolve(ctx, r.item.URL)
	if err != nil {
		return r.fail(domain.ErrResolution, err)
	}
	if media.Stream == nil {
		return r.fail(domain.ErrResolution, domain.ErrNoAudioStream)
	}
	r.item.Title = media.Title
	r.logger.Info("Resolved media", zap.String("title", media.Title), zap.Int64("size", media.Stream.Size()))

	// Download
	if err := r.token.Check(); err != nil {
		return r.cancelled()
	}
	if err := os.MkdirAll(r.folder, 0755); err != nil {
		return r.fail(domain.ErrTransfer, fmt.Errorf("failed to create output folder: %w", err))
	}

	r.emit(domain.PhaseDownloading, domain.IdleProgress())
	tracker := NewProgressTracker()
	path, err := media.Stream.Download(ctx, r.folder, func(done, total int64) error {
		if err := r.token.Check(); err != nil {
			return err
		}
		if total <= 0 {
			total = media.Stream.Size()
		}
		state := tracker.Observe(domain.ProgressSample{
			BytesTransferred: done,
			BytesTotal:       total,
			Timestamp:        time.Now(),
		})
		r.emit(domain.PhaseDownloading, state)
		return nil
	})
	r.downloaded = path
	if err != nil {
		return r.fail(domain.ErrTransfer, err)
	}

	// Transcode
	if err := r.token.Check(); err != nil {
		return r.cancelled()
	}
	r.partial = availablePath(partialPath(r.downloaded))
	r.emit(domain.PhaseTranscoding, domain.ProgressState{ETASeconds: domain.ETAUnknown})

	err = r.transcode(ctx, r.bitrate)
	if errors.Is(err, domain.ErrBitrateRejected) && r.bitrate != "" {
		r.logger.Warn("Bitrate rejected, falling back to transcoder default",
			zap.String("bitrate", r.bitrate), zap.Error(err))
		r.removePartial()
		err = r.transcode(ctx, "")
	}
	if err != nil {
		return r.fail(domain.ErrTranscode, err)
	}

	// Cleanup
	downloaded := r.downloaded
	r.emit(domain.PhaseCleanup, domain.ProgressState{Percentage: 100, ETASeconds: domain.ETAUnknown})
	if err := os.Remove(r.downloaded); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("Failed to remove downloaded file", zap.String("path", r.downloaded), zap.Error(err))
	}
	r.downloaded = ""

	if err := r.token.Check(); err != nil {
		return r.cancelled()
	}

	output := availablePath(outputPath(downloaded))
	if err := os.Rename(r.partial, output); err != nil {
		return r.fail(domain.ErrTranscode, fmt.Errorf("failed to finalise output: %w", err))
	}
	r.partial = ""
	r.output = output

	r.logger.Info("Item completed", zap.String("title", r.item.Title), zap.String("output", r.output))
	return r.finish(domain.CompletedResult(r.item, r.output))
}

func (r *run) transcode(ctx context.Context, bitrate string) error {
	return r.transcoder.Transcode(ctx, r.downloaded, r.partial, bitrate, func(fraction float64) error {
		if err := r.token.Check(); err != nil {
			return err
		}
		r.emit(domain.PhaseTranscoding, domain.ProgressState{
			Percentage: clampPercent(fraction * 100),
			ETASeconds: domain.ETAUnknown,
		})
		return nil
	})
}

// fail classifies err. A stop request observed anywhere below wins over kind.
func (r *run) fail(kind, err error) domain.PipelineResult {
	if domain.IsCancelled(err) || errors.Is(err, context.Canceled) || r.token.Requested() {
		return r.cancelled()
	}

	r.removeArtifacts()
	itemErr := domain.NewItemError(kind, r.item, err)
	r.logger.Error("Item failed", zap.Error(itemErr))
	return r.finish(domain.FailedResult(r.item, itemErr))
}

func (r *run) cancelled() domain.PipelineResult {
	r.removeArtifacts()
	r.logger.Info("Item cancelled", zap.String("title", r.item.Title))
	return r.finish(domain.CancelledResult(r.item))
}

func (r *run) finish(result domain.PipelineResult) domain.PipelineResult {
	if r.sink != nil {
		e := domain.NewItemEvent(domain.PhaseItemDone, r.item, domain.IdleProgress())
		if result.IsCompleted() {
			e.Progress = domain.ProgressState{Percentage: 100, ETASeconds: 0}
		}
		e.Result = &result
		r.sink(e)
	}
	return result
}

func (r *run) removeArtifacts() {
	if r.downloaded != "" {
		r.remove(r.downloaded)
		r.downloaded = ""
	}
	r.removePartial()
}

func (r *run) removePartial() {
	if r.partial != "" {
		r.remove(r.partial)
	}
}

func (r *run) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("Failed to remove partial file", zap.String("path", path), zap.Error(err))
	}
}

func (r *run) emit(phase domain.Phase, state domain.ProgressState) {
	if r.sink != nil {
		r.sink(domain.NewItemEvent(phase, r.item, state))
	}
}

// partialPath names the in-progress MP3 next to the download
func partialPath(downloaded string) string {
	return strings.TrimSuffix(downloaded, filepath.Ext(downloaded)) + ".part.mp3"
}

// availablePath returns path, or "name (n).ext" for the first n not taken
func availablePath(path string) string {
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	if strings.HasSuffix(path, ".part.mp3") {
		ext = ".part.mp3"
	}
	base := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// outputPath swaps the extension of the downloaded file for .mp3
func outputPath(downloaded string) string {
	base := strings.TrimSuffix(downloaded, filepath.Ext(downloaded))
	out := base + ".mp3"
	if out == downloaded {
		out = base + ".converted.mp3"
	}
	return out
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
