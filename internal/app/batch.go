package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// ItemRunner runs the pipeline for a single item
type ItemRunner interface {
	Run(ctx context.Context, item *domain.DownloadItem, folder string, token *CancellationToken, sink domain.EventSink) domain.PipelineResult
}

// PlaylistResolver expands a playlist URL into item URLs
type PlaylistResolver interface {
	ResolvePlaylist(ctx context.Context, url string) ([]string, error)
}

// BatchRunner runs a playlist one item at a time
type BatchRunner struct {
	resolver PlaylistResolver
	runner   ItemRunner
	logger   *zap.Logger
}

// NewBatchRunner creates a batch runner
func NewBatchRunner(resolver PlaylistResolver, runner ItemRunner, logger *zap.Logger) *BatchRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner{
		resolver: resolver,
		runner:   runner,
		logger:   logger,
	}
}

// Run resolves playlistURL and runs every item in source order.
//
// A failed item is recorded and the batch moves on. The first cancelled item
// ends the batch; the results gathered so far are returned, the cancelled
// one included. The error is non-nil only when the playlist itself could
// not be resolved.
func (b *BatchRunner) Run(ctx context.Context, playlistURL, folder string, token *CancellationToken, sink domain.EventSink) ([]domain.PipelineResult, error) {
	if err := token.Check(); err != nil {
		return nil, err
	}

	urls, err := b.resolver.ResolvePlaylist(ctx, playlistURL)
	if err != nil {
		if token.Requested() || domain.IsCancelled(err) {
			return nil, domain.ErrCancelled
		}
		return nil, fmt.Errorf("%w for playlist %s: %w", domain.ErrResolution, playlistURL, err)
	}

	b.logger.Info("Playlist resolved", zap.String("url", playlistURL), zap.Int("items", len(urls)))

	results := make([]domain.PipelineResult, 0, len(urls))
	for i, url := range urls {
		item := domain.NewBatchItem(url, i+1, len(urls))
		result := b.runner.Run(ctx, item, folder, token, sink)
		results = append(results, result)

		if result.IsCancelled() {
			b.logger.Info("Batch stopped", zap.Int("processed", len(results)), zap.Int("total", len(urls)))
			break
		}
		if !result.IsCompleted() {
			b.logger.Warn("Batch item failed, continuing",
				zap.String("position", item.Position()),
				zap.String("reason", result.Reason()))
		}
	}

	return results, nil
}
