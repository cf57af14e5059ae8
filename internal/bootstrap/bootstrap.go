// Package bootstrap wires the pipeline, worker and their infrastructure from
// a Config. The server, the CLI and the desktop window all start here.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/app"
	"github.com/yourusername/ytmp3-go/internal/domain"
	"github.com/yourusername/ytmp3-go/internal/infrastructure"
	"github.com/yourusername/ytmp3-go/pkg/logger"
)

// Options adjusts wiring per frontend
type Options struct {
	// Logger replaces the logger built from config.Logging
	Logger *zap.Logger
	// FileLogs enables the categorised JSON logs under config.Logging.LogsDir
	FileLogs bool
}

// Services holds the wired components
type Services struct {
	Config    *domain.Config
	Logs      *logger.LoggerAdapter
	Repo      *infrastructure.SQLiteJobRepository
	Pipeline  *app.Pipeline
	Downloads *app.DownloadManager
	Queue     *app.QueueManager

	multi *logger.MultiLogger
}

// New builds every component. The queue is returned stopped.
func New(config *domain.Config, opts Options) (*Services, error) {
	log := opts.Logger
	if log == nil {
		var err error
		log, err = logger.New(logger.Config{
			Level:      config.Logging.Level,
			Format:     config.Logging.Format,
			OutputPath: config.Logging.OutputPath,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	s := &Services{Config: config}

	if opts.FileLogs && config.Logging.LogsDir != "" {
		multi, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
			Level:   config.Logging.Level,
			LogsDir: config.Logging.LogsDir,
		})
		if err != nil {
			return nil, err
		}
		s.multi = multi
	}
	s.Logs = logger.NewLoggerAdapter(log, s.multi)

	repo, err := infrastructure.NewSQLiteJobRepository("")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}
	s.Repo = repo

	playlists := infrastructure.NewPlaylistResolver(&config.Source, log)
	source := infrastructure.NewYTDLPSource(&config.Source, config.Download.ChunkSize, playlists, nil, log)
	transcoder := infrastructure.NewFFmpegTranscoder(&config.Transcode, log)

	var notifier app.Notifier
	if config.Notification.Enabled {
		notifier = infrastructure.NewNotificationService(&config.Notification, log)
	}

	var publisher domain.Publisher
	if config.Publish.Enabled {
		p, err := infrastructure.NewS3Publisher(&config.Publish, log)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to initialize publisher: %w", err)
		}
		publisher = p
	}

	s.Pipeline = app.NewPipeline(source, transcoder, config.Transcode.Bitrate, log)
	s.Downloads = app.NewDownloadManager(repo, s.Pipeline, source, notifier, publisher, s.Logs)
	s.Queue = app.NewQueueManager(repo, s.Downloads, config.Download.QueueSize, s.Logs)

	log.Debug("Services wired",
		zap.String("ytdlp", config.Source.YTDLPBinary),
		zap.String("ffmpeg", config.Transcode.FFmpegBinary),
		zap.String("bitrate", config.Transcode.Bitrate),
		zap.String("playlist_backend", config.Source.PlaylistBackend),
		zap.Bool("publish", config.Publish.Enabled),
		zap.Bool("notify", config.Notification.Enabled))

	return s, nil
}

// LogsDir returns the directory of the categorised logs, empty when disabled
func (s *Services) LogsDir() string {
	if s.multi == nil {
		return ""
	}
	return s.multi.GetLogsDir()
}

// Close releases the repository and flushes logs. The queue must be stopped first.
func (s *Services) Close() error {
	var firstErr error
	if s.Repo != nil {
		if err := s.Repo.Close(); err != nil {
			firstErr = err
		}
	}
	if s.Logs != nil {
		_ = s.Logs.Sync()
	}
	if s.multi != nil {
		if err := s.multi.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
