package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// NotificationService sends desktop notifications
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %s with title %s`, appleScriptString(message), appleScriptString(title))
		err = n.run("osascript", "-e", script)
	case "notify-send":
		err = n.run("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyJobStarted sends notification when a job starts
func (n *NotificationService) NotifyJobStarted(job *domain.Job) {
	title := "Download Started"
	if job.Kind == domain.KindPlaylist {
		title = "Playlist Started"
	}
	n.Send(title, truncateString(job.URL, 60))
}

// NotifyItemFinished sends notification when an item completes or fails
func (n *NotificationService) NotifyItemFinished(result domain.PipelineResult) {
	label := truncateString(result.Item.Label(), 60)
	if pos := result.Item.Position(); pos != "" {
		label = pos + " " + label
	}

	if result.IsCompleted() {
		n.Send("MP3 Ready", label)
		return
	}
	n.Send("Download Failed", label)
}

// NotifyJobFinished sends notification when a job reaches a terminal state
func (n *NotificationService) NotifyJobFinished(job *domain.Job) {
	if job.Kind != domain.KindPlaylist {
		return
	}
	switch job.Status {
	case domain.JobCancelled:
		n.Send("Playlist Stopped", fmt.Sprintf("%d of %d completed", job.Completed, job.Total))
	case domain.JobFailed:
		n.Send("Playlist Failed", truncateString(job.ErrorMessage, 60))
	default:
		n.Send("Playlist Finished", fmt.Sprintf("%d completed, %d failed", job.Completed, job.Failed))
	}
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
