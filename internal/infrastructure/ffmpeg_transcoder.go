package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

const (
	progressTimePrefix = "out_time_us="
	progressEndLine    = "progress=end"
	stderrTailLimit    = 4096
)

// mp3Bitrates are the bitrates an MPEG-1 Layer III encoder accepts, in kbit/s
var mp3Bitrates = map[int]struct{}{
	32: {}, 40: {}, 48: {}, 56: {}, 64: {}, 80: {}, 96: {}, 112: {},
	128: {}, 160: {}, 192: {}, 224: {}, 256: {}, 320: {},
}

// FFmpegTranscoder implements domain.Transcoder with the ffmpeg binary.
// Progress comes from "-progress pipe:1" and the input duration from ffprobe.
type FFmpegTranscoder struct {
	config *domain.TranscodeConfig
	logger *zap.Logger
}

// NewFFmpegTranscoder creates a new ffmpeg transcoder
func NewFFmpegTranscoder(config *domain.TranscodeConfig, logger *zap.Logger) *FFmpegTranscoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegTranscoder{config: config, logger: logger}
}

// ValidateBitrate checks that bitrate (e.g. "320k") is a legal MP3 bitrate
func ValidateBitrate(bitrate string) error {
	kbps, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(bitrate), "k"))
	if err != nil {
		return fmt.Errorf("%w: malformed bitrate %q", domain.ErrBitrateRejected, bitrate)
	}
	if _, ok := mp3Bitrates[kbps]; !ok {
		return fmt.Errorf("%w: %dk is not a valid MP3 bitrate", domain.ErrBitrateRejected, kbps)
	}
	return nil
}

// Transcode converts inputPath to an MP3 at outputPath
func (t *FFmpegTranscoder) Transcode(ctx context.Context, inputPath, outputPath, bitrate string, onStep domain.StepFunc) error {
	if bitrate != "" {
		if err := ValidateBitrate(bitrate); err != nil {
			return err
		}
	}

	duration, err := t.probeDuration(ctx, inputPath)
	if err != nil {
		t.logger.Debug("Duration unknown, progress will not advance", zap.String("input", inputPath), zap.Error(err))
	}

	args := t.buildArgs(inputPath, outputPath, bitrate)
	t.logger.Debug("Running ffmpeg", zap.String("command", shellescape.QuoteCommand(append([]string{t.config.FFmpegBinary}, args...))))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.config.FFmpegBinary, args...)
	stderr := &tailBuffer{limit: stderrTailLimit}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open ffmpeg progress pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	stepErr := readProgress(stdout, duration, onStep)
	if stepErr != nil {
		cancel()
		// Drain so ffmpeg is not blocked on a full pipe while it exits.
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()

	switch {
	case stepErr != nil:
		return stepErr
	case ctx.Err() != nil:
		return ctx.Err()
	case waitErr != nil:
		return classifyFFmpegError(waitErr, stderr.String())
	}
	return nil
}

func (t *FFmpegTranscoder) buildArgs(inputPath, outputPath, bitrate string) []string {
	codec := t.config.Codec
	if codec == "" {
		codec = "libmp3lame"
	}

	args := []string{
		"-y", "-hide_banner", "-nostats",
		"-loglevel", "error",
		"-i", inputPath,
		"-vn",
		"-c:a", codec,
	}
	if bitrate != "" {
		args = append(args, "-b:a", bitrate)
	}
	return append(args, "-progress", "pipe:1", outputPath)
}

// probeDuration returns the input duration in seconds
func (t *FFmpegTranscoder) probeDuration(ctx context.Context, inputPath string) (float64, error) {
	if t.config.FFprobeBinary == "" {
		return 0, errors.New("ffprobe not configured")
	}

	out, err := exec.CommandContext(ctx, t.config.FFprobeBinary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		inputPath,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	return parseDuration(string(out))
}

func parseDuration(s string) (float64, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration %v", d)
	}
	return d, nil
}

// readProgress feeds out_time_us lines to onStep until EOF or onStep fails
func readProgress(r io.Reader, duration float64, onStep domain.StepFunc) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		var fraction float64
		switch {
		case strings.HasPrefix(line, progressTimePrefix):
			us, err := strconv.ParseInt(strings.TrimPrefix(line, progressTimePrefix), 10, 64)
			if err != nil || us < 0 {
				continue
			}
			if duration > 0 {
				fraction = float64(us) / 1e6 / duration
				if fraction > 1 {
					fraction = 1
				}
			}
		case line == progressEndLine:
			fraction = 1
		default:
			continue
		}

		if err := onStep(fraction); err != nil {
			return err
		}
	}
	return nil
}

// classifyFFmpegError maps an ffmpeg failure to ErrBitrateRejected when the
// encoder refused the bitrate
func classifyFFmpegError(err error, stderr string) error {
	msg := strings.TrimSpace(stderr)
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "bitrate") || strings.Contains(lower, "bit rate") {
		if strings.Contains(lower, "invalid") || strings.Contains(lower, "not supported") || strings.Contains(lower, "unsupported") {
			return fmt.Errorf("%w: %s", domain.ErrBitrateRejected, lastLine(msg))
		}
	}
	if msg == "" {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(msg))
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.buf.Write(p)
	if over := b.buf.Len() - b.limit; over > 0 {
		b.buf.Next(over)
	}
	return n, nil
}

func (b *tailBuffer) String() string {
	return b.buf.String()
}
