package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/alessio/shellescape"
	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// PlaylistLister expands a playlist URL into video URLs
type PlaylistLister interface {
	ResolvePlaylist(ctx context.Context, url string) ([]string, error)
}

// ytdlpInfo is the subset of "yt-dlp -J" output used here
type ytdlpInfo struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	URL            string            `json:"url"`
	Ext            string            `json:"ext"`
	ACodec         string            `json:"acodec"`
	VCodec         string            `json:"vcodec"`
	Filesize       int64             `json:"filesize"`
	FilesizeApprox int64             `json:"filesize_approx"`
	HTTPHeaders    map[string]string `json:"http_headers"`
}

// YTDLPSource implements domain.MediaSource. yt-dlp selects the audio
// stream; the bytes are fetched over HTTP so every chunk can be reported
// and cancelled.
type YTDLPSource struct {
	config    *domain.SourceConfig
	chunkSize int
	playlists PlaylistLister
	client    *http.Client
	logger    *zap.Logger
}

// NewYTDLPSource creates a new yt-dlp backed source
func NewYTDLPSource(config *domain.SourceConfig, chunkSize int, playlists PlaylistLister, client *http.Client, logger *zap.Logger) *YTDLPSource {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	return &YTDLPSource{
		config:    config,
		chunkSize: chunkSize,
		playlists: playlists,
		client:    client,
		logger:    logger,
	}
}

// Resolve asks yt-dlp for the title and the direct URL of the best audio stream
func (s *YTDLPSource) Resolve(ctx context.Context, url string) (*domain.ResolvedMedia, error) {
	if err := domain.ValidateURL(url); err != nil {
		return nil, err
	}

	format := s.config.AudioFormat
	if format == "" {
		format = "bestaudio"
	}

	args := []string{"-J", "--no-playlist", "--no-warnings", "-f", format}
	if s.config.CookieFile != "" && fileExists(s.config.CookieFile) {
		args = append(args, "--cookies", s.config.CookieFile)
	}
	args = append(args, url)

	out, err := s.runYTDLP(ctx, args)
	if err != nil {
		return nil, err
	}

	return s.mediaFromJSON(out)
}

func (s *YTDLPSource) mediaFromJSON(data []byte) (*domain.ResolvedMedia, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	if info.URL == "" || info.ACodec == "none" {
		return nil, domain.ErrNoAudioStream
	}

	size := info.Filesize
	if size <= 0 {
		size = info.FilesizeApprox
	}

	ext := info.Ext
	if ext == "" {
		ext = "m4a"
	}

	title := info.Title
	if title == "" {
		title = info.ID
	}

	return &domain.ResolvedMedia{
		Title: title,
		Stream: &HTTPAudioStream{
			URL:       info.URL,
			Headers:   info.HTTPHeaders,
			Filename:  SanitizeFilename(title) + "." + ext,
			ChunkSize: s.chunkSize,
			size:      size,
			client:    s.client,
		},
	}, nil
}

// ResolvePlaylist delegates to the configured playlist backend
func (s *YTDLPSource) ResolvePlaylist(ctx context.Context, url string) ([]string, error) {
	if s.playlists == nil {
		return nil, errors.New("no playlist backend configured")
	}
	return s.playlists.ResolvePlaylist(ctx, url)
}

func (s *YTDLPSource) runYTDLP(ctx context.Context, args []string) ([]byte, error) {
	s.logger.Debug("Running yt-dlp", zap.String("command", shellescape.QuoteCommand(append([]string{s.config.YTDLPBinary}, args...))))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.config.YTDLPBinary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ytdlpError(err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// ytdlpError turns a yt-dlp failure into a readable error
func ytdlpError(err error, stderr string) error {
	msg := strings.TrimSpace(stderr)
	if i := strings.LastIndex(msg, "ERROR:"); i >= 0 {
		msg = strings.TrimSpace(msg[i+len("ERROR:"):])
	}
	if strings.Contains(msg, "Requested format is not available") {
		return fmt.Errorf("%w: %s", domain.ErrNoAudioStream, msg)
	}
	if msg == "" {
		return fmt.Errorf("yt-dlp failed: %w", err)
	}
	return fmt.Errorf("yt-dlp failed: %s", msg)
}

// HTTPAudioStream downloads a direct media URL in fixed-size chunks
type HTTPAudioStream struct {
	URL       string
	Headers   map[string]string
	Filename  string
	ChunkSize int

	size   int64
	client *http.Client
}

// Size returns the size reported by yt-dlp, 0 if unknown
func (s *HTTPAudioStream) Size() int64 {
	return s.size
}

// Download writes the stream to folder/Filename, calling onProgress after every chunk
func (s *HTTPAudioStream) Download(ctx context.Context, folder string, onProgress domain.ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	client := s.client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch audio stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status fetching audio stream: %s", resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = s.size
	}

	file, path, err := createUnique(folder, s.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	written, err := copyChunks(file, resp.Body, s.ChunkSize, total, onProgress)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err != nil {
		return path, err
	}

	if total > 0 && written < total {
		return path, fmt.Errorf("stream ended early: %d of %d bytes", written, total)
	}
	return path, nil
}

// copyChunks copies src to dst chunkSize bytes at a time
func copyChunks(dst io.Writer, src io.Reader, chunkSize int, total int64, onProgress domain.ProgressFunc) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	buf := make([]byte, chunkSize)

	var written int64
	for {
		n, readErr := io.ReadFull(src, buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("failed to write file: %w", err)
			}
			written += int64(n)
			if onProgress != nil {
				if err := onProgress(written, total); err != nil {
					return written, err
				}
			}
		}

		switch {
		case readErr == nil:
			continue
		case errors.Is(readErr, io.EOF), errors.Is(readErr, io.ErrUnexpectedEOF):
			return written, nil
		default:
			return written, fmt.Errorf("failed to read audio stream: %w", readErr)
		}
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
