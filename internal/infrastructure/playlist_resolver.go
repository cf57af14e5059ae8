package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/ytget/ytdlp/v2"
	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

const videoURLTemplate = "https://www.youtube.com/watch?v=%s"

// ExtractPlaylistID returns the list= parameter of a playlist URL
func ExtractPlaylistID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid playlist URL %q: %w", rawURL, err)
	}
	id := u.Query().Get("list")
	if id == "" {
		return "", fmt.Errorf("no playlist ID in URL: %s", rawURL)
	}
	return id, nil
}

// LibraryPlaylistResolver lists playlist items with the ytdlp Go library,
// without spawning a process. Listing runs until done or until ctx ends.
type LibraryPlaylistResolver struct {
	listIDs func(ctx context.Context, playlistID string) ([]string, error)
	logger  *zap.Logger
}

// NewLibraryPlaylistResolver creates a resolver backed by github.com/ytget/ytdlp
func NewLibraryPlaylistResolver(logger *zap.Logger) *LibraryPlaylistResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibraryPlaylistResolver{listIDs: libraryVideoIDs, logger: logger}
}

func libraryVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.VideoID)
	}
	return ids, nil
}

// ResolvePlaylist returns watch URLs in playlist order
func (r *LibraryPlaylistResolver) ResolvePlaylist(ctx context.Context, playlistURL string) ([]string, error) {
	id, err := ExtractPlaylistID(playlistURL)
	if err != nil {
		return nil, err
	}

	ids, err := r.listIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	urls := make([]string, 0, len(ids))
	for _, videoID := range ids {
		if videoID == "" {
			continue
		}
		urls = append(urls, fmt.Sprintf(videoURLTemplate, videoID))
	}

	r.logger.Debug("Playlist listed", zap.String("playlist_id", id), zap.Int("items", len(urls)))
	return urls, nil
}

// CLIPlaylistResolver lists playlist items with "yt-dlp --flat-playlist -J"
type CLIPlaylistResolver struct {
	config *domain.SourceConfig
	logger *zap.Logger
}

// NewCLIPlaylistResolver creates a resolver backed by the yt-dlp binary
func NewCLIPlaylistResolver(config *domain.SourceConfig, logger *zap.Logger) *CLIPlaylistResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIPlaylistResolver{config: config, logger: logger}
}

type flatPlaylist struct {
	Entries []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"entries"`
}

// ResolvePlaylist returns entry URLs in playlist order
func (r *CLIPlaylistResolver) ResolvePlaylist(ctx context.Context, playlistURL string) ([]string, error) {
	if err := domain.ValidateURL(playlistURL); err != nil {
		return nil, err
	}

	args := []string{"--flat-playlist", "-J", "--no-warnings"}
	if r.config.CookieFile != "" && fileExists(r.config.CookieFile) {
		args = append(args, "--cookies", r.config.CookieFile)
	}
	args = append(args, playlistURL)

	r.logger.Debug("Running yt-dlp", zap.String("command", shellescape.QuoteCommand(append([]string{r.config.YTDLPBinary}, args...))))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.config.YTDLPBinary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ytdlpError(err, stderr.String())
	}

	return parseFlatPlaylist(stdout.Bytes())
}

func parseFlatPlaylist(data []byte) ([]string, error) {
	var pl flatPlaylist
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse playlist: %w", err)
	}

	urls := make([]string, 0, len(pl.Entries))
	for _, e := range pl.Entries {
		switch {
		case strings.HasPrefix(e.URL, "http"):
			urls = append(urls, e.URL)
		case e.ID != "":
			urls = append(urls, fmt.Sprintf(videoURLTemplate, e.ID))
		}
	}
	if len(pl.Entries) > 0 && len(urls) == 0 {
		return nil, errors.New("playlist entries carry no video IDs")
	}
	return urls, nil
}

// NewPlaylistResolver picks the backend named in config
func NewPlaylistResolver(config *domain.SourceConfig, logger *zap.Logger) PlaylistLister {
	if config.PlaylistBackend == domain.PlaylistBackendCLI {
		return NewCLIPlaylistResolver(config, logger)
	}
	return NewLibraryPlaylistResolver(logger)
}
