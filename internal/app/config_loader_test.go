package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
download:
  output_dir: /tmp/music
transcode:
  bitrate: 192k
source:
  playlist_backend: cli
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "/tmp/music", config.Download.OutputDir)
	assert.Equal(t, "192k", config.Transcode.Bitrate)
	assert.Equal(t, domain.PlaylistBackendCLI, config.Source.PlaylistBackend)
	// Untouched keys keep their defaults.
	assert.Equal(t, "ffmpeg", config.Transcode.FFmpegBinary)
	assert.Equal(t, 64*1024, config.Download.ChunkSize)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0644))

	t.Setenv("YTMP3_TRANSCODE_BITRATE", "256k")
	t.Setenv("YTMP3_SERVER_PORT", "9100")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "256k", config.Transcode.Bitrate)
	assert.Equal(t, 9100, config.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad backend", "source:\n  playlist_backend: scraper\n"},
		{"publish without bucket", "publish:\n  enabled: true\n"},
		{"zero chunk", "download:\n  chunk_size: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := domain.DefaultConfig()
	config.Download.OutputDir = "/srv/mp3"
	config.Transcode.Bitrate = "128k"

	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/mp3", loaded.Download.OutputDir)
	assert.Equal(t, "128k", loaded.Transcode.Bitrate)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "music"), expandPath("~/music"))
	assert.Equal(t, filepath.Join(home, ".ytmp3", "logs"), expandPath("$HOME/.ytmp3/logs"))
	assert.Equal(t, "", expandPath(""))
}
