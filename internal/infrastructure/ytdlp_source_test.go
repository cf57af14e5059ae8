package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

func newTestSource(binary string) *YTDLPSource {
	config := &domain.SourceConfig{YTDLPBinary: binary, AudioFormat: "bestaudio"}
	return NewYTDLPSource(config, 4, nil, nil, nil)
}

func TestYTDLPSource_MediaFromJSON(t *testing.T) {
	src := newTestSource("yt-dlp")

	media, err := src.mediaFromJSON([]byte(`{
		"id": "abc",
		"title": "AC/DC: Back in Black",
		"url": "https://media.example/audio",
		"ext": "webm",
		"acodec": "opus",
		"vcodec": "none",
		"filesize_approx": 1234,
		"http_headers": {"User-Agent": "test"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "AC/DC: Back in Black", media.Title)
	assert.Equal(t, int64(1234), media.Stream.Size())

	stream, ok := media.Stream.(*HTTPAudioStream)
	require.True(t, ok)
	assert.Equal(t, "AC_DC_ Back in Black.webm", stream.Filename)
	assert.Equal(t, "test", stream.Headers["User-Agent"])
}

func TestYTDLPSource_MediaFromJSON_NoAudio(t *testing.T) {
	src := newTestSource("yt-dlp")

	_, err := src.mediaFromJSON([]byte(`{"title": "x", "url": "https://m/v", "acodec": "none"}`))
	assert.ErrorIs(t, err, domain.ErrNoAudioStream)

	_, err = src.mediaFromJSON([]byte(`{"title": "x"}`))
	assert.ErrorIs(t, err, domain.ErrNoAudioStream)

	_, err = src.mediaFromJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestYTDLPError(t *testing.T) {
	err := ytdlpError(errors.New("exit status 1"), "WARNING: x\nERROR: [youtube] abc: Requested format is not available")
	assert.ErrorIs(t, err, domain.ErrNoAudioStream)

	err = ytdlpError(errors.New("exit status 1"), "ERROR: [youtube] abc: Video unavailable")
	assert.EqualError(t, err, "yt-dlp failed: [youtube] abc: Video unavailable")
}

func TestYTDLPSource_Resolve(t *testing.T) {
	json := `{"id":"abc","title":"Song","url":"https://media.example/a","ext":"m4a","acodec":"mp4a","filesize":10}`
	binary := writeScript(t, "yt-dlp", fmt.Sprintf("echo '%s'\n", json))

	media, err := newTestSource(binary).Resolve(context.Background(), "https://www.youtube.com/watch?v=abc")
	require.NoError(t, err)
	assert.Equal(t, "Song", media.Title)
	assert.Equal(t, int64(10), media.Stream.Size())
}

func TestYTDLPSource_ResolveFailure(t *testing.T) {
	binary := writeScript(t, "yt-dlp", "echo 'ERROR: Unsupported URL: https://example.com' >&2\nexit 1\n")

	_, err := newTestSource(binary).Resolve(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported URL")
}

func TestYTDLPSource_ResolveInvalidURL(t *testing.T) {
	_, err := newTestSource("yt-dlp").Resolve(context.Background(), "ftp://nope")
	assert.Error(t, err)
}

func TestHTTPAudioStream_Download(t *testing.T) {
	payload := []byte("0123456789")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
		w.Write(payload)
	}))
	defer server.Close()

	stream := &HTTPAudioStream{
		URL:       server.URL,
		Headers:   map[string]string{"User-Agent": "test-agent"},
		Filename:  "song.webm",
		ChunkSize: 4,
		client:    server.Client(),
	}

	var reports [][2]int64
	dir := t.TempDir()
	path, err := stream.Download(context.Background(), dir, func(done, total int64) error {
		reports = append(reports, [2]int64{done, total})
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "song.webm"), path)
	assert.Equal(t, [][2]int64{{4, 10}, {8, 10}, {10, 10}}, reports)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestHTTPAudioStream_KeepsExistingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new"))
	}))
	defer server.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "song.webm")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))

	stream := &HTTPAudioStream{URL: server.URL, Filename: "song.webm", client: server.Client()}
	path, err := stream.Download(context.Background(), dir, nil)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "song (1).webm"), path)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestHTTPAudioStream_CancelReturnsPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	defer server.Close()

	stream := &HTTPAudioStream{URL: server.URL, Filename: "song.webm", ChunkSize: 8, client: server.Client()}

	path, err := stream.Download(context.Background(), t.TempDir(), func(done, total int64) error {
		if done >= 16 {
			return domain.ErrCancelled
		}
		return nil
	})

	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.FileExists(t, path)
}

func TestHTTPAudioStream_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	stream := &HTTPAudioStream{URL: server.URL, Filename: "song.webm", client: server.Client()}

	path, err := stream.Download(context.Background(), t.TempDir(), nil)

	assert.Error(t, err)
	assert.Empty(t, path)
}

func TestCopyChunks_Short(t *testing.T) {
	var dst bytes.Buffer
	n, err := copyChunks(&dst, strings.NewReader("abcdefg"), 3, 7, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "abcdefg", dst.String())
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"Simple Title":             "Simple Title",
		"AC/DC - T.N.T.":           "AC_DC - T.N.T",
		`What? "Quoted" <tag>`:     "What_ _Quoted_ _tag_",
		"  spaced \t  out\n ":      "spaced out",
		"":                         "audio",
		"...":                      "audio",
		"Ünïcødé ♪":                "Ünïcødé ♪",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}

	long := SanitizeFilename(strings.Repeat("é", 200))
	assert.LessOrEqual(t, len(long), maxFilenameLength)
	assert.True(t, strings.HasPrefix(long, "éé"))
}
