package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

const playlistURL = "https://www.youtube.com/playlist?list=PL123"

var (
	urlA = "https://www.youtube.com/watch?v=A"
	urlB = "https://www.youtube.com/watch?v=B"
	urlC = "https://www.youtube.com/watch?v=C"
)

func newBatchFixture() (*fakeSource, *BatchRunner) {
	source := newFakeSource()
	source.add(urlA, "A")
	source.add(urlB, "B")
	source.add(urlC, "C")
	source.playlists[playlistURL] = []string{urlA, urlB, urlC}

	pipeline := newTestPipeline(source, &fakeTranscoder{})
	return source, NewBatchRunner(source, pipeline, nil)
}

func TestBatchRunner_AllCompleted(t *testing.T) {
	dir := t.TempDir()
	_, runner := newBatchFixture()

	results, err := runner.Run(context.Background(), playlistURL, dir, NewCancellationToken(), nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.True(t, r.IsCompleted())
		assert.Equal(t, i+1, r.Item.Index)
		assert.Equal(t, 3, r.Item.Total)
	}
	assert.Equal(t, []string{"A.mp3", "B.mp3", "C.mp3"}, listDir(dir))
}

func TestBatchRunner_FailureDoesNotStop(t *testing.T) {
	dir := t.TempDir()
	source, runner := newBatchFixture()
	source.media[urlB].failAt = 2

	results, err := runner.Run(context.Background(), playlistURL, dir, NewCancellationToken(), nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].IsCompleted())
	assert.Equal(t, domain.OutcomeFailed, results[1].Outcome)
	assert.ErrorIs(t, results[1].Err, domain.ErrTransfer)
	assert.True(t, results[2].IsCompleted())
	assert.Equal(t, []string{urlA, urlB, urlC}, source.resolvedURLs())
}

func TestBatchRunner_CancelStops(t *testing.T) {
	dir := t.TempDir()
	source, runner := newBatchFixture()
	token := NewCancellationToken()
	source.media[urlB].onChunk = func(n int) {
		if n == 1 {
			token.Request()
		}
	}

	results, err := runner.Run(context.Background(), playlistURL, dir, token, nil)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].IsCompleted())
	assert.True(t, results[1].IsCancelled())
	assert.NotContains(t, source.resolvedURLs(), urlC)
	assert.Equal(t, []string{"A.mp3"}, listDir(dir))
}

func TestBatchRunner_PlaylistError(t *testing.T) {
	_, runner := newBatchFixture()

	results, err := runner.Run(context.Background(), "https://www.youtube.com/playlist?list=missing", t.TempDir(), NewCancellationToken(), nil)

	assert.Nil(t, results)
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestBatchRunner_CancelledBeforeStart(t *testing.T) {
	source, runner := newBatchFixture()
	token := NewCancellationToken()
	token.Request()

	results, err := runner.Run(context.Background(), playlistURL, t.TempDir(), token, nil)

	assert.Empty(t, results)
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.Empty(t, source.resolvedURLs())
}

func TestBatchRunner_EmptyPlaylist(t *testing.T) {
	source, runner := newBatchFixture()
	source.playlists[playlistURL] = nil

	results, err := runner.Run(context.Background(), playlistURL, t.TempDir(), NewCancellationToken(), nil)

	require.NoError(t, err)
	assert.Empty(t, results)
}
