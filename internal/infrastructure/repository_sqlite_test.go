package infrastructure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

func setupTestRepo(t *testing.T) *SQLiteJobRepository {
	t.Helper()
	repo, err := NewSQLiteJobRepository("")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteJobRepository_CreateFind(t *testing.T) {
	repo := setupTestRepo(t)

	job := domain.NewJob("https://www.youtube.com/watch?v=abc", "downloads")
	require.NoError(t, repo.Create(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, job.URL, found.URL)
	assert.Equal(t, domain.JobQueued, found.Status)
	assert.Equal(t, domain.KindSingle, found.Kind)
}

func TestSQLiteJobRepository_FindByIDMissing(t *testing.T) {
	repo := setupTestRepo(t)

	found, err := repo.FindByID("missing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSQLiteJobRepository_Update(t *testing.T) {
	repo := setupTestRepo(t)

	job := domain.NewJob("https://www.youtube.com/watch?v=abc", "downloads")
	require.NoError(t, repo.Create(job))

	job.MarkRunning()
	job.MarkFailed(errors.New("no audio"))
	require.NoError(t, repo.Update(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, found.Status)
	assert.Equal(t, "no audio", found.ErrorMessage)
	assert.NotNil(t, found.StartedAt)
	assert.NotNil(t, found.CompletedAt)
}

func TestSQLiteJobRepository_FindAllFilters(t *testing.T) {
	repo := setupTestRepo(t)

	single := domain.NewJob("https://www.youtube.com/watch?v=a", "d")
	playlist := domain.NewJob("https://www.youtube.com/playlist?list=PL1", "d")
	done := domain.NewJob("https://www.youtube.com/watch?v=b", "d")
	done.MarkCompleted()
	for _, j := range []*domain.Job{single, playlist, done} {
		require.NoError(t, repo.Create(j))
	}

	all, err := repo.FindAll(domain.JobFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	queued, err := repo.FindAll(domain.JobFilters{Status: domain.JobQueued})
	require.NoError(t, err)
	assert.Len(t, queued, 2)

	playlists, err := repo.FindAll(domain.JobFilters{Kind: domain.KindPlaylist})
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, playlist.ID, playlists[0].ID)

	limited, err := repo.FindAll(domain.JobFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteJobRepository_Items(t *testing.T) {
	repo := setupTestRepo(t)

	job := domain.NewJob("https://www.youtube.com/playlist?list=PL1", "d")
	require.NoError(t, repo.Create(job))

	second := domain.NewBatchItem("https://www.youtube.com/watch?v=b", 2, 2)
	first := domain.NewBatchItem("https://www.youtube.com/watch?v=a", 1, 2)
	first.Title = "First"

	require.NoError(t, repo.AddItem(domain.NewJobItem(job.ID, domain.FailedResult(second, errors.New("boom")))))
	require.NoError(t, repo.AddItem(domain.NewJobItem(job.ID, domain.CompletedResult(first, "/d/First.mp3"))))

	items, err := repo.FindItems(job.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Title)
	assert.Equal(t, domain.OutcomeCompleted, items[0].Outcome)
	assert.Equal(t, domain.OutcomeFailed, items[1].Outcome)
	assert.Equal(t, "boom", items[1].Reason)

	other, err := repo.FindItems("other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteJobRepository_GetStats(t *testing.T) {
	repo := setupTestRepo(t)

	statuses := []func(*domain.Job){
		func(j *domain.Job) {},
		func(j *domain.Job) { j.MarkRunning() },
		func(j *domain.Job) { j.MarkCompleted() },
		func(j *domain.Job) { j.MarkCompleted() },
		func(j *domain.Job) { j.MarkCancelled() },
	}
	for _, mark := range statuses {
		j := domain.NewJob("https://www.youtube.com/watch?v=x", "d")
		mark(j)
		require.NoError(t, repo.Create(j))
	}

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(1), stats.Queued)
	assert.Equal(t, int64(1), stats.Running)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, int64(0), stats.Failed)
	assert.Equal(t, int64(1), stats.Cancelled)
}

func TestSQLiteJobRepository_Isolated(t *testing.T) {
	a := setupTestRepo(t)
	b := setupTestRepo(t)

	require.NoError(t, a.Create(domain.NewJob("https://www.youtube.com/watch?v=x", "d")))

	stats, err := b.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}
