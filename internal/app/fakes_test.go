package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// fakeStream writes chunks of fixed size into <folder>/<name>.webm
type fakeStream struct {
	name      string
	chunks    int
	chunkSize int
	failAt    int         // chunk number that fails with a transfer error, 0 for never
	onChunk   func(n int) // called before each progress report
}

func (s *fakeStream) Size() int64 { return int64(s.chunks * s.chunkSize) }

func (s *fakeStream) Download(ctx context.Context, folder string, onProgress domain.ProgressFunc) (string, error) {
	path := filepath.Join(folder, s.name+".webm")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, s.chunkSize)
	var done int64
	for n := 1; n <= s.chunks; n++ {
		if s.failAt == n {
			return path, errors.New("connection reset by peer")
		}
		if _, err := f.Write(buf); err != nil {
			return path, err
		}
		done += int64(len(buf))
		if s.onChunk != nil {
			s.onChunk(n)
		}
		if err := onProgress(done, s.Size()); err != nil {
			return path, err
		}
	}
	return path, nil
}

// fakeSource resolves URLs from a fixed table
type fakeSource struct {
	mu        sync.Mutex
	media     map[string]*fakeStream
	playlists map[string][]string
	resolved  []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		media:     make(map[string]*fakeStream),
		playlists: make(map[string][]string),
	}
}

func (s *fakeSource) add(url, title string) *fakeStream {
	stream := &fakeStream{name: title, chunks: 4, chunkSize: 16}
	s.media[url] = stream
	return stream
}

func (s *fakeSource) Resolve(ctx context.Context, url string) (*domain.ResolvedMedia, error) {
	s.mu.Lock()
	s.resolved = append(s.resolved, url)
	s.mu.Unlock()

	stream, ok := s.media[url]
	if !ok {
		return nil, fmt.Errorf("video unavailable: %w", domain.ErrNoAudioStream)
	}
	return &domain.ResolvedMedia{Title: stream.name, Stream: stream}, nil
}

func (s *fakeSource) ResolvePlaylist(ctx context.Context, url string) ([]string, error) {
	urls, ok := s.playlists[url]
	if !ok {
		return nil, errors.New("playlist does not exist")
	}
	return urls, nil
}

func (s *fakeSource) resolvedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.resolved...)
}

// fakeTranscoder copies input to output in steps
type fakeTranscoder struct {
	steps         int
	rejectBitrate string // refused with ErrBitrateRejected
	fail          error
	onStep        func(n int)
	bitrates      []string
}

func (t *fakeTranscoder) Transcode(ctx context.Context, input, output, bitrate string, onStep domain.StepFunc) error {
	t.bitrates = append(t.bitrates, bitrate)
	if t.rejectBitrate != "" && bitrate == t.rejectBitrate {
		return fmt.Errorf("encoder refused %s: %w", bitrate, domain.ErrBitrateRejected)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}
	if t.fail != nil {
		return t.fail
	}

	steps := t.steps
	if steps == 0 {
		steps = 2
	}
	for n := 1; n <= steps; n++ {
		if t.onStep != nil {
			t.onStep(n)
		}
		if err := onStep(float64(n) / float64(steps)); err != nil {
			return err
		}
	}
	return nil
}

// eventLog collects events from a sink
type eventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

func (l *eventLog) sink(e domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) phases() []domain.Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Phase
	for _, e := range l.events {
		if len(out) == 0 || out[len(out)-1] != e.Phase {
			out = append(out, e.Phase)
		}
	}
	return out
}

func (l *eventLog) all() []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Event(nil), l.events...)
}

func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// memRepo implements domain.JobRepository for testing
type memRepo struct {
	mu    sync.Mutex
	jobs  map[string]domain.Job
	order []string
	items []*domain.JobItem
}

func newMemRepo() *memRepo {
	return &memRepo{jobs: make(map[string]domain.Job)}
}

func (m *memRepo) Create(job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	m.order = append(m.order, job.ID)
	return nil
}

func (m *memRepo) Update(job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *memRepo) FindByID(id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (m *memRepo) FindAll(filters domain.JobFilters) ([]*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Job
	for _, id := range m.order {
		job := m.jobs[id]
		if filters.Status != "" && job.Status != filters.Status {
			continue
		}
		out = append(out, &job)
	}
	return out, nil
}

func (m *memRepo) AddItem(item *domain.JobItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *memRepo) FindItems(jobID string) ([]*domain.JobItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.JobItem
	for _, it := range m.items {
		if it.JobID == jobID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memRepo) GetStats() (*domain.JobStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &domain.JobStats{Total: int64(len(m.jobs))}
	for _, job := range m.jobs {
		switch job.Status {
		case domain.JobCompleted:
			stats.Completed++
		case domain.JobFailed:
			stats.Failed++
		case domain.JobCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (m *memRepo) Close() error { return nil }
