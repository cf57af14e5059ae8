package app

import (
	"sync/atomic"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// CancellationToken is a stop flag shared between a controller and the
// goroutine running a pipeline. The controller calls Request; the pipeline
// calls Check at every phase boundary.
type CancellationToken struct {
	requested atomic.Bool
}

// NewCancellationToken returns a token in the not-requested state
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

// Request asks the current run to stop. Safe to call from any goroutine.
func (t *CancellationToken) Request() {
	t.requested.Store(true)
}

// Requested reports whether a stop was requested
func (t *CancellationToken) Requested() bool {
	return t.requested.Load()
}

// Check returns domain.ErrCancelled once a stop was requested
func (t *CancellationToken) Check() error {
	if t.requested.Load() {
		return domain.ErrCancelled
	}
	return nil
}

// Reset clears the flag. Call it only at the start of a new run.
func (t *CancellationToken) Reset() {
	t.requested.Store(false)
}
