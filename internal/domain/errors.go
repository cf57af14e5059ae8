package domain

import (
	"errors"
	"fmt"
)

// Error kinds raised by the download pipeline. Match them with errors.Is.
var (
	ErrResolution = errors.New("resolution failed")
	ErrTransfer   = errors.New("transfer failed")
	ErrTranscode  = errors.New("transcode failed")

	// ErrCancelled means the user asked to stop. It is not a failure.
	ErrCancelled = errors.New("stopped by user")

	// ErrNoAudioStream is returned by a MediaSource that found no audio-only stream.
	ErrNoAudioStream = errors.New("no audio stream available")

	// ErrBitrateRejected is returned by a Transcoder that refuses the requested bitrate.
	ErrBitrateRejected = errors.New("bitrate rejected")
)

// ItemError is a pipeline failure tied to one item
type ItemError struct {
	Kind  error
	URL   string
	Title string
	Err   error
}

// Error returns a message naming the item and the reason
func (e *ItemError) Error() string {
	label := e.URL
	if e.Title != "" {
		label = fmt.Sprintf("%q (%s)", e.Title, e.URL)
	}
	return fmt.Sprintf("%v for %s: %v", e.Kind, label, e.Err)
}

// Unwrap exposes both the kind and the underlying cause
func (e *ItemError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// NewItemError wraps err with the given kind and the item's identity
func NewItemError(kind error, item *DownloadItem, err error) *ItemError {
	return &ItemError{
		Kind:  kind,
		URL:   item.URL,
		Title: item.Title,
		Err:   err,
	}
}

// IsCancelled reports whether err is (or wraps) a user stop request
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
