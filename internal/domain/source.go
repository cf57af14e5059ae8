package domain

import "context"

// ProgressFunc receives byte progress during a transfer. A non-nil return
// aborts the transfer and is propagated by Download.
type ProgressFunc func(bytesDone, bytesTotal int64) error

// StepFunc receives transcode progress as a fraction in [0,1], 0 when unknown.
// A non-nil return aborts the transcode.
type StepFunc func(fraction float64) error

// AudioStream is a downloadable audio stream handle
type AudioStream interface {
	// Size returns the stream size in bytes, 0 if unknown
	Size() int64

	// Download writes the stream into folder and returns the file path.
	// The path is returned even on error when a file was created, so the
	// caller can remove the partial artifact.
	Download(ctx context.Context, folder string, onProgress ProgressFunc) (string, error)
}

// ResolvedMedia is the result of resolving a single video URL
type ResolvedMedia struct {
	Title  string
	Stream AudioStream
}

// MediaSource resolves URLs to audio streams and playlists to item URLs
type MediaSource interface {
	// Resolve returns the title and audio stream for url
	Resolve(ctx context.Context, url string) (*ResolvedMedia, error)

	// ResolvePlaylist returns the item URLs of a playlist in source order
	ResolvePlaylist(ctx context.Context, url string) ([]string, error)
}

// Transcoder converts a local audio file into an MP3 file
type Transcoder interface {
	// Transcode writes outputPath from inputPath. An empty bitrate selects
	// the transcoder default. A refused bitrate yields ErrBitrateRejected.
	Transcode(ctx context.Context, inputPath, outputPath, bitrate string, onStep StepFunc) error
}

// Publisher ships a finished output file somewhere else
type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}
