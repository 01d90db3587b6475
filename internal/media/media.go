package media

import (
	"context"
	"errors"
	"io"
)

// Info captures the technical details extracted from an uploaded media file.
type Info struct {
	Duration float64
	Size     int64
	Format   string
}

// Prober inspects a media file on disk and reports its technical details.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// AssetStorage persists media content under a key and returns its public location.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

var (
	// ErrProberUnavailable indicates the media prober is not configured.
	ErrProberUnavailable = errors.New("media prober unavailable")
	// ErrStorageUnavailable indicates no asset storage backend is configured.
	ErrStorageUnavailable = errors.New("media storage unavailable")
)
