package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cliptube/backend/internal/logging"
)

// VideoUpdater persists ingestion status updates for uploaded videos.
type VideoUpdater interface {
	MarkMediaReady(ctx context.Context, id, mediaURL, thumbnailURL string, duration float64, size int64) error
	MarkMediaFailed(ctx context.Context, id string) error
}

// UploadJob describes one uploaded video waiting to be ingested. The paths
// point at temporary files spooled by the upload handler; the ingestor owns
// them once the job is enqueued and removes them when done.
type UploadJob struct {
	VideoID       string
	MediaPath     string
	MediaName     string
	ThumbnailPath string
	ThumbnailName string
}

// UploadIngestorConfig controls the concurrency characteristics of the ingestor.
type UploadIngestorConfig struct {
	QueueSize int
	Workers   int
}

// UploadIngestor asynchronously probes uploaded media, pushes it to object
// storage, and records the outcome on the video row.
type UploadIngestor struct {
	prober  Prober
	storage AssetStorage
	updater VideoUpdater
	logger  *slog.Logger

	jobs   chan UploadJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	mu     sync.RWMutex
	closed bool
}

var errIngestorClosed = errors.New("upload ingestor closed")

// NewUploadIngestor constructs a background worker pool that ingests uploads.
func NewUploadIngestor(prober Prober, storage AssetStorage, updater VideoUpdater, cfg UploadIngestorConfig, logger *slog.Logger) *UploadIngestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ing := &UploadIngestor{
		prober:  prober,
		storage: storage,
		updater: updater,
		logger:  logger,
		jobs:    make(chan UploadJob, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	ing.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go ing.worker()
	}

	return ing
}

// Enqueue schedules ingestion for the supplied upload.
//
// The read lock is held across the send so the queue cannot be closed
// underneath a blocked sender.
func (i *UploadIngestor) Enqueue(ctx context.Context, job UploadJob) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		return errIngestorClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case i.jobs <- job:
		return nil
	}
}

// Shutdown stops accepting uploads and waits for the worker pool to drain
// every queued job. Only when ctx expires first is the drain abandoned and
// in-flight work cancelled.
func (i *UploadIngestor) Shutdown(ctx context.Context) error {
	i.once.Do(func() {
		i.mu.Lock()
		i.closed = true
		i.mu.Unlock()
		close(i.jobs)
	})

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		i.cancel()
		return ctx.Err()
	case <-done:
		i.cancel()
		return nil
	}
}

func (i *UploadIngestor) worker() {
	defer i.wg.Done()

	for job := range i.jobs {
		i.handleJob(job)
	}
}

func (i *UploadIngestor) handleJob(job UploadJob) {
	defer i.cleanup(job)

	if i.prober == nil || i.storage == nil || i.updater == nil {
		i.logger.Error("upload ingestor missing dependencies", "hasProber", i.prober != nil, "hasStorage", i.storage != nil, "hasUpdater", i.updater != nil)
		return
	}

	// Derived from the pool context so an abandoned shutdown can still
	// abort in-flight probes and uploads.
	ctx, cancel := context.WithTimeout(i.ctx, 2*time.Minute)
	defer cancel()

	ctx = logging.WithLogger(ctx, i.logger.With("videoId", job.VideoID))
	ctx, span := logging.StartSpan(ctx, "media.ingest")
	defer span.End()
	logger := logging.FromContext(ctx)

	info, err := i.prober.Probe(ctx, job.MediaPath)
	if err != nil {
		logger.Error("probe uploaded media", "error", err)
		i.recordFailure(job.VideoID)
		return
	}

	stat, err := os.Stat(job.MediaPath)
	if err != nil {
		logger.Error("stat uploaded media", "error", err)
		i.recordFailure(job.VideoID)
		return
	}

	prefixed := &prefixedStorage{prefix: job.VideoID, base: i.storage}

	mediaURL, err := i.saveFile(ctx, prefixed, job.MediaName, job.MediaPath)
	if err != nil {
		logger.Error("store uploaded media", "error", err)
		i.recordFailure(job.VideoID)
		return
	}

	var thumbnailURL string
	if job.ThumbnailPath != "" {
		thumbnailURL, err = i.saveFile(ctx, prefixed, job.ThumbnailName, job.ThumbnailPath)
		if err != nil {
			// The video is still watchable without its thumbnail.
			logger.Error("store thumbnail", "error", err)
			thumbnailURL = ""
		}
	}

	if err := i.recordSuccess(job.VideoID, mediaURL, thumbnailURL, info.Duration, stat.Size()); err != nil {
		logger.Error("mark media ready", "error", err)
		i.recordFailure(job.VideoID)
		return
	}

	logger.Info("media ingested", "duration", info.Duration, "size", stat.Size())
}

func (i *UploadIngestor) saveFile(ctx context.Context, storage AssetStorage, name, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	return storage.Save(ctx, name, f)
}

func (i *UploadIngestor) cleanup(job UploadJob) {
	for _, p := range []string{job.MediaPath, job.ThumbnailPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			i.logger.Warn("remove spooled upload", "videoId", job.VideoID, "path", p, "error", err)
		}
	}
}

func (i *UploadIngestor) recordFailure(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := i.updater.MarkMediaFailed(ctx, videoID); err != nil {
		i.logger.Error("record media failure", "videoId", videoID, "error", err)
	}
}

func (i *UploadIngestor) recordSuccess(videoID, mediaURL, thumbnailURL string, duration float64, size int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return i.updater.MarkMediaReady(ctx, videoID, mediaURL, thumbnailURL, duration, size)
}

type prefixedStorage struct {
	prefix string
	base   AssetStorage
}

func (p *prefixedStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if p.base == nil {
		return "", fmt.Errorf("prefix storage: %w", ErrStorageUnavailable)
	}
	key := path.Join(p.prefix, name)
	if strings.TrimSpace(key) == "" {
		return "", errors.New("prefix storage: empty key")
	}
	return p.base.Save(ctx, key, r)
}
