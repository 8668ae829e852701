package thumbnail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"asset-store/internal/database"
	"asset-store/internal/logging"
	"asset-store/internal/media"
	"asset-store/internal/metrics"
	"asset-store/internal/storage"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Defaults applied when a request leaves format or quality unset.
const (
	DefaultFormat  = database.FormatWebP
	DefaultQuality = 80
)

// Service resolves thumbnail requests through a three-layer lookup:
// in-process LRU, thumbnail record store, and on-miss generation. All
// dependencies are injected; the service holds no global state.
type Service struct {
	db    *database.Database
	store storage.ObjectStore
	hot   *expirable.LRU[string, database.Thumbnail]
}

// New creates a thumbnail service. cacheSize bounds the in-process hot
// cache entries and cacheTTL bounds their staleness.
func New(db *database.Database, store storage.ObjectStore, cacheSize int, cacheTTL time.Duration) *Service {
	return &Service{
		db:    db,
		store: store,
		hot:   expirable.NewLRU[string, database.Thumbnail](cacheSize, nil, cacheTTL),
	}
}

// GetOrCreate returns the thumbnail record for the exact
// (fileID, width, height, format, quality) key, generating and
// uploading the rendition on a cache miss. Zero format/quality take the
// defaults. Concurrent misses on the same key may both generate; the
// unique record constraint picks one winner and the loser's record is
// re-queried, so callers always see a single record per key.
func (s *Service) GetOrCreate(ctx context.Context, fileID int64, width, height int, format database.ThumbnailFormat, quality int) (*database.Thumbnail, error) {
	if format == "" {
		format = DefaultFormat
	}
	if quality == 0 {
		quality = DefaultQuality
	}

	key := cacheKey(fileID, width, height, format, quality)

	if rec, ok := s.hot.Get(key); ok {
		metrics.ThumbnailCacheHits.WithLabelValues("memory").Inc()
		s.touch(ctx, &rec)
		s.hot.Add(key, rec)
		return &rec, nil
	}

	rec, err := s.db.FindThumbnail(ctx, fileID, width, height, format, quality)
	if err != nil {
		return nil, fmt.Errorf("thumbnail lookup failed: %w", err)
	}
	if rec != nil {
		metrics.ThumbnailCacheHits.WithLabelValues("database").Inc()
		s.touch(ctx, rec)
		s.hot.Add(key, *rec)
		return rec, nil
	}

	metrics.ThumbnailCacheMisses.Inc()

	rec, err = s.generate(ctx, fileID, width, height, format, quality)
	if err != nil {
		return nil, err
	}

	s.touch(ctx, rec)
	s.hot.Add(key, *rec)
	return rec, nil
}

// generate runs the miss path: validate source, fetch, transform,
// upload, persist. A lost creation race is recovered by re-querying the
// winner's record; the loser's uploaded object stays behind as an
// orphan.
func (s *Service) generate(ctx context.Context, fileID int64, width, height int, format database.ThumbnailFormat, quality int) (*database.Thumbnail, error) {
	file, err := s.db.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("source lookup failed: %w", err)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: id %d", ErrSourceNotFound, fileID)
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return nil, fmt.Errorf("%w: %s has content type %s", ErrNotAnImage, file.Filename, file.ContentType)
	}

	src, err := s.store.Download(ctx, file.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching source %s: %v", ErrUpstream, file.URL, err)
	}

	start := time.Now()
	data, err := media.Resize(src, width, height, format, quality)
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(string(format), "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}
	metrics.ThumbnailGenerationDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())

	objectKey := derivedKey(fileID, width, height, format, quality)
	url, err := s.store.Upload(ctx, objectKey, data, contentTypeFor(format))
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(string(format), "error").Inc()
		return nil, fmt.Errorf("%w: uploading %s: %v", ErrUpstream, objectKey, err)
	}

	rec := &database.Thumbnail{
		FileID:  fileID,
		Width:   width,
		Height:  height,
		Format:  format,
		Quality: quality,
		URL:     url,
		Size:    int64(len(data)),
	}

	created, err := s.db.CreateThumbnail(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("thumbnail record creation failed: %w", err)
	}
	if !created {
		// A concurrent request won the race; its record is
		// authoritative and our upload is an orphan.
		metrics.ThumbnailRaceLost.Inc()
		logging.Debug("Lost thumbnail creation race for %s, re-querying winner", objectKey)

		rec, err = s.db.FindThumbnail(ctx, fileID, width, height, format, quality)
		if err != nil {
			return nil, fmt.Errorf("race-recovery lookup failed: %w", err)
		}
		if rec == nil {
			return nil, fmt.Errorf("thumbnail record vanished after creation conflict for %s", objectKey)
		}
		return rec, nil
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues(string(format), "success").Inc()
	logging.Info("Generated thumbnail %s (%d bytes)", objectKey, len(data))
	return rec, nil
}

// touch bumps access stats. Failures are logged and swallowed; stats
// are monitoring data and must not fail the request.
func (s *Service) touch(ctx context.Context, rec *database.Thumbnail) {
	if err := s.db.TouchThumbnail(ctx, rec); err != nil {
		logging.Warn("Failed to update access stats for thumbnail %d: %v", rec.ID, err)
	}
}

// Invalidate drops all hot-cache entries for a source file. Called when
// the file is deleted; the database cascade removes the records.
func (s *Service) Invalidate(fileID int64) {
	prefix := fmt.Sprintf("%d:", fileID)
	for _, key := range s.hot.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.hot.Remove(key)
		}
	}
}

func cacheKey(fileID int64, width, height int, format database.ThumbnailFormat, quality int) string {
	return fmt.Sprintf("%d:%dx%d:%s:q%d", fileID, width, height, format, quality)
}

// derivedKey builds the deterministic object key for a rendition.
// Quality is always part of the key so keys stay unique per full cache
// tuple, matching the record store's uniqueness constraint.
func derivedKey(fileID int64, width, height int, format database.ThumbnailFormat, quality int) string {
	return fmt.Sprintf("thumbnails/%d/%dx%d_q%d.%s", fileID, width, height, quality, format)
}

func contentTypeFor(format database.ThumbnailFormat) string {
	switch format {
	case database.FormatJPEG:
		return "image/jpeg"
	case database.FormatPNG:
		return "image/png"
	default:
		return "image/webp"
	}
}
