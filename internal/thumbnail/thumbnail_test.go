package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"asset-store/internal/database"
	"asset-store/internal/media"
	"asset-store/internal/storage"

	"github.com/disintegration/imaging"
)

func vipsReady(t *testing.T) bool {
	t.Helper()
	if err := media.InitVips(); err != nil {
		return false
	}
	return media.IsVipsAvailable()
}

// countingStore wraps an ObjectStore and counts uploads, so tests can
// assert that cache hits skip generation entirely.
type countingStore struct {
	storage.ObjectStore
	uploads atomic.Int64
}

func (c *countingStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	c.uploads.Add(1)
	return c.ObjectStore.Upload(ctx, key, data, contentType)
}

func newTestService(t *testing.T) (*Service, *database.Database, *countingStore) {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	local, err := storage.NewLocalStore(t.TempDir(), "local://test")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	store := &countingStore{ObjectStore: local}

	return New(db, store, 128, time.Minute), db, store
}

// seedImage uploads a generated PNG and creates its source file record.
func seedImage(t *testing.T, db *database.Database, store storage.ObjectStore, width, height int) *database.File {
	t.Helper()

	img := imaging.New(width, height, color.White)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("failed to encode seed image: %v", err)
	}

	ctx := context.Background()
	url, err := store.Upload(ctx, fmt.Sprintf("uploads/seed_%dx%d.png", width, height), buf.Bytes(), "image/png")
	if err != nil {
		t.Fatalf("failed to upload seed image: %v", err)
	}

	file, err := db.CreateFile(ctx, &database.File{
		Filename:      "photo.png",
		URL:           url,
		ContentType:   "image/png",
		FileExtension: "png",
		Size:          int64(buf.Len()),
	})
	if err != nil {
		t.Fatalf("failed to create seed file record: %v", err)
	}
	return file
}

func TestGetOrCreateFirstCall(t *testing.T) {
	svc, db, store := newTestService(t)
	file := seedImage(t, db, store, 400, 300)
	ctx := context.Background()

	rec, err := svc.GetOrCreate(ctx, file.ID, 150, 150, database.FormatPNG, 80)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if rec.Width != 150 || rec.Height != 150 {
		t.Errorf("record dimensions = %dx%d, want 150x150", rec.Width, rec.Height)
	}
	if rec.Format != database.FormatPNG || rec.Quality != 80 {
		t.Errorf("record format/quality = %s/%d, want png/80", rec.Format, rec.Quality)
	}
	if rec.AccessCount != 1 {
		t.Errorf("access count = %d, want 1 after creation touch", rec.AccessCount)
	}
	if !strings.Contains(rec.URL, "150x150") {
		t.Errorf("record URL %q does not contain the size key", rec.URL)
	}

	// The derived object must be reachable.
	if _, err := store.Download(ctx, rec.URL); err != nil {
		t.Errorf("derived object not downloadable: %v", err)
	}
}

func TestGetOrCreateRepeatIsIdempotent(t *testing.T) {
	svc, db, store := newTestService(t)
	file := seedImage(t, db, store, 400, 300)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, file.ID, 150, 150, database.FormatPNG, 80)
	if err != nil {
		t.Fatalf("first GetOrCreate failed: %v", err)
	}
	uploadsAfterFirst := store.uploads.Load()

	second, err := svc.GetOrCreate(ctx, file.ID, 150, 150, database.FormatPNG, 80)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second call returned record %d, want %d", second.ID, first.ID)
	}
	if second.AccessCount != 2 {
		t.Errorf("access count = %d, want 2", second.AccessCount)
	}
	if store.uploads.Load() != uploadsAfterFirst {
		t.Error("repeat call uploaded a new object")
	}
}

func TestGetOrCreateAppliesDefaults(t *testing.T) {
	if !vipsReady(t) {
		t.Skip("libvips not available for webp encoding")
	}

	svc, db, store := newTestService(t)
	file := seedImage(t, db, store, 400, 300)

	rec, err := svc.GetOrCreate(context.Background(), file.ID, 150, 150, "", 0)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if rec.Format != database.FormatWebP || rec.Quality != 80 {
		t.Errorf("defaults = %s/%d, want webp/80", rec.Format, rec.Quality)
	}
}

func TestGetOrCreateUnknownSource(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetOrCreate(context.Background(), 9999, 150, 150, database.FormatPNG, 80)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("err = %v, want ErrSourceNotFound", err)
	}
}

func TestGetOrCreateNonImageSource(t *testing.T) {
	svc, db, store := newTestService(t)
	ctx := context.Background()

	url, err := store.Upload(ctx, "uploads/report.pdf", []byte("%PDF-1.4"), "application/pdf")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	file, err := db.CreateFile(ctx, &database.File{
		Filename:    "report.pdf",
		URL:         url,
		ContentType: "application/pdf",
		Size:        8,
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	_, err = svc.GetOrCreate(ctx, file.ID, 150, 150, database.FormatPNG, 80)
	if !errors.Is(err, ErrNotAnImage) {
		t.Errorf("err = %v, want ErrNotAnImage", err)
	}

	// The failed request must leave no record behind.
	rec, err := db.FindThumbnail(ctx, file.ID, 150, 150, database.FormatPNG, 80)
	if err != nil {
		t.Fatalf("FindThumbnail failed: %v", err)
	}
	if rec != nil {
		t.Error("record created despite rejected source")
	}
}

func TestGetOrCreateMissingObject(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	file, err := db.CreateFile(ctx, &database.File{
		Filename:    "gone.png",
		URL:         "local://test/uploads/gone.png",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	_, err = svc.GetOrCreate(ctx, file.ID, 150, 150, database.FormatPNG, 80)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
}

func TestGetOrCreateCorruptSource(t *testing.T) {
	svc, db, store := newTestService(t)
	ctx := context.Background()

	url, err := store.Upload(ctx, "uploads/corrupt.png", []byte("not a png"), "image/png")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	file, err := db.CreateFile(ctx, &database.File{
		Filename:    "corrupt.png",
		URL:         url,
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	_, err = svc.GetOrCreate(ctx, file.ID, 150, 150, database.FormatPNG, 80)
	if !errors.Is(err, ErrTransform) {
		t.Errorf("err = %v, want ErrTransform", err)
	}
}

func TestGetOrCreateConcurrentSameKey(t *testing.T) {
	svc, db, store := newTestService(t)
	file := seedImage(t, db, store, 400, 300)
	ctx := context.Background()

	const workers = 8
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := svc.GetOrCreate(ctx, file.ID, 300, 300, database.FormatPNG, 80)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = rec.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d got record %d, want %d", i, ids[i], ids[0])
		}
	}

	// Exactly one row may exist for the key.
	all, err := db.ThumbnailsForFile(ctx, file.ID)
	if err != nil {
		t.Fatalf("ThumbnailsForFile failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("found %d records for the key, want 1", len(all))
	}
}

func TestInvalidateDropsHotEntries(t *testing.T) {
	svc, db, store := newTestService(t)
	file := seedImage(t, db, store, 400, 300)
	other := seedImage(t, db, store, 200, 200)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, file.ID, 150, 150, database.FormatPNG, 80); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := svc.GetOrCreate(ctx, other.ID, 150, 150, database.FormatPNG, 80); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	svc.Invalidate(file.ID)

	if svc.hot.Len() != 1 {
		t.Errorf("hot cache holds %d entries after invalidation, want 1", svc.hot.Len())
	}
	for _, key := range svc.hot.Keys() {
		if strings.HasPrefix(key, fmt.Sprintf("%d:", file.ID)) {
			t.Errorf("stale hot-cache key survived invalidation: %s", key)
		}
	}
}
