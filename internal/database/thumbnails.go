package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// FindThumbnail performs an exact-match lookup on the full cache key and
// returns nil when no record exists. There is no fuzzy matching.
func (d *Database) FindThumbnail(ctx context.Context, fileID int64, width, height int, format ThumbnailFormat, quality int) (*Thumbnail, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("find_thumbnail", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	t, err := scanThumbnail(d.db.QueryRowContext(ctx,
		`SELECT id, file_id, width, height, format, quality, url, size, created_at, last_accessed_at, access_count
		 FROM thumbnails
		 WHERE file_id = ? AND width = ? AND height = ? AND format = ? AND quality = ?`,
		fileID, width, height, string(format), quality,
	))
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find thumbnail: %w", err)
	}
	return t, nil
}

// CreateThumbnail inserts a new thumbnail record. The outcome is tagged
// rather than exception-driven: created=false with a nil error means a
// concurrent creator won the race on the unique key and the caller should
// re-query. On success t's ID, CreatedAt, LastAccessedAt and AccessCount
// are populated.
func (d *Database) CreateThumbnail(ctx context.Context, t *Thumbnail) (created bool, err error) {
	start := time.Now()
	defer func() { recordQuery("create_thumbnail", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().Unix()
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO thumbnails (file_id, width, height, format, quality, url, size, created_at, last_accessed_at, access_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		t.FileID, t.Width, t.Height, string(t.Format), t.Quality, t.URL, t.Size, now, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			err = nil
			return false, nil
		}
		return false, fmt.Errorf("failed to create thumbnail record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to read new thumbnail id: %w", err)
	}

	t.ID = id
	t.CreatedAt = time.Unix(now, 0)
	t.LastAccessedAt = time.Unix(now, 0)
	t.AccessCount = 0
	return true, nil
}

// TouchThumbnail increments the access count and refreshes the
// last-accessed timestamp, mirroring the change into t on success.
// Callers treat a failure here as non-fatal.
func (d *Database) TouchThumbnail(ctx context.Context, t *Thumbnail) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("touch_thumbnail", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().Unix()
	_, err = d.db.ExecContext(ctx,
		"UPDATE thumbnails SET access_count = access_count + 1, last_accessed_at = ? WHERE id = ?",
		now, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch thumbnail %d: %w", t.ID, err)
	}

	t.AccessCount++
	t.LastAccessedAt = time.Unix(now, 0)
	return nil
}

// ThumbnailsForFile returns all thumbnail records derived from a source
// file, used when cascading a source delete into the object store.
func (d *Database) ThumbnailsForFile(ctx context.Context, fileID int64) ([]Thumbnail, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("thumbnails_for_file", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, file_id, width, height, format, quality, url, size, created_at, last_accessed_at, access_count
		 FROM thumbnails WHERE file_id = ?`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list thumbnails for file %d: %w", fileID, err)
	}
	defer rows.Close()

	var thumbs []Thumbnail
	for rows.Next() {
		t, scanErr := scanThumbnail(rows)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan thumbnail row: %w", scanErr)
		}
		thumbs = append(thumbs, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate thumbnail rows: %w", err)
	}
	return thumbs, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanThumbnail(row rowScanner) (*Thumbnail, error) {
	var t Thumbnail
	var format string
	var createdAt, lastAccessed int64

	err := row.Scan(&t.ID, &t.FileID, &t.Width, &t.Height, &format, &t.Quality,
		&t.URL, &t.Size, &createdAt, &lastAccessed, &t.AccessCount)
	if err != nil {
		return nil, err
	}

	t.Format = ThumbnailFormat(format)
	t.CreatedAt = time.Unix(createdAt, 0)
	t.LastAccessedAt = time.Unix(lastAccessed, 0)
	return &t, nil
}
