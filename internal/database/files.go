package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateFile inserts a new source file record and returns it with the
// assigned id and creation timestamp filled in.
func (d *Database) CreateFile(ctx context.Context, f *File) (*File, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_file", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now()
	var res sql.Result
	res, err = d.db.ExecContext(ctx,
		`INSERT INTO files (filename, url, content_type, file_extension, size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.Filename, f.URL, f.ContentType, f.FileExtension, f.Size, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new file id: %w", err)
	}

	created := *f
	created.ID = id
	created.CreatedAt = time.Unix(now.Unix(), 0)
	return &created, nil
}

// GetFile returns the file record with the given id, or nil if absent.
func (d *Database) GetFile(ctx context.Context, id int64) (*File, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_file", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var f File
	var createdAt int64
	err = d.db.QueryRowContext(ctx,
		`SELECT id, filename, url, content_type, file_extension, size, created_at
		 FROM files WHERE id = ?`, id,
	).Scan(&f.ID, &f.Filename, &f.URL, &f.ContentType, &f.FileExtension, &f.Size, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file %d: %w", id, err)
	}

	f.CreatedAt = time.Unix(createdAt, 0)
	return &f, nil
}

// ListFiles returns one page of file records matching opts plus the
// total match count.
func (d *Database) ListFiles(ctx context.Context, opts ListOptions) (*FileList, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_files", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 100
	}

	where, args := buildFileFilters(opts)

	var total int
	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files"+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	query := `SELECT id, filename, url, content_type, file_extension, size, created_at
		 FROM files` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, opts.PageSize, (opts.Page-1)*opts.PageSize)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	items := []File{}
	for rows.Next() {
		var f File
		var createdAt int64
		if err = rows.Scan(&f.ID, &f.Filename, &f.URL, &f.ContentType, &f.FileExtension, &f.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		f.CreatedAt = time.Unix(createdAt, 0)
		items = append(items, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file rows: %w", err)
	}

	return &FileList{
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.PageSize,
		Items:    items,
	}, nil
}

// buildFileFilters translates ListOptions into a WHERE clause and args.
func buildFileFilters(opts ListOptions) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if len(opts.IDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(opts.IDs)), ",")
		clauses = append(clauses, "id IN ("+placeholders+")")
		for _, id := range opts.IDs {
			args = append(args, id)
		}
	}
	if opts.ContentTypePrefix != "" {
		clauses = append(clauses, "content_type LIKE ?")
		args = append(args, opts.ContentTypePrefix+"%")
	}
	if opts.Keyword != "" {
		clauses = append(clauses, "filename LIKE ? COLLATE NOCASE")
		args = append(args, "%"+opts.Keyword+"%")
	}
	if opts.StartDate != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, opts.StartDate.Unix())
	}
	if opts.EndDate != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, opts.EndDate.Unix())
	}
	if opts.Extension != "" {
		clauses = append(clauses, "file_extension = ?")
		args = append(args, strings.TrimPrefix(opts.Extension, "."))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// UpdateFile applies the set fields of upd to the file with the given id
// and returns the updated record, or nil if the file does not exist.
func (d *Database) UpdateFile(ctx context.Context, id int64, upd FileUpdate) (*File, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_file", start, err) }()

	if upd.Filename != nil {
		ctx2, cancel := context.WithTimeout(ctx, defaultTimeout)
		_, err = d.db.ExecContext(ctx2, "UPDATE files SET filename = ? WHERE id = ?", *upd.Filename, id)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to update file %d: %w", id, err)
		}
	}

	return d.GetFile(ctx, id)
}

// DeleteFile removes a file record; thumbnail records cascade with it.
// Returns true if a row was deleted.
func (d *Database) DeleteFile(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_file", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var res sql.Result
	res, err = d.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete file %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
