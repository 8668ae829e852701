package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"asset-store/internal/database"
	"asset-store/internal/logging"
	"asset-store/internal/storage"

	"github.com/google/uuid"
)

// maxUploadSize caps multipart uploads at 64MB.
const maxUploadSize = 64 << 20

// UploadFile accepts a multipart upload, stores the object under a
// uuid-derived key, and creates the source file record.
func (h *Handlers) UploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSONError(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := src.Close(); err != nil {
			logging.Warn("failed to close uploaded file: %v", err)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		writeJSONError(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	key := "uploads/" + uuid.New().String()
	if ext != "" {
		key += "." + ext
	}

	url, err := h.store.Upload(ctx, key, data, contentType)
	if err != nil {
		logging.Error("Upload to object store failed: %v", err)
		writeJSONError(w, "Storage upload failed", http.StatusBadGateway)
		return
	}

	file, err := h.db.CreateFile(ctx, &database.File{
		Filename:      header.Filename,
		URL:           url,
		ContentType:   contentType,
		FileExtension: ext,
		Size:          int64(len(data)),
	})
	if err != nil {
		logging.Error("Failed to create file record: %v", err)
		// The uploaded object is now an orphan; log it for the sweep.
		logging.Warn("Orphaned object after failed record creation: %s", key)
		writeJSONError(w, "Failed to create file record", http.StatusInternalServerError)
		return
	}

	logging.Info("Uploaded %s (%d bytes) as file %d", header.Filename, len(data), file.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, file)
}

// ListFiles returns a filtered, paginated file listing.
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptionsFromQuery(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.db.ListFiles(r.Context(), opts)
	if err != nil {
		logging.Error("Failed to list files: %v", err)
		writeJSONError(w, "Failed to list files", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

// ListPublicFiles returns the unauthenticated listing, restricted to
// image files.
func (h *Handlers) ListPublicFiles(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptionsFromQuery(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts.ContentTypePrefix = "image/"

	list, err := h.db.ListFiles(r.Context(), opts)
	if err != nil {
		logging.Error("Failed to list public files: %v", err)
		writeJSONError(w, "Failed to list files", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

// GetFile returns one file record.
func (h *Handlers) GetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONError(w, "Invalid file id", http.StatusBadRequest)
		return
	}

	file, err := h.db.GetFile(r.Context(), id)
	if err != nil {
		logging.Error("Failed to get file %d: %v", id, err)
		writeJSONError(w, "Failed to get file", http.StatusInternalServerError)
		return
	}
	if file == nil {
		writeJSONError(w, "File not found", http.StatusNotFound)
		return
	}
	writeJSON(w, file)
}

// UpdateFile applies a partial update. Only fields present in the
// request body are changed.
func (h *Handlers) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONError(w, "Invalid file id", http.StatusBadRequest)
		return
	}

	var upd database.FileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if upd.Filename != nil && *upd.Filename == "" {
		writeJSONError(w, "Filename must not be empty", http.StatusBadRequest)
		return
	}

	file, err := h.db.UpdateFile(r.Context(), id, upd)
	if err != nil {
		logging.Error("Failed to update file %d: %v", id, err)
		writeJSONError(w, "Failed to update file", http.StatusInternalServerError)
		return
	}
	if file == nil {
		writeJSONError(w, "File not found", http.StatusNotFound)
		return
	}
	writeJSON(w, file)
}

// DeleteFile removes the record (cascading to thumbnail records) and
// best-effort deletes the stored objects.
func (h *Handlers) DeleteFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		writeJSONError(w, "Invalid file id", http.StatusBadRequest)
		return
	}

	file, err := h.db.GetFile(ctx, id)
	if err != nil {
		logging.Error("Failed to get file %d: %v", id, err)
		writeJSONError(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}
	if file == nil {
		writeJSONError(w, "File not found", http.StatusNotFound)
		return
	}

	// Collect thumbnail URLs before the cascade removes the records.
	thumbs, err := h.db.ThumbnailsForFile(ctx, id)
	if err != nil {
		logging.Warn("Failed to enumerate thumbnails for file %d: %v", id, err)
	}

	deleted, err := h.db.DeleteFile(ctx, id)
	if err != nil {
		logging.Error("Failed to delete file %d: %v", id, err)
		writeJSONError(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}
	if !deleted {
		writeJSONError(w, "File not found", http.StatusNotFound)
		return
	}

	h.thumbs.Invalidate(id)

	// Object deletion is best-effort; records are already gone and
	// leftover objects are orphans, not visible state.
	for _, t := range thumbs {
		if err := h.store.Delete(ctx, t.URL); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logging.Warn("Failed to delete thumbnail object %s: %v", t.URL, err)
		}
	}
	if err := h.store.Delete(ctx, file.URL); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.Warn("Failed to delete source object %s: %v", file.URL, err)
	}

	logging.Info("Deleted file %d (%s) and %d thumbnails", id, file.Filename, len(thumbs))
	w.WriteHeader(http.StatusNoContent)
}

func listOptionsFromQuery(r *http.Request) (database.ListOptions, error) {
	q := r.URL.Query()

	opts := database.ListOptions{
		Keyword:           q.Get("keyword"),
		Extension:         strings.ToLower(q.Get("extension")),
		ContentTypePrefix: q.Get("contentType"),
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return opts, errors.New("invalid page")
		}
		opts.Page = page
	}
	if v := q.Get("pageSize"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return opts, errors.New("invalid pageSize")
		}
		opts.PageSize = size
	}

	if v := q.Get("ids"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return opts, errors.New("invalid ids")
			}
			opts.IDs = append(opts.IDs, id)
		}
	}

	if v := q.Get("startDate"); v != "" {
		start, err := parseDate(v)
		if err != nil {
			return opts, errors.New("invalid startDate")
		}
		opts.StartDate = &start
	}
	if v := q.Get("endDate"); v != "" {
		end, err := parseDate(v)
		if err != nil {
			return opts, errors.New("invalid endDate")
		}
		opts.EndDate = &end
	}

	return opts, nil
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
