package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"asset-store/internal/database"
	"asset-store/internal/logging"
	"asset-store/internal/thumbnail"
)

// maxThumbnailDim bounds requested thumbnail dimensions.
const maxThumbnailDim = 4096

// ThumbnailSizesResponse lists the canonical presets plus the
// renditions already materialized for a file.
type ThumbnailSizesResponse struct {
	Presets   []thumbnail.SizePreset `json:"presets"`
	Generated []database.Thumbnail   `json:"generated"`
}

// GetThumbnail resolves one thumbnail request, generating the rendition
// on a cache miss, and returns the record.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONError(w, "Invalid file id", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()

	width, err := parseDim(q.Get("width"))
	if err != nil {
		writeJSONError(w, "Invalid width", http.StatusBadRequest)
		return
	}
	height, err := parseDim(q.Get("height"))
	if err != nil {
		writeJSONError(w, "Invalid height", http.StatusBadRequest)
		return
	}

	format := thumbnail.DefaultFormat
	if v := q.Get("format"); v != "" {
		format = database.ThumbnailFormat(v)
		if !format.Valid() {
			writeJSONError(w, "Unsupported format", http.StatusBadRequest)
			return
		}
	}

	quality := thumbnail.DefaultQuality
	if v := q.Get("quality"); v != "" {
		quality, err = strconv.Atoi(v)
		if err != nil || quality < 1 || quality > 100 {
			writeJSONError(w, "Quality must be between 1 and 100", http.StatusBadRequest)
			return
		}
	}

	rec, err := h.thumbs.GetOrCreate(r.Context(), id, width, height, format, quality)
	if err != nil {
		switch {
		case errors.Is(err, thumbnail.ErrSourceNotFound):
			writeJSONError(w, "File not found", http.StatusNotFound)
		case errors.Is(err, thumbnail.ErrNotAnImage):
			writeJSONError(w, "File is not an image", http.StatusBadRequest)
		case errors.Is(err, thumbnail.ErrTransform):
			writeJSONError(w, "Image could not be processed", http.StatusUnprocessableEntity)
		case errors.Is(err, thumbnail.ErrUpstream):
			logging.Error("Object store failure for file %d: %v", id, err)
			writeJSONError(w, "Storage unavailable", http.StatusBadGateway)
		default:
			logging.Error("Thumbnail request for file %d failed: %v", id, err)
			writeJSONError(w, "Thumbnail generation failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, rec)
}

// ListThumbnailSizes returns the canonical size presets for a file and
// any renditions that already exist. The presets are deep links; no
// generation happens here.
func (h *Handlers) ListThumbnailSizes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		writeJSONError(w, "Invalid file id", http.StatusBadRequest)
		return
	}

	file, err := h.db.GetFile(ctx, id)
	if err != nil {
		logging.Error("Failed to get file %d: %v", id, err)
		writeJSONError(w, "Failed to get file", http.StatusInternalServerError)
		return
	}
	if file == nil {
		writeJSONError(w, "File not found", http.StatusNotFound)
		return
	}

	generated, err := h.db.ThumbnailsForFile(ctx, id)
	if err != nil {
		logging.Error("Failed to list thumbnails for file %d: %v", id, err)
		writeJSONError(w, "Failed to list thumbnails", http.StatusInternalServerError)
		return
	}
	if generated == nil {
		generated = []database.Thumbnail{}
	}

	writeJSON(w, ThumbnailSizesResponse{
		Presets:   thumbnail.CommonSizes(id),
		Generated: generated,
	})
}

func parseDim(v string) (int, error) {
	dim, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if dim < 1 || dim > maxThumbnailDim {
		return 0, errors.New("dimension out of range")
	}
	return dim, nil
}
