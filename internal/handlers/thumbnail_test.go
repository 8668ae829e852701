package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"asset-store/internal/database"
)

func TestGetThumbnailGenerates(t *testing.T) {
	_, router := newTestHandlers(t)
	uploadTestImage(t, router, "photo.png")

	rec := doJSON(t, router, "GET", "/api/files/1/thumbnail?width=150&height=150&format=png&quality=70", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("thumbnail returned %d: %s", rec.Code, rec.Body.String())
	}

	var thumb database.Thumbnail
	if err := json.Unmarshal(rec.Body.Bytes(), &thumb); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if thumb.Width != 150 || thumb.Height != 150 {
		t.Errorf("dimensions = %dx%d, want 150x150", thumb.Width, thumb.Height)
	}
	if thumb.Format != database.FormatPNG || thumb.Quality != 70 {
		t.Errorf("format/quality = %s/%d, want png/70", thumb.Format, thumb.Quality)
	}
	if thumb.AccessCount != 1 {
		t.Errorf("access count = %d, want 1", thumb.AccessCount)
	}

	// Repeating the request returns the same record with bumped stats.
	rec = doJSON(t, router, "GET", "/api/files/1/thumbnail?width=150&height=150&format=png&quality=70", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat thumbnail returned %d", rec.Code)
	}
	var again database.Thumbnail
	if err := json.Unmarshal(rec.Body.Bytes(), &again); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if again.ID != thumb.ID {
		t.Errorf("repeat returned record %d, want %d", again.ID, thumb.ID)
	}
	if again.AccessCount != 2 {
		t.Errorf("repeat access count = %d, want 2", again.AccessCount)
	}
}

func TestGetThumbnailValidation(t *testing.T) {
	_, router := newTestHandlers(t)
	uploadTestImage(t, router, "photo.png")

	tests := []struct {
		name  string
		query string
	}{
		{"missing width", "height=150"},
		{"missing height", "width=150"},
		{"zero width", "width=0&height=150"},
		{"oversized", "width=99999&height=150"},
		{"bad format", "width=150&height=150&format=bmp"},
		{"quality too high", "width=150&height=150&quality=101"},
		{"quality too low", "width=150&height=150&quality=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, "GET", "/api/files/1/thumbnail?"+tt.query, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetThumbnailErrorMapping(t *testing.T) {
	h, router := newTestHandlers(t)

	// Unknown file id.
	rec := doJSON(t, router, "GET", "/api/files/42/thumbnail?width=150&height=150&format=png", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing source: status = %d, want 404", rec.Code)
	}

	// Non-image source.
	pdf, err := h.db.CreateFile(context.Background(), &database.File{
		Filename:    "doc.pdf",
		URL:         "local://test/uploads/doc.pdf",
		ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	rec = doJSON(t, router, "GET", "/api/files/2/thumbnail?width=150&height=150&format=png", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-image source: status = %d, want 400", rec.Code)
	}
	thumbs, err := h.db.ThumbnailsForFile(context.Background(), pdf.ID)
	if err != nil {
		t.Fatalf("ThumbnailsForFile failed: %v", err)
	}
	if len(thumbs) != 0 {
		t.Error("record created for rejected source")
	}

	// Missing object behind a valid record.
	if _, err := h.db.CreateFile(context.Background(), &database.File{
		Filename:    "gone.png",
		URL:         "local://test/uploads/gone.png",
		ContentType: "image/png",
	}); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	rec = doJSON(t, router, "GET", "/api/files/3/thumbnail?width=150&height=150&format=png", nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("missing object: status = %d, want 502", rec.Code)
	}
}

func TestListThumbnailSizes(t *testing.T) {
	_, router := newTestHandlers(t)
	uploadTestImage(t, router, "photo.png")

	// Materialize one rendition.
	if rec := doJSON(t, router, "GET", "/api/files/1/thumbnail?width=150&height=150&format=png", nil); rec.Code != http.StatusOK {
		t.Fatalf("thumbnail returned %d", rec.Code)
	}

	rec := doJSON(t, router, "GET", "/api/files/1/thumbnails", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sizes returned %d", rec.Code)
	}

	var resp ThumbnailSizesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Presets) != 4 {
		t.Errorf("got %d presets, want 4", len(resp.Presets))
	}
	if resp.Presets[0].URL != "/api/files/1/thumbnail?width=150&height=150" {
		t.Errorf("preset URL = %q", resp.Presets[0].URL)
	}
	if len(resp.Generated) != 1 {
		t.Errorf("got %d generated renditions, want 1", len(resp.Generated))
	}

	// Unknown file id.
	if rec := doJSON(t, router, "GET", "/api/files/99/thumbnails", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown file: status = %d, want 404", rec.Code)
	}
}
