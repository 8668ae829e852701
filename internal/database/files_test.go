package database

import (
	"context"
	"testing"
	"time"
)

func seedFile(t *testing.T, db *Database, filename, contentType string) *File {
	t.Helper()

	f, err := db.CreateFile(context.Background(), &File{
		Filename:      filename,
		URL:           "https://store.example.com/uploads/" + filename,
		ContentType:   contentType,
		FileExtension: "png",
		Size:          1234,
	})
	if err != nil {
		t.Fatalf("failed to seed file %q: %v", filename, err)
	}
	return f
}

func TestCreateAndGetFile(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created := seedFile(t, db, "cat.png", "image/png")
	if created.ID == 0 {
		t.Fatal("CreateFile did not assign an id")
	}

	got, err := db.GetFile(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetFile returned nil for existing file")
	}
	if got.Filename != "cat.png" || got.ContentType != "image/png" || got.Size != 1234 {
		t.Errorf("GetFile returned wrong record: %+v", got)
	}
}

func TestGetFileMissing(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetFile(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetFile returned %+v for missing id, want nil", got)
	}
}

func TestListFilesFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cat := seedFile(t, db, "cat.png", "image/png")
	seedFile(t, db, "dog.png", "image/png")
	seedFile(t, db, "report.pdf", "application/pdf")

	tests := []struct {
		name string
		opts ListOptions
		want int
	}{
		{"no filter", ListOptions{}, 3},
		{"keyword", ListOptions{Keyword: "cat"}, 1},
		{"keyword case-insensitive", ListOptions{Keyword: "CAT"}, 1},
		{"content type prefix", ListOptions{ContentTypePrefix: "image"}, 2},
		{"ids", ListOptions{IDs: []int64{cat.ID}}, 1},
		{"extension", ListOptions{Extension: ".png"}, 3},
		{"no match", ListOptions{Keyword: "zebra"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := db.ListFiles(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListFiles failed: %v", err)
			}
			if list.Total != tt.want {
				t.Errorf("Total = %d, want %d", list.Total, tt.want)
			}
			if len(list.Items) != tt.want {
				t.Errorf("len(Items) = %d, want %d", len(list.Items), tt.want)
			}
		})
	}
}

func TestListFilesDateRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedFile(t, db, "cat.png", "image/png")

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	list, err := db.ListFiles(ctx, ListOptions{StartDate: &past, EndDate: &future})
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("Total = %d, want 1 for inclusive range", list.Total)
	}

	list, err = db.ListFiles(ctx, ListOptions{EndDate: &past})
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("Total = %d, want 0 for range in the past", list.Total)
	}
}

func TestListFilesPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedFile(t, db, "file"+string(rune('a'+i))+".png", "image/png")
	}

	page1, err := db.ListFiles(ctx, ListOptions{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("ListFiles page 1 failed: %v", err)
	}
	if page1.Total != 5 || len(page1.Items) != 2 {
		t.Errorf("page 1: total=%d len=%d, want 5/2", page1.Total, len(page1.Items))
	}

	page3, err := db.ListFiles(ctx, ListOptions{Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("ListFiles page 3 failed: %v", err)
	}
	if len(page3.Items) != 1 {
		t.Errorf("page 3: len=%d, want 1", len(page3.Items))
	}
}

func TestUpdateFilePartial(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	f := seedFile(t, db, "old-name.png", "image/png")

	// Empty update leaves everything untouched.
	unchanged, err := db.UpdateFile(ctx, f.ID, FileUpdate{})
	if err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if unchanged.Filename != "old-name.png" {
		t.Errorf("empty update changed filename to %q", unchanged.Filename)
	}

	newName := "new-name.png"
	updated, err := db.UpdateFile(ctx, f.ID, FileUpdate{Filename: &newName})
	if err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if updated.Filename != newName {
		t.Errorf("Filename = %q, want %q", updated.Filename, newName)
	}
	if updated.ContentType != "image/png" {
		t.Errorf("ContentType changed by rename: %q", updated.ContentType)
	}
}

func TestDeleteFileCascadesThumbnails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	f := seedFile(t, db, "cat.png", "image/png")

	created, err := db.CreateThumbnail(ctx, &Thumbnail{
		FileID: f.ID, Width: 150, Height: 150, Format: FormatWebP, Quality: 80,
		URL: "https://store.example.com/thumbnails/1/150x150_q80.webp", Size: 100,
	})
	if err != nil || !created {
		t.Fatalf("CreateThumbnail failed: created=%v err=%v", created, err)
	}

	deleted, err := db.DeleteFile(ctx, f.ID)
	if err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if !deleted {
		t.Fatal("DeleteFile reported no row deleted")
	}

	thumb, err := db.FindThumbnail(ctx, f.ID, 150, 150, FormatWebP, 80)
	if err != nil {
		t.Fatalf("FindThumbnail failed: %v", err)
	}
	if thumb != nil {
		t.Error("thumbnail record survived source file deletion")
	}
}
