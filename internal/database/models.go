package database

import "time"

// ThumbnailFormat enumerates the encodings a thumbnail can be stored in.
type ThumbnailFormat string

const (
	FormatWebP ThumbnailFormat = "webp"
	FormatJPEG ThumbnailFormat = "jpeg"
	FormatPNG  ThumbnailFormat = "png"
)

// Valid reports whether f is a known thumbnail format.
func (f ThumbnailFormat) Valid() bool {
	switch f {
	case FormatWebP, FormatJPEG, FormatPNG:
		return true
	}
	return false
}

// File is a source file record: an originally uploaded asset with a
// stable object store URL. Immutable after creation apart from renames
// and lifecycle deletion.
type File struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	URL           string    `json:"url"`
	ContentType   string    `json:"contentType"`
	FileExtension string    `json:"fileExtension,omitempty"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Thumbnail is one materialized resized rendition of a source file,
// uniquely keyed by (FileID, Width, Height, Format, Quality).
type Thumbnail struct {
	ID             int64           `json:"id"`
	FileID         int64           `json:"fileId"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	Format         ThumbnailFormat `json:"format"`
	Quality        int             `json:"quality"`
	URL            string          `json:"url"`
	Size           int64           `json:"size"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastAccessedAt time.Time       `json:"lastAccessedAt"`
	AccessCount    int64           `json:"accessCount"`
}

// FileUpdate is a partial update for a file record. Nil fields are left
// untouched; set fields are applied individually.
type FileUpdate struct {
	Filename *string `json:"filename"`
}

// ListOptions filters and paginates a file listing. Zero values mean
// "no filter" except Page/PageSize which default to 1/100.
type ListOptions struct {
	Keyword           string
	StartDate         *time.Time
	EndDate           *time.Time
	Extension         string
	IDs               []int64
	ContentTypePrefix string
	Page              int
	PageSize          int
}

// FileList is one page of file records plus the unpaginated total.
type FileList struct {
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Items    []File `json:"items"`
}
