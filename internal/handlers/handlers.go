package handlers

import (
	"time"

	"asset-store/internal/database"
	"asset-store/internal/startup"
	"asset-store/internal/storage"
	"asset-store/internal/thumbnail"
)

type Handlers struct {
	db      *database.Database
	store   storage.ObjectStore
	thumbs  *thumbnail.Service
	started time.Time
}

func New(db *database.Database, store storage.ObjectStore, config *startup.Config) *Handlers {
	return &Handlers{
		db:      db,
		store:   store,
		thumbs:  thumbnail.New(db, store, config.ThumbnailCacheSize, config.ThumbnailCacheTTL),
		started: time.Now(),
	}
}

// Thumbnails exposes the thumbnail service for lifecycle wiring.
func (h *Handlers) Thumbnails() *thumbnail.Service {
	return h.thumbs
}
