package storage

import (
	"context"
	"errors"
	"time"

	"asset-store/internal/metrics"
)

// ErrNotFound is returned when a requested object does not exist.
var ErrNotFound = errors.New("object not found")

// ErrForeignURL is returned when a URL does not belong to this store and
// cannot be reconstructed into an object key.
var ErrForeignURL = errors.New("url does not belong to this store")

// ObjectStore holds raw object bytes addressed by key. Upload returns a
// stable URL that the store can later map back to its key by stripping a
// known prefix.
type ObjectStore interface {
	// Upload stores data under key with the given content type and
	// returns the object's URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Download fetches the object bytes behind a URL previously
	// returned by Upload.
	Download(ctx context.Context, url string) ([]byte, error)

	// Delete removes the object behind a URL. Deleting an absent
	// object is not an error.
	Delete(ctx context.Context, url string) error
}

// recordOp records object store operation metrics.
func recordOp(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	metrics.StorageOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
