// Package metrics defines the Prometheus metrics exported by the
// asset store: HTTP request metrics, database query metrics, thumbnail
// cache and generation metrics, and object store operation metrics.
package metrics
