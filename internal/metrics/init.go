package metrics

// InitializeMetrics pre-populates expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call once at startup.
func InitializeMetrics() {
	for _, layer := range []string{"memory", "database"} {
		ThumbnailCacheHits.WithLabelValues(layer)
	}

	for _, format := range []string{"webp", "jpeg", "png"} {
		ThumbnailGenerationsTotal.WithLabelValues(format, "success")
		ThumbnailGenerationsTotal.WithLabelValues(format, "error")
		ThumbnailGenerationDuration.WithLabelValues(format)
	}

	for _, op := range []string{"upload", "download", "delete"} {
		StorageOperationsTotal.WithLabelValues(op, "success")
		StorageOperationsTotal.WithLabelValues(op, "error")
		StorageOperationDuration.WithLabelValues(op)
	}

	for _, op := range []string{"create_file", "get_file", "list_files", "update_file", "delete_file",
		"find_thumbnail", "create_thumbnail", "touch_thumbnail", "thumbnails_for_file",
		"create_user", "validate_password", "create_session", "validate_session", "delete_session"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, result := range []string{"success", "failure"} {
		AuthAttemptsTotal.WithLabelValues(result)
	}
}
