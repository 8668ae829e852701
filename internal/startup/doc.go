// Package startup handles application initialization: environment
// configuration with validation and derived paths, the startup banner
// and system information logging, route table logging, and the
// structured shutdown log sequence.
//
// Configuration is environment-driven:
//
//   - PORT, METRICS_PORT, METRICS_ENABLED: HTTP listeners
//   - DATABASE_DIR: SQLite database location (must be writable)
//   - STORAGE_BACKEND: "s3" or "local"
//   - S3_BUCKET, S3_REGION, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY,
//     S3_ENDPOINT: S3 backend settings
//   - LOCAL_STORAGE_DIR, LOCAL_STORAGE_BASE_URL: local backend settings
//   - THUMBNAIL_CACHE_SIZE, THUMBNAIL_CACHE_TTL: in-process hot cache
//   - LOG_LEVEL / DEBUG: logging verbosity
//
// Build-time variables (Version, Commit, BuildTime) are injected via
// -ldflags and exposed through GetBuildInfo.
package startup
