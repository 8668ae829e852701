package startup

import (
	"path/filepath"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("STORAGE_BACKEND", "local")
	t.Setenv("LOCAL_STORAGE_DIR", t.TempDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != "8080" {
		t.Errorf("Port = %q, want 8080", config.Port)
	}
	if config.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want 9090", config.MetricsPort)
	}
	if !config.MetricsEnabled {
		t.Error("MetricsEnabled = false, want true by default")
	}
	if config.ThumbnailCacheSize != 512 {
		t.Errorf("ThumbnailCacheSize = %d, want 512", config.ThumbnailCacheSize)
	}
	if config.ThumbnailCacheTTL != 5*time.Minute {
		t.Errorf("ThumbnailCacheTTL = %s, want 5m", config.ThumbnailCacheTTL)
	}
	if filepath.Base(config.DatabasePath) != "asset-store.db" {
		t.Errorf("DatabasePath = %q, want asset-store.db under DATABASE_DIR", config.DatabasePath)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("THUMBNAIL_CACHE_SIZE", "64")
	t.Setenv("THUMBNAIL_CACHE_TTL", "30s")
	t.Setenv("METRICS_ENABLED", "false")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != "3000" {
		t.Errorf("Port = %q, want 3000", config.Port)
	}
	if config.ThumbnailCacheSize != 64 {
		t.Errorf("ThumbnailCacheSize = %d, want 64", config.ThumbnailCacheSize)
	}
	if config.ThumbnailCacheTTL != 30*time.Second {
		t.Errorf("ThumbnailCacheTTL = %s, want 30s", config.ThumbnailCacheTTL)
	}
	if config.MetricsEnabled {
		t.Error("MetricsEnabled = true, want false")
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_BACKEND", "gcs")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig accepted unknown storage backend")
	}
}

func TestLoadConfigS3RequiresBucket(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig accepted s3 backend without a bucket")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BAD_BOOL", "banana")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_DUR", "90s")

	if got := getEnv("TEST_STR", "fallback"); got != "value" {
		t.Errorf("getEnv = %q, want value", got)
	}
	if got := getEnv("TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnv unset = %q, want fallback", got)
	}
	if !getEnvBool("TEST_BOOL", false) {
		t.Error("getEnvBool = false, want true")
	}
	if !getEnvBool("TEST_BAD_BOOL", true) {
		t.Error("getEnvBool with invalid value should fall back to default")
	}
	if got := getEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
	if got := getEnvDuration("TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("getEnvDuration = %s, want 90s", got)
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/files/{id}/thumbnail", "api/files"},
		{"/api/auth/login", "api/auth"},
		{"/health", "health"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" || info.GoVersion == "" || info.OS == "" || info.Arch == "" {
		t.Errorf("GetBuildInfo returned incomplete info: %+v", info)
	}
}
