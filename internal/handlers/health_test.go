package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != statusHealthy || !resp.Ready {
		t.Errorf("health = %q/ready=%v, want healthy/true", resp.Status, resp.Ready)
	}
	if resp.GoVersion == "" {
		t.Error("health response missing Go version")
	}
}

func TestGetVersion(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/version", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("version returned %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] == "" {
		t.Error("version response missing version field")
	}
}
