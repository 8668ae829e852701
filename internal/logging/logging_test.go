package logging

import "testing"

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(42), "unknown(42)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestGetLevelIsStable(t *testing.T) {
	// The level is latched on first use; repeated calls must agree.
	first := GetLevel()
	for i := 0; i < 5; i++ {
		if got := GetLevel(); got != first {
			t.Fatalf("GetLevel() changed between calls: %v then %v", first, got)
		}
	}
}
