package thumbnail

import "testing"

func TestCommonSizes(t *testing.T) {
	presets := CommonSizes(42)

	want := []SizePreset{
		{150, 150, "/api/files/42/thumbnail?width=150&height=150"},
		{300, 300, "/api/files/42/thumbnail?width=300&height=300"},
		{600, 600, "/api/files/42/thumbnail?width=600&height=600"},
		{800, 600, "/api/files/42/thumbnail?width=800&height=600"},
	}

	if len(presets) != len(want) {
		t.Fatalf("got %d presets, want %d", len(presets), len(want))
	}
	for i, p := range presets {
		if p != want[i] {
			t.Errorf("preset %d = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestCommonSizesIsRestartable(t *testing.T) {
	a := CommonSizes(7)
	b := CommonSizes(7)

	if len(a) != len(b) {
		t.Fatalf("preset counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("preset %d differs between calls", i)
		}
	}
}
