package histogram

import "testing"

func TestZoneMarkers_Default(t *testing.T) {
	markers, high, shadow := ZoneMarkers(118, DefaultZones)
	if len(markers) != 6 {
		t.Fatalf("got %d markers, want 6", len(markers))
	}

	want := []struct {
		zone    int
		bin     int
		inRange bool
	}{
		{2, 15, true},
		{3, 30, true},
		{4, 59, true},
		{5, 118, true},
		{6, 236, true},
		{7, -1, false},
	}
	for i, w := range want {
		m := markers[i]
		if m.Zone != w.zone || m.Bin != w.bin || m.InRange != w.inRange {
			t.Errorf("marker %d: got %+v, want zone %d bin %d inRange %v", i, m, w.zone, w.bin, w.inRange)
		}
	}
	if !high {
		t.Error("zone 7 at 472 should clip highlights")
	}
	if shadow {
		t.Error("no default zone should clip shadows")
	}
	if markers[5].Brightness != 472 {
		t.Errorf("zone 7 brightness: got %v, want 472", markers[5].Brightness)
	}
}

func TestZoneMarkers_ShadowClip(t *testing.T) {
	markers, high, shadow := ZoneMarkers(118, []int{-2, 0})
	if !shadow || high {
		t.Errorf("clips: high=%v shadow=%v, want false true", high, shadow)
	}
	if markers[0].InRange {
		t.Error("zone -2 at 0.92 should be out of range")
	}
	if !markers[1].InRange || markers[1].Bin != 4 {
		t.Errorf("zone 0: got %+v, want bin 4", markers[1])
	}
}

func TestZoneMarkers_Empty(t *testing.T) {
	markers, high, shadow := ZoneMarkers(118, nil)
	if len(markers) != 0 || high || shadow {
		t.Errorf("got %v %v %v", markers, high, shadow)
	}
}
