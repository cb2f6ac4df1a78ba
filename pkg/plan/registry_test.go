package plan

import (
	"testing"
	"time"
)

func emitPinned(t *testing.T, path string, day time.Time) *Plan {
	t.Helper()
	p, err := NewEmitter().WithRegistry(pinnedRegistry(day)).Emit(loadDoc(t, path))
	if err != nil {
		t.Fatalf("Emit(%q) error = %v", path, err)
	}
	return p
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()

	if got := r.Get(); got != nil {
		t.Errorf("Get() = %v, want nil before first update", got)
	}
	if got := r.GetVersion(); got != "" {
		t.Errorf("GetVersion() = %q, want empty", got)
	}
	if _, ok := r.GetEntry("mus_musculus"); ok {
		t.Error("GetEntry() = ok on empty registry")
	}
}

func TestRegistry_UpdateNil(t *testing.T) {
	r := NewRegistry()
	if err := r.Update(nil); err == nil {
		t.Error("Update(nil) error = nil, want error")
	}
}

func TestRegistry_Update(t *testing.T) {
	day := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	p := emitPinned(t, genomesSpec, day)

	r := NewRegistry()
	if err := r.Update(p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got := r.Get(); got != p {
		t.Error("Get() did not return the installed plan")
	}
	if got, want := r.GetVersion(), p.Fingerprint(); got != want {
		t.Errorf("GetVersion() = %q, want fingerprint %q", got, want)
	}
	if r.GetLoadTime().IsZero() {
		t.Error("GetLoadTime() is zero after update")
	}

	entry, ok := r.GetEntry("homo_sapiens")
	if !ok || entry.Name != "homo_sapiens" {
		t.Errorf("GetEntry(homo_sapiens) = %v, %v", entry, ok)
	}
	disabled, ok := r.GetEntry("mus_musculus_grcm38")
	if !ok || !disabled.Disabled {
		t.Error("GetEntry() should find disabled entries")
	}
	if _, ok := r.GetEntry("no_such_genome"); ok {
		t.Error("GetEntry(no_such_genome) = ok, want miss")
	}

	stats := r.GetStats()
	if stats.ActiveCount != 5 || stats.DisabledCount != 1 {
		t.Errorf("GetStats() = %d active, %d disabled, want 5/1", stats.ActiveCount, stats.DisabledCount)
	}
	if stats.RunID != p.RunID {
		t.Errorf("GetStats().RunID = %q, want %q", stats.RunID, p.RunID)
	}
}

func TestRegistry_VersionStability(t *testing.T) {
	day := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	r := NewRegistry()

	if err := r.Update(emitPinned(t, genomesSpec, day)); err != nil {
		t.Fatal(err)
	}
	v1 := r.GetVersion()

	// Re-emitting the identical spec keeps the version stable even though
	// the run id differs.
	if err := r.Update(emitPinned(t, genomesSpec, day)); err != nil {
		t.Fatal(err)
	}
	if v2 := r.GetVersion(); v2 != v1 {
		t.Errorf("version changed across identical emissions: %q -> %q", v1, v2)
	}

	if err := r.Update(emitPinned(t, minimalSpec, day)); err != nil {
		t.Fatal(err)
	}
	if v3 := r.GetVersion(); v3 == v1 {
		t.Error("version unchanged after installing a different plan")
	}
}
