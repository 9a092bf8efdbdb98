package midi

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestListDevices(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"midi2", "midi1", "mixer", "dmmidi0"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "midi-dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListDevices(dir, DefaultDevicePrefix)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	want := []string{filepath.Join(dir, "midi1"), filepath.Join(dir, "midi2")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ListDevices(filepath.Join(dir, "missing"), DefaultDevicePrefix); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
