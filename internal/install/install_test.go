package install

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	th "github.com/vs-updater/vs-updater/testing"
)

// TestIsInstalled tests installation detection
func TestIsInstalled(t *testing.T) {
	t.Run("installed", func(t *testing.T) {
		dir := t.TempDir()
		th.CreateGameInstall(t, dir, "1.19.2", nil)
		if !IsInstalled(dir) {
			t.Error("IsInstalled() = false, want true")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		if IsInstalled(t.TempDir()) {
			t.Error("IsInstalled() = true for empty directory")
		}
	})
}

// TestWipe tests that only protected entries survive
func TestWipe(t *testing.T) {
	dir := t.TempDir()
	th.CreateGameInstall(t, dir, "1.19.2", map[string]string{
		"VintagestoryServer.dll": "binary",
		"Lib/lib.so":             "lib",
	})
	th.WriteFile(t, filepath.Join(dir, ".temp", "Saves", "world.vcdbs"), "world")

	if err := Wipe(dir, ".temp"); err != nil {
		t.Fatalf("Wipe() error = %v", err)
	}

	if got := th.TopLevelNames(t, dir); !reflect.DeepEqual(got, []string{".temp"}) {
		t.Errorf("after Wipe() entries = %v, want [.temp]", got)
	}
	th.AssertFileContent(t, filepath.Join(dir, ".temp", "Saves", "world.vcdbs"), "world")
}

// TestWipe_SkipsRunningExecutable tests that a co-located updater binary survives
func TestWipe_SkipsRunningExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "vs-updater")
	th.WriteFile(t, exe, "binary")
	th.WriteFile(t, filepath.Join(dir, "VintagestoryServer.dll"), "binary")

	orig := executable
	executable = func() string { return exe }
	t.Cleanup(func() { executable = orig })

	if err := Wipe(dir); err != nil {
		t.Fatalf("Wipe() error = %v", err)
	}

	if got := th.TopLevelNames(t, dir); !reflect.DeepEqual(got, []string{"vs-updater"}) {
		t.Errorf("after Wipe() entries = %v, want [vs-updater]", got)
	}
}

// TestWipe_MissingDir tests that wiping a missing directory is an error
func TestWipe_MissingDir(t *testing.T) {
	if err := Wipe(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("Wipe() expected error for missing directory")
	}
}

// TestWipe_Empty tests wiping an already empty directory
func TestWipe_Empty(t *testing.T) {
	dir := t.TempDir()
	if err := Wipe(dir, ".temp"); err != nil {
		t.Fatalf("Wipe() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Wipe() removed the directory itself: %v", err)
	}
}
