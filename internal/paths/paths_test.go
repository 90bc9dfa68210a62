package paths

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestValidatePath tests path traversal protection
func TestValidatePath(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{name: "child file", target: filepath.Join(base, "archive.zip")},
		{name: "nested child", target: filepath.Join(base, "a", "b")},
		{name: "base itself", target: base},
		{name: "parent escape", target: filepath.Join(base, "..", "escape.zip"), wantErr: true},
		{name: "sibling with shared prefix", target: base + "-evil", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePath(base, tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.target, err, tt.wantErr)
			}
		})
	}
}

// TestValidateEntryName tests ignore entry validation
func TestValidateEntryName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "Saves"},
		{name: "serverconfig.json"},
		{name: "", wantErr: true},
		{name: "   ", wantErr: true},
		{name: ".", wantErr: true},
		{name: "..", wantErr: true},
		{name: "Saves/world1", wantErr: true},
		{name: `Saves\world1`, wantErr: true},
		{name: "/etc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntryName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

// TestLoadExcludes tests loading ignore entries from file
func TestLoadExcludes(t *testing.T) {
	tempDir := t.TempDir()
	excludeFile := filepath.Join(tempDir, ".vs-updater-ignore")

	content := `# Comment line
Saves
  Logs
# Another comment

serverconfig.json
`

	if err := os.WriteFile(excludeFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	got, err := LoadExcludes(excludeFile)
	if err != nil {
		t.Fatalf("LoadExcludes() error = %v", err)
	}

	want := []string{"Saves", "Logs", "serverconfig.json"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadExcludes() = %v, want %v", got, want)
	}
}

// TestLoadExcludes_FileNotFound tests graceful handling when file doesn't exist
func TestLoadExcludes_FileNotFound(t *testing.T) {
	got, err := LoadExcludes(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("LoadExcludes() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LoadExcludes() returned %d entries for nonexistent file, want 0", len(got))
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"Saves", " Logs", "", "Saves", "Logs", "Mods"})
	want := []string{"Saves", "Logs", "Mods"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe() = %v, want %v", got, want)
	}
}

// TestFindActual tests case-insensitive file lookup
func TestFindActual(t *testing.T) {
	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "ServerConfig.json")
	if err := os.WriteFile(testFile, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	t.Run("exact case match", func(t *testing.T) {
		got, err := FindActual(testFile)
		if err != nil {
			t.Errorf("FindActual() unexpected error: %v", err)
		}
		if filepath.Base(got) != "ServerConfig.json" {
			t.Errorf("FindActual() = %q, want %q", filepath.Base(got), "ServerConfig.json")
		}
	})

	t.Run("different case resolves to on-disk name", func(t *testing.T) {
		got, err := FindActual(filepath.Join(tempDir, "serverconfig.json"))
		if err != nil {
			t.Errorf("FindActual() unexpected error: %v", err)
		}
		if filepath.Base(got) != "ServerConfig.json" {
			t.Errorf("FindActual() = %q, want %q", filepath.Base(got), "ServerConfig.json")
		}
	})

	t.Run("file not found returns original", func(t *testing.T) {
		got, err := FindActual(filepath.Join(tempDir, "nonexistent.txt"))
		if err != nil {
			t.Errorf("FindActual() unexpected error: %v", err)
		}
		if filepath.Base(got) != "nonexistent.txt" {
			t.Errorf("FindActual() = %q, want %q", filepath.Base(got), "nonexistent.txt")
		}
	})
}
