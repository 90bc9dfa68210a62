package modrecord

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RecordFile is the sidecar written inside every managed mod folder.
// Line 1 holds the mod id, line 2 the installed file id. Older folders
// carry only line 1.
const RecordFile = "modid.txt"

// ErrNoRecord is returned when a mod folder has no sidecar file
var ErrNoRecord = errors.New("mod has no " + RecordFile)

// Record is the persisted state of an installed mod
type Record struct {
	ModID            string
	InstalledFileID  string
	DisplayedVersion string
}

// Load reads the sidecar in modDir. The displayed version comes from the
// folder name suffix (name_1.2.3).
func Load(modDir string) (Record, error) {
	data, err := os.ReadFile(filepath.Join(modDir, RecordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, fmt.Errorf("%w: %s", ErrNoRecord, filepath.Base(modDir))
		}
		return Record{}, fmt.Errorf("failed to read %s: %w", RecordFile, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return Record{}, fmt.Errorf("%s in %s is empty", RecordFile, filepath.Base(modDir))
	}

	rec := Record{
		ModID:            lines[0],
		DisplayedVersion: VersionFromDirName(filepath.Base(modDir)),
	}
	if len(lines) > 1 {
		rec.InstalledFileID = lines[1]
	}
	return rec, nil
}

// Save writes the two-line sidecar to modDir
func Save(modDir string, rec Record) error {
	content := rec.ModID + "\n" + rec.InstalledFileID + "\n"
	if err := os.WriteFile(filepath.Join(modDir, RecordFile), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", RecordFile, err)
	}
	return nil
}

// VersionFromDirName returns the part after the last underscore, or "" if none
func VersionFromDirName(name string) string {
	trimmed := strings.TrimSuffix(name, ".zip")
	idx := strings.LastIndex(trimmed, "_")
	if idx < 0 {
		return ""
	}
	return trimmed[idx+1:]
}

// VersionedPath returns the sibling path of modDir named <prefix>_<newVersion>
func VersionedPath(modDir, newVersion string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(modDir), ".zip")
	idx := strings.LastIndex(name, "_")
	if idx < 0 {
		return "", fmt.Errorf("mod folder %q does not contain '_' before its version", name)
	}
	if newVersion == "" || strings.ContainsAny(newVersion, `/\`) {
		return "", fmt.Errorf("invalid mod version %q", newVersion)
	}
	return filepath.Join(filepath.Dir(modDir), name[:idx]+"_"+newVersion), nil
}
