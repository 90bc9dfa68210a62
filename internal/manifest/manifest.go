// Package manifest reads the declared version from a mod's modinfo.json.
//
// Mod manifests in the wild are loose JSON (comments, trailing commas, any
// key casing), so the version is found by scanning lines for a "version" key
// rather than by decoding the whole document.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ModInfoFile is the manifest shipped inside every mod archive
const ModInfoFile = "modinfo.json"

// ErrNoVersion is returned when the manifest declares no version
var ErrNoVersion = errors.New("no version field in " + ModInfoFile)

const versionKey = `"version"`

// ReadVersion returns the version declared in modDir/modinfo.json
func ReadVersion(modDir string) (string, error) {
	path := filepath.Join(modDir, ModInfoFile)
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", ModInfoFile, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if v, ok := parseVersionLine(scanner.Text()); ok {
			return v, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", ModInfoFile, err)
	}

	return "", ErrNoVersion
}

func parseVersionLine(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "//") {
		return "", false
	}
	if !strings.HasPrefix(strings.ToLower(trimmed), versionKey) {
		return "", false
	}

	_, value, found := strings.Cut(trimmed[len(versionKey):], ":")
	if !found {
		return "", false
	}

	value = strings.TrimSpace(value)
	value = strings.TrimRight(value, ", ")
	value = strings.Trim(value, `"`)
	if value == "" {
		return "", false
	}
	return value, true
}
