package paths

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindActual finds the actual case of a file on case-insensitive filesystems.
// An exact match wins over a case-insensitive one; with no match targetPath
// is returned unchanged.
func FindActual(targetPath string) (string, error) {
	dir := filepath.Dir(targetPath)
	filename := filepath.Base(targetPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return targetPath, nil
	}

	actual := ""
	for _, entry := range entries {
		if entry.Name() == filename {
			return targetPath, nil
		}
		if actual == "" && strings.EqualFold(entry.Name(), filename) {
			actual = entry.Name()
		}
	}
	if actual != "" {
		return filepath.Join(dir, actual), nil
	}

	return targetPath, nil
}

// ValidatePath ensures a path doesn't escape the base directory (path traversal protection)
func ValidatePath(basePath, targetPath string) (string, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}

	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target path: %w", err)
	}

	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return absTarget, nil
}

// ValidateEntryName checks that name is a single top-level entry of a directory
func ValidateEntryName(name string) error {
	cleaned := strings.TrimSpace(name)
	switch {
	case cleaned == "":
		return fmt.Errorf("empty entry name")
	case cleaned == "." || cleaned == "..":
		return fmt.Errorf("entry %q is not allowed", name)
	case strings.ContainsAny(cleaned, `/\`):
		return fmt.Errorf("entry %q must be a top-level name without separators", name)
	case filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "":
		return fmt.Errorf("entry %q must be relative", name)
	}
	return nil
}

// LoadExcludes reads entry names from an ignore file, one per line. Blank
// lines and lines starting with # are skipped. A missing file yields nil.
func LoadExcludes(excludesPath string) ([]string, error) {
	file, err := os.Open(excludesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", excludesPath, err)
	}
	defer file.Close()

	var excludes []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			excludes = append(excludes, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", excludesPath, err)
	}
	return excludes, nil
}

// Dedupe returns names with duplicates removed, keeping first occurrence order
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
