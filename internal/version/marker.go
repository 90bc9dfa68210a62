package version

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// AssetsDir holds the installed-version marker
	AssetsDir = "assets"
	// MarkerPrefix prefixes the marker file name: assets/version-1.19.3[.txt]
	MarkerPrefix = "version-"
)

var (
	// ErrNoMarker is returned when the installation has no version marker
	ErrNoMarker = errors.New("no version marker found")
	// ErrMultipleMarkers is returned when more than one version marker exists
	ErrMultipleMarkers = errors.New("multiple version markers found")
)

// ReadInstalled reads the installed version from the assets/version-X.Y.Z marker
func ReadInstalled(workDir string) (Version, error) {
	assets := filepath.Join(workDir, AssetsDir)
	entries, err := os.ReadDir(assets)
	if err != nil {
		if os.IsNotExist(err) {
			return Zero, fmt.Errorf("%w: add a file like %s/%s1.0.0.txt", ErrNoMarker, AssetsDir, MarkerPrefix)
		}
		return Zero, fmt.Errorf("failed to read assets directory: %w", err)
	}

	var markers []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), MarkerPrefix) {
			markers = append(markers, entry.Name())
		}
	}

	switch len(markers) {
	case 0:
		return Zero, fmt.Errorf("%w: add a file like %s/%s1.0.0.txt", ErrNoMarker, AssetsDir, MarkerPrefix)
	case 1:
	default:
		return Zero, fmt.Errorf("%w: %s", ErrMultipleMarkers, strings.Join(markers, ", "))
	}

	v, err := Parse(strings.TrimPrefix(markers[0], MarkerPrefix))
	if err != nil {
		return Zero, fmt.Errorf("invalid version marker %s: %w", markers[0], err)
	}
	return v, nil
}

// MarkerPath returns the path of the marker file for v
func MarkerPath(workDir string, v Version) string {
	return filepath.Join(workDir, AssetsDir, MarkerPrefix+v.String())
}
