package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vs-updater/vs-updater/internal/version"
)

// IsInstalled checks if the directory contains an installation with a version marker
func IsInstalled(baseDir string) bool {
	_, err := version.ReadInstalled(baseDir)
	return err == nil
}

// Wipe deletes every top-level entry of dir except the names in keep and the
// running executable. All deletions are attempted; failures are joined.
func Wipe(dir string, keep ...string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	protected := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		protected[name] = struct{}{}
	}

	self := executable()

	var errs []error
	for _, entry := range entries {
		if _, ok := protected[entry.Name()]; ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if self != "" && samePath(path, self) {
			continue
		}

		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", path, err))
		}
	}

	return errors.Join(errs...)
}

var executable = func() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return exe
}

func samePath(a, b string) bool {
	ca, err := canonical(a)
	if err != nil {
		return false
	}
	cb, err := canonical(b)
	if err != nil {
		return false
	}
	return ca == cb
}

func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}
