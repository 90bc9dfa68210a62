// Package quarantine moves protected entries out of a directory before it is
// wiped and puts them back afterwards.
package quarantine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vs-updater/vs-updater/internal/paths"
)

// HoldingName is the default holding directory created inside the working directory
const HoldingName = ".temp"

// ErrStaleDeclined is returned when the operator refuses to delete a leftover holding directory
var ErrStaleDeclined = errors.New("leftover holding directory was not removed")

// Manager quarantines entries of WorkDir into a holding directory beneath it
type Manager struct {
	WorkDir     string
	HoldingName string
	Logger      *log.Logger
}

// New creates a Manager for workDir using the default holding directory name
func New(workDir string, logger *log.Logger) *Manager {
	return &Manager{WorkDir: workDir, HoldingName: HoldingName, Logger: logger}
}

// HoldingDir returns the path of the holding directory
func (m *Manager) HoldingDir() string {
	name := m.HoldingName
	if name == "" {
		name = HoldingName
	}
	return filepath.Join(m.WorkDir, name)
}

// CheckStale looks for a holding directory left behind by an interrupted run.
// confirm is asked before it is deleted; a false answer returns ErrStaleDeclined
// and leaves the directory untouched.
func (m *Manager) CheckStale(confirm func(path string) bool) error {
	holding := m.HoldingDir()
	info, err := os.Lstat(holding)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to inspect %s: %w", holding, err)
	}

	m.logger().Warn("holding directory from a previous run exists", "path", holding)
	if confirm == nil || !confirm(holding) {
		return fmt.Errorf("%w: %s", ErrStaleDeclined, holding)
	}

	if info.IsDir() {
		err = os.RemoveAll(holding)
	} else {
		err = os.Remove(holding)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", holding, err)
	}
	m.logger().Info("deleted leftover holding directory", "path", holding)
	return nil
}

// Quarantine moves each named top-level entry of WorkDir into the holding
// directory and returns its path. Missing entries are skipped. The first entry
// that cannot be moved stops the operation.
func (m *Manager) Quarantine(names []string) (string, error) {
	holding := m.HoldingDir()
	if err := os.MkdirAll(holding, 0755); err != nil {
		return "", fmt.Errorf("failed to create holding directory: %w", err)
	}

	for _, name := range paths.Dedupe(names) {
		if err := paths.ValidateEntryName(name); err != nil {
			return holding, fmt.Errorf("failed to quarantine %q: %w", name, err)
		}
		if name == filepath.Base(holding) {
			return holding, fmt.Errorf("failed to quarantine %q: entry is the holding directory", name)
		}

		src, err := paths.FindActual(filepath.Join(m.WorkDir, name))
		if err != nil {
			return holding, err
		}
		if actual := filepath.Base(src); actual != name {
			m.logger().Debug("ignored entry matched with different case", "entry", name, "actual", actual)
			name = actual
		}
		if _, err := os.Lstat(src); err != nil {
			if os.IsNotExist(err) {
				m.logger().Warn("ignored entry not found, skipping", "entry", name)
				continue
			}
			return holding, fmt.Errorf("failed to inspect %s: %w", src, err)
		}

		if err := move(src, filepath.Join(holding, name)); err != nil {
			return holding, fmt.Errorf("failed to quarantine %s: %w", src, err)
		}
		m.logger().Debug("quarantined", "entry", name)
	}

	return holding, nil
}

// Restore moves every direct child of the holding directory back into WorkDir,
// replacing same-named entries, then deletes the holding directory. A missing
// holding directory is not an error.
func (m *Manager) Restore() error {
	holding := m.HoldingDir()
	entries, err := os.ReadDir(holding)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read holding directory: %w", err)
	}

	for _, entry := range entries {
		src := filepath.Join(holding, entry.Name())
		if err := move(src, filepath.Join(m.WorkDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to restore %s: %w", entry.Name(), err)
		}
		m.logger().Debug("restored", "entry", entry.Name())
	}

	if err := os.Remove(holding); err != nil {
		return fmt.Errorf("failed to delete holding directory: %w", err)
	}
	return nil
}

// Held lists the entry names currently in the holding directory
func (m *Manager) Held() ([]string, error) {
	entries, err := os.ReadDir(m.HoldingDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (m *Manager) logger() *log.Logger {
	if m.Logger == nil {
		return log.Default()
	}
	return m.Logger
}

// move renames src to dst, deleting whatever already sits at dst
func move(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("failed to replace %s: %w", dst, err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.Rename(src, dst)
}
