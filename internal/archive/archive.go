// Package archive unpacks downloaded release archives in place.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/codeclysm/extract/v4"
)

// Extractor is the archive collaborator used by the updater
type Extractor interface {
	// Extract unpacks archivePath into its parent directory
	Extract(ctx context.Context, archivePath string) error
}

// stagingPrefix names the scratch folder archives are unpacked into first
const stagingPrefix = ".extract-"

// Unpacker implements Extractor for zip and tar.gz archives
type Unpacker struct {
	// Roots lists folder names that are flattened when an archive holds a
	// single top-level folder. Empty means any single folder is flattened.
	Roots  []string
	Logger *log.Logger
}

// New creates an Unpacker hoisting the given root folders
func New(logger *log.Logger, roots ...string) *Unpacker {
	return &Unpacker{Roots: roots, Logger: logger}
}

// Extract unpacks archivePath into a staging folder beside it, flattens a
// single root folder when allowed, then moves the result into the parent
// directory replacing same-named entries
func (u *Unpacker) Extract(ctx context.Context, archivePath string) error {
	dest := filepath.Dir(archivePath)

	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	staging, err := os.MkdirTemp(dest, stagingPrefix)
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := extract.Archive(ctx, file, staging, keepName); err != nil {
		return fmt.Errorf("failed to extract %s: %w", filepath.Base(archivePath), err)
	}

	src, err := u.contentRoot(staging)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read extracted files: %w", err)
	}

	for _, entry := range entries {
		target := filepath.Join(dest, entry.Name())
		if target == archivePath {
			return fmt.Errorf("archive contains an entry named like the archive itself: %s", entry.Name())
		}
		if err := replace(filepath.Join(src, entry.Name()), target); err != nil {
			return fmt.Errorf("failed to place %s: %w", entry.Name(), err)
		}
	}

	u.logger().Debug("extracted", "archive", filepath.Base(archivePath), "entries", len(entries), "dest", dest)
	return nil
}

// contentRoot returns the folder whose children belong in the destination
func (u *Unpacker) contentRoot(staging string) (string, error) {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted files: %w", err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return staging, nil
	}

	name := entries[0].Name()
	if !u.hoists(name) {
		return staging, nil
	}

	u.logger().Debug("flattening archive root", "folder", name)
	return filepath.Join(staging, name), nil
}

func (u *Unpacker) hoists(name string) bool {
	if len(u.Roots) == 0 {
		return true
	}
	for _, root := range u.Roots {
		if strings.EqualFold(root, name) {
			return true
		}
	}
	return false
}

func keepName(name string) string { return name }

func (u *Unpacker) logger() *log.Logger {
	if u.Logger == nil {
		return log.Default()
	}
	return u.Logger
}

func replace(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return err
		}
	}
	return os.Rename(src, dst)
}
