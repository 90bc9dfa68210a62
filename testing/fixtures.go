package testing

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// ZipArchive builds an in-memory zip from a map of slash-separated names to
// contents. Names ending in "/" become directory entries.
func ZipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range sortedNames(files) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s to zip: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("failed to write %s to zip: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish zip: %v", err)
	}
	return buf.Bytes()
}

// TarGzArchive builds an in-memory .tar.gz from a map of names to contents
func TarGzArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range sortedNames(files) {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(files[name])), Typeflag: tar.TypeReg}
		if strings.HasSuffix(name, "/") {
			hdr = &tar.Header{Name: name, Mode: 0755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to add %s to tar: %v", name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(files[name])); err != nil {
				t.Fatalf("failed to write %s to tar: %v", name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to finish tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to finish gzip: %v", err)
	}
	return buf.Bytes()
}

// GameArchive builds a game release zip nesting files under vintagestory/ and
// carrying the assets/version-<v> marker
func GameArchive(t *testing.T, v string, files map[string]string) []byte {
	t.Helper()
	nested := map[string]string{
		"vintagestory/assets/version-" + v: "",
	}
	for name, content := range files {
		nested["vintagestory/"+name] = content
	}
	return ZipArchive(t, nested)
}

// CreateGameInstall lays out a minimal installation of version v in dir
func CreateGameInstall(t *testing.T, dir, v string, files map[string]string) {
	t.Helper()
	WriteFile(t, filepath.Join(dir, "assets", "version-"+v), "")
	for name, content := range files {
		WriteFile(t, filepath.Join(dir, filepath.FromSlash(name)), content)
	}
}

// CreateMod lays out a mod folder with a modid.txt record and a modinfo.json
func CreateMod(t *testing.T, dir, modID, fileID, modVersion string) {
	t.Helper()
	record := modID + "\n"
	if fileID != "" {
		record += fileID + "\n"
	}
	WriteFile(t, filepath.Join(dir, "modid.txt"), record)
	WriteFile(t, filepath.Join(dir, "modinfo.json"), ModInfo(modID, modVersion))
}

// ModInfo renders a minimal modinfo.json
func ModInfo(modID, modVersion string) string {
	return "{\n  \"type\": \"code\",\n  \"modid\": \"" + modID + "\",\n  \"version\": \"" + modVersion + "\"\n}\n"
}

// sortedNames returns the archive entry names in order, adding a directory
// entry for every parent so extraction never depends on implicit folders
func sortedNames(files map[string]string) []string {
	seen := make(map[string]struct{}, len(files))
	for name := range files {
		seen[name] = struct{}{}
		for dir := path.Dir(strings.TrimSuffix(name, "/")); dir != "." && dir != "/"; dir = path.Dir(dir) {
			seen[dir+"/"] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
