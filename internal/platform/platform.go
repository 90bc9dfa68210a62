package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vs-updater/vs-updater/internal/version"
)

// ErrUnsupported is returned for OS / game type combinations with no official archive
var ErrUnsupported = errors.New("unsupported platform")

// Game types
const (
	Server = "server"
	Client = "client"
)

// Artifact names the release archive for one OS and game type
type Artifact struct {
	// Prefix precedes the version in the file name, e.g. vs_server_linux-x64_
	Prefix string
	// Ext is the archive extension, e.g. .tar.gz
	Ext string
	// Roots lists top-level folders hoisted out of the archive after extraction
	Roots []string
}

// FileName returns the archive file name for v
func (a Artifact) FileName(v version.Version) string {
	return a.Prefix + v.String() + a.Ext
}

// URL returns the download URL for v under baseURL
func (a Artifact) URL(baseURL string, v version.Version) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + a.FileName(v)
}

// VersionFromFileName parses the version out of an archive name built by FileName
func (a Artifact) VersionFromFileName(name string) (version.Version, error) {
	if !strings.HasPrefix(name, a.Prefix) || !strings.HasSuffix(name, a.Ext) {
		return version.Zero, fmt.Errorf("%q is not a %s...%s archive", name, a.Prefix, a.Ext)
	}
	return version.Parse(strings.TrimSuffix(strings.TrimPrefix(name, a.Prefix), a.Ext))
}

type osTable struct {
	ext      string
	prefixes map[string]string
}

var gameRoots = []string{"vintagestory"}

// The official CDN only ships a Windows installer for the client, so there is
// no archive to probe for it.
var table = map[string]osTable{
	"linux": {
		ext: ".tar.gz",
		prefixes: map[string]string{
			Server: "vs_server_linux-x64_",
			Client: "vs_client_linux-x64_",
		},
	},
	"windows": {
		ext: ".zip",
		prefixes: map[string]string{
			Server: "vs_server_win-x64_",
		},
	},
}

// Resolve selects the artifact for goos and gameType
func Resolve(goos, gameType string) (Artifact, error) {
	entry, ok := table[goos]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: operating system %q", ErrUnsupported, goos)
	}

	prefix, ok := entry.prefixes[strings.ToLower(gameType)]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: game type %q on %s", ErrUnsupported, gameType, goos)
	}

	return Artifact{Prefix: prefix, Ext: entry.ext, Roots: gameRoots}, nil
}
