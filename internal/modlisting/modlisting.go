package modlisting

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

// DownloadRoot is the first path segment of every mod download link
const DownloadRoot = "download"

// ErrNoCandidateFound is returned when no listing entry has a valid numeric file id
var ErrNoCandidateFound = errors.New("no downloadable release found")

// preReleaseMarkers flag file names that are not stable releases
var preReleaseMarkers = []string{"-pre", "-rc"}

// Candidate is a download link split into its raw id and file name
type Candidate struct {
	ID       string
	FileName string
	Link     string
}

// Release is a candidate whose id parsed as an integer
type Release struct {
	FileID   int64
	FileName string
	Link     string
}

// Options controls release selection
type Options struct {
	// StableOnly drops file names carrying a pre-release marker
	StableOnly bool
	Logger     *log.Logger
}

// ExtractLinks returns every site-relative href whose path starts with
// /download/, in document order. Links to other hosts are dropped.
func ExtractLinks(r io.Reader) []string {
	var links []string
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return links
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" && isDownloadLink(string(val)) {
					links = append(links, string(val))
				}
				if !more {
					break
				}
			}
		}
	}
}

func isDownloadLink(href string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	return strings.HasPrefix(u.Path, "/"+DownloadRoot+"/")
}

// ParseLink splits "/download/<id>/<filename>" into id and file name
func ParseLink(link string) (Candidate, error) {
	u, err := url.Parse(link)
	if err != nil {
		return Candidate{}, fmt.Errorf("invalid link %q: %w", link, err)
	}

	parts := strings.Split(u.Path, "/")
	// "", "download", "<id>", "<filename>"
	if len(parts) < 4 || parts[1] != DownloadRoot || parts[2] == "" || parts[3] == "" {
		return Candidate{}, fmt.Errorf("link %q does not match /%s/<id>/<filename>", link, DownloadRoot)
	}

	fileName, err := url.PathUnescape(parts[3])
	if err != nil {
		fileName = parts[3]
	}

	return Candidate{ID: parts[2], FileName: fileName, Link: link}, nil
}

// ExtractReleases parses every download link in the listing. Links that do not
// have the id/filename shape are dropped with a diagnostic.
func ExtractReleases(page string, logger *log.Logger) []Candidate {
	var out []Candidate
	for _, link := range ExtractLinks(strings.NewReader(page)) {
		c, err := ParseLink(link)
		if err != nil {
			if logger != nil {
				logger.Debug("Skipping download link", "err", err)
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsPreRelease reports whether a file name carries a pre-release marker
func IsPreRelease(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, marker := range preReleaseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Select picks the candidate with the numerically largest id. When several
// candidates share the largest id the last one in listing order wins.
func Select(candidates []Candidate, opts Options) (Release, error) {
	var best Release
	found := false

	for _, c := range candidates {
		if opts.StableOnly && IsPreRelease(c.FileName) {
			if opts.Logger != nil {
				opts.Logger.Debug("Skipping pre-release", "file", c.FileName)
			}
			continue
		}

		id, err := strconv.ParseInt(c.ID, 10, 64)
		if err != nil {
			if opts.Logger != nil {
				opts.Logger.Debug("Skipping non-numeric file id", "id", c.ID, "file", c.FileName)
			}
			continue
		}

		if !found || id >= best.FileID {
			best = Release{FileID: id, FileName: c.FileName, Link: c.Link}
			found = true
		}
	}

	if !found {
		return Release{}, ErrNoCandidateFound
	}
	return best, nil
}

// IsCurrent reports whether the installed file id is at least the release id.
// A missing or non-numeric installed id is older than any release.
func IsCurrent(installedFileID string, best Release) bool {
	installed, err := strconv.ParseInt(strings.TrimSpace(installedFileID), 10, 64)
	if err != nil {
		return false
	}
	return installed >= best.FileID
}
