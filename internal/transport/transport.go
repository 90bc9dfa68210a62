// Package transport talks to the game CDN and the mod repository over HTTP.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/charmbracelet/log"

	"github.com/vs-updater/vs-updater/internal/paths"
)

// DefaultTimeout bounds page fetches. Existence checks and downloads are
// bounded only by the caller's context.
const DefaultTimeout = 30 * time.Second

// UserAgent is sent with every request
var UserAgent = "vs-updater"

// Transport is the network collaborator used by the updater
type Transport interface {
	// Exists reports whether a HEAD request for url succeeds
	Exists(ctx context.Context, url string) bool
	// FetchText returns the body of url as text
	FetchText(ctx context.Context, url string) (string, error)
	// FetchToFile downloads url into destDir, naming the file after the URL's
	// last path segment, and returns the written path
	FetchToFile(ctx context.Context, url, destDir string) (string, error)
}

// ProgressCallback is called during download with progress info
type ProgressCallback func(bytesComplete, totalBytes int64, percentage int)

// Client implements Transport with net/http and grab
type Client struct {
	httpClient *http.Client
	grab       *grab.Client

	// Timeout applies to FetchText; zero disables it
	Timeout  time.Duration
	Progress ProgressCallback
	Logger   *log.Logger
}

// NewClient creates a new transport client
func NewClient(httpClient *http.Client, logger *log.Logger) *Client {
	c := &Client{Timeout: DefaultTimeout, Logger: logger}
	c.SetHTTPClient(httpClient)
	return c
}

// SetHTTPClient sets the HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client *http.Client) {
	if client == nil {
		client = &http.Client{}
	}
	c.httpClient = client
	c.grab = grab.NewClient()
	c.grab.HTTPClient = client
	c.grab.UserAgent = UserAgent
}

// Exists reports whether a HEAD request for rawURL answers with a 2xx status
func (c *Client) Exists(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		c.logger().Debug("invalid probe url", "url", rawURL, "err", err)
		return false
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.logger().Warn("Existence check failed", "url", rawURL, "err", err)
		}
		return false
	}
	resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.logger().Debug("probe", "url", rawURL, "status", resp.StatusCode, "found", ok)
	return ok
}

// FetchText performs a GET for rawURL and returns the body
func (c *Client) FetchText(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	return string(body), nil
}

// FetchToFile downloads rawURL into destDir, always overwriting
func (c *Client) FetchToFile(ctx context.Context, rawURL, destDir string) (string, error) {
	name, err := FileName(rawURL)
	if err != nil {
		return "", err
	}

	target, err := paths.ValidatePath(destDir, filepath.Join(destDir, name))
	if err != nil {
		return "", fmt.Errorf("invalid download name %q: %w", name, err)
	}

	req, err := grab.NewRequest(target, rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.NoResume = true // Always overwrite, never resume
	req = req.WithContext(ctx)

	c.logger().Info("downloading", "url", rawURL)
	resp := c.grab.Do(req)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	lastPercentage := -1
loop:
	for {
		select {
		case <-ticker.C:
			if c.Progress != nil {
				var percentage int
				if resp.Size() > 0 {
					percentage = int(resp.Progress() * 100)
				}
				if percentage != lastPercentage {
					c.Progress(resp.BytesComplete(), resp.Size(), percentage)
					lastPercentage = percentage
				}
			}
		case <-resp.Done:
			if c.Progress != nil && resp.Size() > 0 {
				c.Progress(resp.BytesComplete(), resp.Size(), 100)
			}
			break loop
		}
	}

	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("download of %s failed: %w", rawURL, err)
	}

	c.logger().Debug("downloaded", "path", resp.Filename, "bytes", resp.BytesComplete())
	return resp.Filename, nil
}

// FileName returns the unescaped last path segment of rawURL
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url %q: %w", rawURL, err)
	}

	name := path.Base(u.EscapedPath())
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("url %q has no file name", rawURL)
	}

	unescaped, err := url.PathUnescape(name)
	if err != nil {
		return "", fmt.Errorf("failed to unescape %q: %w", name, err)
	}
	if err := paths.ValidateEntryName(unescaped); err != nil {
		return "", fmt.Errorf("url %q has an unusable file name: %w", rawURL, err)
	}
	return unescaped, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

func (c *Client) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}
