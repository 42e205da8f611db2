// Package download fetches installer binaries over HTTP with a size cap
// and a per-invocation URL cache so the same URL is never fetched twice in
// one run.
package download

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/fulmenhq/manifold/pkg/logger"
)

// ErrSizeExceeded indicates the response body exceeded the configured cap.
var ErrSizeExceeded = errors.New("download exceeds maximum allowed size")

// HTTPError carries a non-success status for user-facing reporting.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("downloading %s: %s", e.URL, e.Status)
}

// Downloader fetches URLs into a working directory.
type Downloader struct {
	client  *http.Client
	dir     string
	maxSize int64
}

// New creates a Downloader writing into dir. maxSize of 0 means no cap.
func New(dir string, maxSize int64, timeout time.Duration) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		dir:     dir,
		maxSize: maxSize,
	}
}

// Fetch downloads one URL and returns the local file path.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid installer URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if d.maxSize > 0 && resp.ContentLength > d.maxSize {
		return "", fmt.Errorf("%w: %s is %s (cap %s)", ErrSizeExceeded, rawURL,
			humanize.IBytes(uint64(resp.ContentLength)), humanize.IBytes(uint64(d.maxSize)))
	}

	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		return "", err
	}
	dest := filepath.Join(d.dir, fileNameFor(u))
	out, err := os.Create(dest) // #nosec G304 -- path derives from our own working dir
	if err != nil {
		return "", err
	}

	reader := io.Reader(resp.Body)
	if d.maxSize > 0 {
		reader = io.LimitReader(resp.Body, d.maxSize+1)
	}
	written, err := io.Copy(out, reader)
	closeErr := out.Close()
	if err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	if closeErr != nil {
		_ = os.Remove(dest)
		return "", closeErr
	}
	if d.maxSize > 0 && written > d.maxSize {
		_ = os.Remove(dest)
		return "", fmt.Errorf("%w: %s", ErrSizeExceeded, rawURL)
	}

	logger.Debug("downloaded installer",
		logger.String("url", rawURL),
		logger.String("size", humanize.IBytes(uint64(written)))) // #nosec G115 -- io.Copy count is non-negative
	return dest, nil
}

// fileNameFor derives a stable local file name from the URL path, keeping
// the extension the sniffer relies on.
func fileNameFor(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		name = "installer"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '?', '#', '%', '&', '=', ' ':
			return '_'
		}
		return r
	}, name)
}

// Cache memoizes URL downloads for the lifetime of one command invocation.
// It is deliberately not safe for concurrent use across commands; the batch
// helper serializes cache access itself.
type Cache struct {
	downloader *Downloader
	paths      map[string]string
	hits       int
	misses     int
}

// NewCache wraps a Downloader with URL memoization.
func NewCache(d *Downloader) *Cache {
	return &Cache{downloader: d, paths: make(map[string]string)}
}

// Get returns the local path for a URL, downloading on first use.
func (c *Cache) Get(ctx context.Context, rawURL string) (string, error) {
	if p, ok := c.paths[rawURL]; ok {
		c.hits++
		return p, nil
	}
	p, err := c.downloader.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	c.misses++
	c.paths[rawURL] = p
	return p, nil
}

// Stats reports cache hits and misses, for tests and debug logging.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// GetAll resolves every URL, downloading uncached ones with bounded
// concurrency, and returns url → local path. The manifest core never
// orchestrates concurrency itself; this is strictly caller-level fan-out.
func (c *Cache) GetAll(ctx context.Context, urls []string) (map[string]string, error) {
	paths := make(map[string]string, len(urls))
	queued := make(map[string]struct{})
	var pending []string
	for _, u := range urls {
		if p, ok := c.paths[u]; ok {
			c.hits++
			paths[u] = p
			continue
		}
		// A URL listed twice is fetched once.
		if _, dup := queued[u]; dup {
			continue
		}
		queued[u] = struct{}{}
		pending = append(pending, u)
	}

	results := make([]string, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for i, u := range pending {
		g.Go(func() error {
			p, err := c.downloader.Fetch(gctx, u)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, u := range pending {
		c.misses++
		c.paths[u] = results[i]
		paths[u] = results[i]
	}
	return paths, nil
}
