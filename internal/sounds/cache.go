// Package sounds maintains the on-disk store of downloaded sound clips.
package sounds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/soundbyte/go-discord-soundboard/internal/config"
)

// ErrDownloadFailed covers remote fetch errors, non-success statuses and
// local write errors.
var ErrDownloadFailed = errors.New("unable to download the sound")

// Cache is a content-addressed store of clip files keyed by source URL.
// Entries are append-only for the lifetime of the process: once a file is
// fully written it is never evicted, and repeated requests for the same URL
// resolve to the same path without touching the network.
type Cache struct {
	logger *zap.Logger
	dir    string
	http   *http.Client

	// group collapses concurrent downloads of the same URL into one fetch;
	// a failed flight is not remembered, so the next caller retries.
	group singleflight.Group

	mu    sync.RWMutex
	ready map[string]string // source URL -> local file path
}

// NewCache creates the cache and its backing directory.
func NewCache(logger *zap.Logger, cfg *config.Config) (*Cache, error) {
	if err := os.MkdirAll(cfg.Sounds.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating sounds directory: %w", err)
	}

	return &Cache{
		logger: logger.Named("sound_cache"),
		dir:    cfg.Sounds.Directory,
		http:   &http.Client{},
		ready:  make(map[string]string),
	}, nil
}

// Ensure returns a local path to a fully written copy of the clip at
// sourceURL, downloading it if necessary. Concurrent callers for the same URL
// share a single download and either all succeed with the same path or all
// fail with the first flight's error.
func (c *Cache) Ensure(ctx context.Context, sourceURL string) (string, error) {
	c.mu.RLock()
	p, ok := c.ready[sourceURL]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	v, err, _ := c.group.Do(sourceURL, func() (any, error) {
		return c.fetch(ctx, sourceURL)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

func (c *Cache) fetch(ctx context.Context, sourceURL string) (string, error) {
	name, err := fileName(sourceURL)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(c.dir, name)

	// A file left over from an earlier run is as good as a fresh download.
	if _, err := os.Stat(dest); err == nil {
		c.markReady(sourceURL, dest)

		return dest, nil
	}

	if err := c.download(ctx, sourceURL, dest); err != nil {
		c.logger.Warn("Sound download failed", zap.String("url", sourceURL), zap.Error(err))

		return "", err
	}

	c.markReady(sourceURL, dest)
	c.logger.Info("Sound downloaded", zap.String("url", sourceURL), zap.String("path", dest))

	return dest, nil
}

func (c *Cache) download(ctx context.Context, sourceURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	// Stream straight to disk so memory use stays bounded by the copy
	// buffer, not the clip size.
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dest)

		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(dest)

		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	return nil
}

func (c *Cache) markReady(sourceURL, dest string) {
	c.mu.Lock()
	c.ready[sourceURL] = dest
	c.mu.Unlock()
}

// fileName derives a deterministic file name from the URL's trailing path
// segment so identical URLs reuse the same file across runs.
func fileName(sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("%w: no file name in url %q", ErrDownloadFailed, sourceURL)
	}

	return base, nil
}
