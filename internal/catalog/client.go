// Package catalog queries the MyInstants public API for playable sound clips.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/soundbyte/go-discord-soundboard/internal/config"
)

// Error definitions
var (
	ErrSoundNotFound = errors.New("sound not found in catalog")
	ErrUnavailable   = errors.New("catalog unavailable")
)

// Sound is a catalog entry. SoundURL is the direct media location and is
// unique per distinct clip.
type Sound struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	SoundURL string `json:"sound"`
}

// Client searches the catalog and resolves clip metadata.
type Client interface {
	// Search returns catalog entries matching the given text.
	Search(ctx context.Context, text string) ([]Sound, error)

	// Detail resolves a single entry by its catalog slug.
	Detail(ctx context.Context, slug string) (*Sound, error)
}

type httpClient struct {
	logger  *zap.Logger
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	// searchCache fronts autocomplete so repeated keystrokes of popular
	// queries do not hit the network.
	searchCache *lru.Cache[string, []Sound]
}

// NewClient creates a catalog client from the application configuration.
func NewClient(logger *zap.Logger, cfg *config.Config) (Client, error) {
	cache, err := lru.New[string, []Sound](cfg.Catalog.SearchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating search cache: %w", err)
	}

	return &httpClient{
		logger:      logger.Named("catalog"),
		baseURL:     strings.TrimRight(cfg.Catalog.BaseURL, "/"),
		http:        &http.Client{Timeout: cfg.Catalog.RequestTimeout()},
		limiter:     rate.NewLimiter(rate.Limit(cfg.Catalog.RequestsPerSecond), 1),
		searchCache: cache,
	}, nil
}

type searchResponse struct {
	Results []Sound `json:"results"`
}

func (c *httpClient) Search(ctx context.Context, text string) ([]Sound, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if cached, ok := c.searchCache.Get(key); ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/instants/?format=json&page=1&name=%s", c.baseURL, url.QueryEscape(key))

	var resp searchResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	c.searchCache.Add(key, resp.Results)

	return resp.Results, nil
}

func (c *httpClient) Detail(ctx context.Context, slug string) (*Sound, error) {
	endpoint := fmt.Sprintf("%s/instants/%s/?format=json", c.baseURL, url.PathEscape(slug))

	var sound Sound
	if err := c.get(ctx, endpoint, &sound); err != nil {
		return nil, err
	}

	return &sound, nil
}

func (c *httpClient) get(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Catalog request failed", zap.String("url", endpoint), zap.Error(err))

		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrSoundNotFound
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("Catalog returned unexpected status",
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode))

		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	return nil
}
