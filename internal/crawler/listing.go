package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"sjsage522/catalogworker/helpers"
	"sjsage522/catalogworker/internal/catalog"
	"sjsage522/catalogworker/logger"
	apperrors "sjsage522/catalogworker/pkg/errors"
	"sjsage522/catalogworker/services/cache"

	"golang.org/x/time/rate"
)

// ListingCrawler fetches search result pages one at a time and hands
// them to a catalog walker
type ListingCrawler struct {
	cfg     CrawlerConfig
	gate    *cache.Gate
	limiter *rate.Limiter
	fetch   FetchFunc
	walker  *catalog.Walker
}

// NewListingCrawler creates a crawler. Successive fetches are spaced by
// cfg.FetchDelay; after a rate-limit answer the source is blocked in the
// cache for cfg.BlockTime.
func NewListingCrawler(cfg CrawlerConfig, cacheSvc cache.CacheService, walker *catalog.Walker) *ListingCrawler {
	limit := rate.Inf
	if cfg.FetchDelay > 0 {
		limit = rate.Every(cfg.FetchDelay)
	}
	if walker == nil {
		walker = catalog.NewWalker()
	}
	return &ListingCrawler{
		cfg:     cfg,
		gate:    cache.NewGate(cacheSvc),
		limiter: rate.NewLimiter(limit, 1),
		fetch:   helpers.FetchWithRandomHeaders,
		walker:  walker,
	}
}

// WithFetchFunc replaces the HTTP fetch, mainly for tests
func (c *ListingCrawler) WithFetchFunc(fn FetchFunc) *ListingCrawler {
	c.fetch = fn
	return c
}

// GetProvider returns the provider name
func (c *ListingCrawler) GetProvider() string {
	return c.cfg.Provider
}

// SearchURL returns the listing URL for query
func (c *ListingCrawler) SearchURL(query string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") +
		fmt.Sprintf(c.cfg.SearchPath, url.QueryEscape(strings.TrimSpace(query)))
}

// Crawl fetches the listing for query and walks it
func (c *ListingCrawler) Crawl(ctx context.Context, query string) ([]catalog.ProductRecord, catalog.WalkStats, error) {
	log := logger.ForCrawler(query)

	body, err := c.fetchListing(ctx, query)
	if err != nil {
		return nil, catalog.WalkStats{}, err
	}

	records, stats, err := c.walker.WalkReader(body)
	if err != nil {
		return nil, stats, err
	}

	log.Debug().
		Int("fragments", stats.Fragments).
		Int("records", len(records)).
		Msg("Listing crawled")

	return records, stats, nil
}

// fetchListing fetches the page with throttling and rate-limit blocking
func (c *ListingCrawler) fetchListing(ctx context.Context, query string) (io.Reader, error) {
	blocked, err := c.gate.Blocked(c.cfg.CacheKey)
	if err != nil {
		logger.ForCache().Warn().Err(err).Str("key", c.cfg.CacheKey).Msg("Rate limit check failed, fetching anyway")
	}
	if blocked {
		return nil, apperrors.NewRateLimit(c.cfg.Provider, c.cfg.BlockTime)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewNetwork(c.cfg.Provider, "throttle wait", err)
	}

	target := c.SearchURL(query)
	body, err := c.fetch(ctx, target)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			if blockErr := c.gate.Block(c.cfg.CacheKey, c.cfg.BlockTime); blockErr != nil {
				logger.ForCache().Warn().Err(blockErr).Str("key", c.cfg.CacheKey).Msg("Failed to set rate limit block")
			}
			return nil, apperrors.NewRateLimit(c.cfg.Provider, c.cfg.BlockTime)
		}
		return nil, apperrors.NewNetwork(c.cfg.Provider, "fetch "+target, err)
	}
	return body, nil
}
