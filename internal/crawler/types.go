package crawler

import (
	"context"
	"io"
	"time"

	"sjsage522/catalogworker/internal/catalog"
)

// Crawler fetches and walks the listing page of one search query
type Crawler interface {
	// Crawl returns the product records of the listing for query
	Crawl(ctx context.Context, query string) ([]catalog.ProductRecord, catalog.WalkStats, error)

	// GetProvider returns the storefront name for logs and messages
	GetProvider() string
}

// FetchFunc retrieves a page body as UTF-8
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// CrawlerConfig contains configuration for a listing crawler
type CrawlerConfig struct {
	Provider   string
	BaseURL    string
	SearchPath string
	CacheKey   string
	BlockTime  time.Duration
	FetchDelay time.Duration
}
