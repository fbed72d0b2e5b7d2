// Package fetcher retrieves and normalizes one feed per call. Transport
// and parse failures are absorbed into empty results: a broken upstream
// must never break the aggregate view.
package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdash/internal/cache"
	"newsdash/internal/feed"
	"newsdash/internal/metrics"
	"newsdash/internal/sources"
)

// Some portals serve reduced or empty feeds to unknown clients, so the
// fetcher identifies as a regular browser.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Client fetches feeds through the source registry with a shared HTTP
// client and result cache.
type Client struct {
	registry *sources.Registry
	cache    *cache.Cache
	http     *http.Client
}

// New wires a fetcher. A nil cache disables memoization.
func New(registry *sources.Registry, c *cache.Cache, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		registry: registry,
		cache:    c,
		http:     &http.Client{Timeout: timeout},
	}
}

// FetchArticles resolves (source, category, query) and returns its
// normalized articles, served from cache within the freshness window.
// It never returns an error; unknown sources, dead upstreams and
// malformed feeds all yield an empty slice.
func (c *Client) FetchArticles(ctx context.Context, source, category, query string) []feed.Article {
	key := cache.Key(source, category, query)
	if c.cache != nil {
		if articles, ok := c.cache.Get(key); ok {
			metrics.Global.IncrementCacheHits()
			return articles
		}
	}
	metrics.Global.IncrementCacheMisses()

	articles := c.fetch(ctx, source, category, query)
	if c.cache != nil {
		c.cache.Set(key, articles)
	}
	return articles
}

func (c *Client) fetch(ctx context.Context, source, category, query string) []feed.Article {
	endpoint, ok := c.registry.Resolve(source, category, query)
	if !ok {
		slog.Debug("no endpoint for request", "source", source, "category", category)
		return []feed.Article{}
	}

	parser := gofeed.NewParser()
	parser.UserAgent = browserUserAgent
	parser.Client = c.http

	parsed, err := parser.ParseURLWithContext(endpoint.URL, ctx)
	if err != nil {
		metrics.Global.IncrementFetchErrors()
		slog.Warn("feed fetch failed", "source", source, "url", endpoint.URL, "err", err)
		return []feed.Article{}
	}

	metrics.Global.IncrementFeedsFetched()
	articles := feed.NormalizeAll(parsed.Items, source)
	metrics.Global.AddArticlesNormalized(len(articles))
	slog.Debug("feed fetched", "source", source, "category", category, "articles", len(articles))
	return articles
}
