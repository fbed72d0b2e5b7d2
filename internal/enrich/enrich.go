// Package enrich resolves thumbnails for articles whose feed entry
// carried no image, by fetching the article page and reading its
// OpenGraph metadata. This costs one network round-trip per article, so
// it is a separate, optional step with its own cache and concurrency cap,
// independent from the feed-level cache.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"newsdash/internal/feed"
	"newsdash/internal/metrics"
	"newsdash/internal/retry"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// maxPageBytes bounds how much of an article page gets read.
	maxPageBytes = 2 << 20
)

type cachedImage struct {
	url       string
	expiresAt time.Time
}

// Enricher fetches article pages to recover missing thumbnails.
type Enricher struct {
	http *http.Client
	sem  chan struct{}
	ttl  time.Duration

	mu     sync.RWMutex
	cached map[string]cachedImage
}

// New builds an enricher. concurrency caps simultaneous page fetches,
// ttl bounds how long resolved (including empty) results are remembered.
func New(timeout time.Duration, concurrency int, ttl time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Enricher{
		http:   &http.Client{Timeout: timeout},
		sem:    make(chan struct{}, concurrency),
		ttl:    ttl,
		cached: make(map[string]cachedImage),
	}
}

// ResolveImage returns a thumbnail URL for the article. Feed-provided
// images pass through untouched; otherwise the article page is fetched
// once per TTL window. Best-effort: failures yield an empty string.
func (e *Enricher) ResolveImage(ctx context.Context, a feed.Article) string {
	if a.ImageURL != "" {
		return a.ImageURL
	}
	if a.Link == "" || a.Link == feed.PlaceholderLink {
		return ""
	}
	if img, ok := e.lookup(a.Link); ok {
		return img
	}

	e.sem <- struct{}{}
	defer func() { <-e.sem }()

	var img string
	err := retry.Do(ctx, retry.Config{MaxAttempts: 2, Delay: 500 * time.Millisecond}, func() error {
		resolved, err := e.fetchImage(ctx, a.Link)
		if err != nil {
			return err
		}
		img = resolved
		return nil
	})
	if err != nil {
		slog.Debug("image enrichment failed", "link", a.Link, "err", err)
	}

	// Negative results are cached too, so a page without og:image is not
	// refetched for every render.
	e.store(a.Link, img)
	if img != "" {
		metrics.Global.IncrementImagesEnriched()
	}
	return img
}

// EnrichAll fills in missing images for a whole article list in place,
// fanning out under the concurrency cap.
func (e *Enricher) EnrichAll(ctx context.Context, articles []feed.Article) {
	var wg sync.WaitGroup
	for i := range articles {
		if articles[i].ImageURL != "" {
			continue
		}
		wg.Add(1)
		go func(a *feed.Article) {
			defer wg.Done()
			a.ImageURL = e.ResolveImage(ctx, *a)
		}(&articles[i])
	}
	wg.Wait()
}

func (e *Enricher) fetchImage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}

	if img := metaImage(body); img != "" {
		return feed.UpgradeImageURL(img), nil
	}

	// No OpenGraph metadata; let readability pick a lead image.
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", nil
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return "", nil
	}
	return feed.UpgradeImageURL(article.Image), nil
}

// metaImage reads og:image / twitter:image from the page head.
func metaImage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	selectors := []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
	}
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if img := strings.TrimSpace(content); img != "" {
				return img
			}
		}
	}
	return ""
}

func (e *Enricher) lookup(link string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.cached[link]
	if !ok || time.Now().After(c.expiresAt) {
		return "", false
	}
	return c.url, true
}

func (e *Enricher) store(link, img string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Opportunistic sweep to keep the map from growing unbounded.
	if len(e.cached) > 4096 {
		now := time.Now()
		for k, c := range e.cached {
			if now.After(c.expiresAt) {
				delete(e.cached, k)
			}
		}
	}
	e.cached[link] = cachedImage{url: img, expiresAt: time.Now().Add(e.ttl)}
}
