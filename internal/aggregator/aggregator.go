// Package aggregator builds the multi-source views: top stories, search
// across sources, and keyword recommendations. Fetches fan out over a
// bounded worker pool so aggregate latency tracks the slowest feed, not
// the sum of all of them.
package aggregator

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"newsdash/internal/feed"
	"newsdash/internal/metrics"
	"newsdash/internal/scorer"
	"newsdash/internal/sources"
)

// ArticleFetcher is the aggregator's only upstream dependency. It must
// absorb failures: a fetch that fails yields an empty slice.
type ArticleFetcher interface {
	FetchArticles(ctx context.Context, source, category, query string) []feed.Article
}

// Config bounds the aggregate views.
type Config struct {
	// PerSourceCap limits each feed's contribution to the top view so one
	// prolific source cannot crowd out the others.
	PerSourceCap int
	// TopLimit caps the merged top-stories list.
	TopLimit int
	// Workers sizes the fan-out pool.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.PerSourceCap <= 0 {
		c.PerSourceCap = 5
	}
	if c.TopLimit <= 0 {
		c.TopLimit = 60
	}
	if c.Workers <= 0 {
		c.Workers = 10
	}
	return c
}

// Aggregator merges articles from many (source, category) feeds.
type Aggregator struct {
	fetcher  ArticleFetcher
	registry *sources.Registry
	cfg      Config
}

// New wires an aggregator over a fetcher and source registry.
func New(fetcher ArticleFetcher, registry *sources.Registry, cfg Config) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		registry: registry,
		cfg:      cfg.withDefaults(),
	}
}

type job struct {
	source   string
	category string
	query    string
	// cap > 0 truncates this feed's result before merging
	cap int
}

// Top fetches every registered (source, category) pair concurrently,
// caps each feed's contribution, deduplicates by link, sorts newest
// first and truncates to the overall limit.
func (a *Aggregator) Top(ctx context.Context) []feed.Article {
	start := time.Now()
	defer func() {
		metrics.Global.RecordAggregationTime(time.Since(start))
		metrics.Global.SetLastRun()
	}()

	jobs := make([]job, 0, len(a.registry.TopPairs()))
	for _, p := range a.registry.TopPairs() {
		jobs = append(jobs, job{source: p.Source, category: p.Category, cap: a.cfg.PerSourceCap})
	}

	merged := a.fanOut(ctx, jobs)
	sortNewestFirst(merged)
	if len(merged) > a.cfg.TopLimit {
		merged = merged[:a.cfg.TopLimit]
	}
	return merged
}

// Search runs a free-text query against every search-capable source and
// merges the results without per-source capping.
func (a *Aggregator) Search(ctx context.Context, query string) []feed.Article {
	if query == "" {
		return []feed.Article{}
	}

	var jobs []job
	for _, name := range a.registry.SearchSources() {
		jobs = append(jobs, job{source: name, query: query})
	}

	merged := a.fanOut(ctx, jobs)
	sortNewestFirst(merged)
	return merged
}

// Recommend builds the recommended-articles view: one targeted search per
// keyword against the search-capable sources (recall for topics that
// never reach general headlines) plus a capped headline sweep, then
// dedup, score and keep only positive scores sorted descending.
func (a *Aggregator) Recommend(ctx context.Context, keywords []string) []feed.ScoredArticle {
	keywords = cleanKeywords(keywords)
	if len(keywords) == 0 {
		return []feed.ScoredArticle{}
	}

	var jobs []job
	for _, kw := range keywords {
		for _, name := range a.registry.SearchSources() {
			jobs = append(jobs, job{source: name, query: kw})
		}
	}
	for _, p := range a.registry.TopPairs() {
		jobs = append(jobs, job{source: p.Source, category: p.Category, cap: a.cfg.PerSourceCap})
	}

	merged := a.fanOut(ctx, jobs)
	return scorer.Rank(merged, keywords)
}

// fanOut runs the jobs on the worker pool and merges results while
// tracking seen links. Completion order across workers is not
// deterministic, so which copy of a duplicated link survives is
// arbitrary; kept duplicates are link-identical and display-equivalent.
func (a *Aggregator) fanOut(ctx context.Context, jobs []job) []feed.Article {
	if len(jobs) == 0 {
		return []feed.Article{}
	}

	jobCh := make(chan job)
	results := make(chan []feed.Article, len(jobs))

	workers := a.cfg.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				articles := a.fetcher.FetchArticles(ctx, j.source, j.category, j.query)
				if j.cap > 0 && len(articles) > j.cap {
					articles = articles[:j.cap]
				}
				results <- articles
			}
		}()
	}

	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()
	close(results)

	seen := make(map[string]struct{})
	merged := make([]feed.Article, 0, len(jobs)*a.cfg.PerSourceCap)
	dropped := 0
	for batch := range results {
		for _, art := range batch {
			if _, dup := seen[art.Link]; dup {
				dropped++
				continue
			}
			seen[art.Link] = struct{}{}
			merged = append(merged, art)
		}
	}
	if dropped > 0 {
		metrics.Global.AddDuplicatesDropped(dropped)
	}
	return merged
}

// sortNewestFirst orders articles by publish time descending. Articles
// without a parseable date sort after all dated ones; ties keep merge
// order.
func sortNewestFirst(articles []feed.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		pi, pj := articles[i].Published, articles[j].Published
		if pi.IsZero() != pj.IsZero() {
			return !pi.IsZero()
		}
		return pi.After(pj)
	})
}

func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
		if len(out) == scorer.MaxKeywords {
			break
		}
	}
	return out
}
