// Package server exposes the aggregation pipeline over HTTP.
package server

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"newsdash/internal/aggregator"
	"newsdash/internal/enrich"
	"newsdash/internal/feed"
	"newsdash/internal/grouper"
	"newsdash/internal/metrics"
	"newsdash/internal/mute"
	"newsdash/internal/sources"
)

// Server wires the HTTP routes over the pipeline components.
type Server struct {
	fetcher  aggregator.ArticleFetcher
	agg      *aggregator.Aggregator
	registry *sources.Registry
	enricher *enrich.Enricher
	started  time.Time
}

// New builds a server. enricher may be nil to disable image enrichment.
func New(f aggregator.ArticleFetcher, agg *aggregator.Aggregator, registry *sources.Registry, enricher *enrich.Enricher) *Server {
	return &Server{
		fetcher:  f,
		agg:      agg,
		registry: registry,
		enricher: enricher,
		started:  time.Now(),
	}
}

// Router assembles the gin engine with all routes registered.
func (s *Server) Router(debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/articles", s.GetArticles)
		api.GET("/top", s.GetTop)
		api.GET("/search", s.GetSearch)
		api.GET("/recommend", s.GetRecommend)
		api.GET("/export", s.ExportCSV)
		api.GET("/sources", s.GetSources)
	}

	r.GET("/health", s.GetHealth)
	r.GET("/metrics", s.GetMetrics)

	return r
}

// GetArticles serves one feed: /api/articles?source=yahoo&category=technology
// or a single-source search via q=.
func (s *Server) GetArticles(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source is required"})
		return
	}
	if _, ok := s.registry.Lookup(source); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown source: " + source})
		return
	}

	articles := s.fetcher.FetchArticles(c.Request.Context(), source, c.Query("category"), c.Query("q"))
	articles = s.postProcess(c, articles)

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

// GetTop serves the merged top-stories view. group=true collapses
// near-duplicate coverage into story groups.
func (s *Server) GetTop(c *gin.Context) {
	articles := s.agg.Top(c.Request.Context())
	articles = s.postProcess(c, articles)

	if c.Query("group") == "true" {
		groups := grouper.Group(articles)
		c.JSON(http.StatusOK, gin.H{
			"groups": groups,
			"count":  len(groups),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

// GetSearch runs a free-text query across the search-capable sources.
func (s *Server) GetSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	articles := s.agg.Search(c.Request.Context(), query)
	articles = s.postProcess(c, articles)

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
		"query":    query,
	})
}

// GetRecommend serves keyword-scored articles:
// /api/recommend?keywords=AI,宇宙
func (s *Server) GetRecommend(c *gin.Context) {
	keywords := splitParam(c.Query("keywords"))
	if len(keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keywords is required"})
		return
	}

	scored := s.agg.Recommend(c.Request.Context(), keywords)
	scored = filterScored(scored, splitParam(c.Query("mute")))
	s.enrichScored(c.Request.Context(), scored)

	c.JSON(http.StatusOK, gin.H{
		"articles": scored,
		"count":    len(scored),
		"keywords": keywords,
	})
}

// ExportCSV streams the requested view as a CSV download. The view is
// selected the same way as the JSON routes: q= for search, otherwise
// source= for one feed, otherwise top stories.
func (s *Server) ExportCSV(c *gin.Context) {
	ctx := c.Request.Context()

	var articles []feed.Article
	switch {
	case strings.TrimSpace(c.Query("q")) != "" && c.Query("source") == "":
		articles = s.agg.Search(ctx, c.Query("q"))
	case c.Query("source") != "":
		articles = s.fetcher.FetchArticles(ctx, c.Query("source"), c.Query("category"), c.Query("q"))
	default:
		articles = s.agg.Top(ctx)
	}
	articles = mute.Filter(articles, splitParam(c.Query("mute")))

	var buf bytes.Buffer
	if err := feed.WriteCSV(&buf, articles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="articles.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetSources lists the registered sources and their categories.
func (s *Server) GetSources(c *gin.Context) {
	type sourceInfo struct {
		Name       string   `json:"name"`
		Searchable bool     `json:"searchable"`
		Categories []string `json:"categories"`
	}

	var out []sourceInfo
	for _, name := range s.registry.Names() {
		src, _ := s.registry.Lookup(name)
		categories := make([]string, 0, len(src.Categories))
		for code := range src.Categories {
			categories = append(categories, code)
		}
		out = append(out, sourceInfo{
			Name:       src.Name,
			Searchable: src.SearchCapable(),
			Categories: categories,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sources": out})
}

func (s *Server) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Global.GetStats())
}

// postProcess applies the mute filter and optional image enrichment that
// every article-list route shares.
func (s *Server) postProcess(c *gin.Context, articles []feed.Article) []feed.Article {
	articles = mute.Filter(articles, splitParam(c.Query("mute")))
	if s.enricher != nil && c.Query("enrich") == "true" {
		s.enricher.EnrichAll(c.Request.Context(), articles)
	}
	return articles
}

func (s *Server) enrichScored(ctx context.Context, scored []feed.ScoredArticle) {
	if s.enricher == nil {
		return
	}
	articles := make([]feed.Article, len(scored))
	for i := range scored {
		articles[i] = scored[i].Article
	}
	s.enricher.EnrichAll(ctx, articles)
	for i := range scored {
		scored[i].Article.ImageURL = articles[i].ImageURL
	}
}

// filterScored drops scored articles whose title or summary contains a
// muted term.
func filterScored(scored []feed.ScoredArticle, words []string) []feed.ScoredArticle {
	if len(words) == 0 {
		return scored
	}
	out := make([]feed.ScoredArticle, 0, len(scored))
	for _, sa := range scored {
		if !mute.Matches(sa.Article, words) {
			out = append(out, sa)
		}
	}
	return out
}

// splitParam parses a comma-separated query parameter into trimmed,
// non-empty values.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
