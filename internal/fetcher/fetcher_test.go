package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"newsdash/internal/cache"
	"newsdash/internal/sources"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>First story</title>
      <link>https://example.com/1</link>
      <description>&lt;p&gt;First summary&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second story</title>
      <link>https://example.com/2</link>
      <description>Second summary</description>
    </item>
  </channel>
</rss>`

func testRegistry(feedURL string) *sources.Registry {
	r := sources.NewRegistry()
	r.Add(sources.Source{
		Name:            "test",
		Categories:      map[string]string{"headlines": feedURL},
		DefaultCategory: "headlines",
	})
	return r
}

func TestFetchArticles_ParsesAndNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	c := New(testRegistry(srv.URL), nil, time.Second)
	articles := c.FetchArticles(context.Background(), "test", "headlines", "")

	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].Title != "First story" {
		t.Errorf("Title = %q", articles[0].Title)
	}
	if articles[0].Summary != "First summary" {
		t.Errorf("Summary = %q, want HTML stripped", articles[0].Summary)
	}
	if articles[0].Source != "test" {
		t.Errorf("Source = %q", articles[0].Source)
	}
	if articles[0].Published.IsZero() {
		t.Error("Published not parsed")
	}
	if !articles[1].Published.IsZero() {
		t.Error("second item has no date, Published should be zero")
	}
}

func TestFetchArticles_SendsBrowserUserAgent(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	c := New(testRegistry(srv.URL), nil, time.Second)
	c.FetchArticles(context.Background(), "test", "headlines", "")

	if ua, _ := gotUA.Load().(string); ua != browserUserAgent {
		t.Errorf("User-Agent = %q, want the browser string", ua)
	}
}

func TestFetchArticles_MalformedFeedYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not XML at all"))
	}))
	defer srv.Close()

	c := New(testRegistry(srv.URL), nil, time.Second)
	articles := c.FetchArticles(context.Background(), "test", "headlines", "")

	if articles == nil {
		t.Fatal("got nil, want empty slice")
	}
	if len(articles) != 0 {
		t.Errorf("got %d articles from a malformed feed, want 0", len(articles))
	}
}

func TestFetchArticles_UpstreamErrorYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(testRegistry(srv.URL), nil, time.Second)
	if got := c.FetchArticles(context.Background(), "test", "headlines", ""); len(got) != 0 {
		t.Errorf("got %d articles from a 500 upstream, want 0", len(got))
	}
}

func TestFetchArticles_UnknownSourceYieldsEmpty(t *testing.T) {
	c := New(sources.NewRegistry(), nil, time.Second)
	if got := c.FetchArticles(context.Background(), "ghost", "headlines", ""); len(got) != 0 {
		t.Errorf("got %d articles for an unknown source, want 0", len(got))
	}
}

func TestFetchArticles_CacheAvoidsRefetch(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	c := New(testRegistry(srv.URL), cache.New(time.Minute), time.Second)

	first := c.FetchArticles(context.Background(), "test", "headlines", "")
	second := c.FetchArticles(context.Background(), "test", "headlines", "")

	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Errorf("upstream hit %d times, want 1 (second call served from cache)", n)
	}
	if len(first) != len(second) {
		t.Errorf("cache returned different results: %d vs %d", len(first), len(second))
	}
}

func TestFetchArticles_FailureResultIsCachedToo(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(testRegistry(srv.URL), cache.New(time.Minute), time.Second)
	c.FetchArticles(context.Background(), "test", "headlines", "")
	c.FetchArticles(context.Background(), "test", "headlines", "")

	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Errorf("dead upstream hit %d times within the window, want 1", n)
	}
}
