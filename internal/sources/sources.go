// Package sources maps logical (source, category, query) triples to
// concrete feed endpoints. It is a lookup table, not an algorithm: every
// source declares a closed set of category codes plus an optional search
// template for free-text queries.
package sources

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Endpoint is a resolved feed location.
type Endpoint struct {
	URL    string
	Search bool
}

// Pair names one (source, category) combination to aggregate.
type Pair struct {
	Source   string `yaml:"source"`
	Category string `yaml:"category"`
}

// Source describes one upstream provider.
type Source struct {
	Name string
	// SearchTemplate contains a single %s placeholder for the URL-escaped
	// query. Empty means the source cannot be searched.
	SearchTemplate  string
	Categories      map[string]string
	DefaultCategory string
}

// SearchCapable reports whether free-text queries can be resolved.
func (s Source) SearchCapable() bool {
	return s.SearchTemplate != ""
}

// Registry holds the known sources in registration order.
type Registry struct {
	sources  map[string]Source
	order    []string
	topPairs []Pair
}

// NewRegistry returns a registry preloaded with the built-in sources.
func NewRegistry() *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range builtinSources() {
		r.Add(s)
	}
	r.topPairs = defaultTopPairs()
	return r
}

// Add registers or replaces a source. The name is lowercased.
func (r *Registry) Add(s Source) {
	name := strings.ToLower(strings.TrimSpace(s.Name))
	if name == "" {
		return
	}
	s.Name = name
	if _, exists := r.sources[name]; !exists {
		r.order = append(r.order, name)
	}
	r.sources[name] = s
}

// Resolve maps (source, category, query) to a concrete endpoint. A
// non-empty query resolves through the source's search template; sources
// without one yield an empty endpoint. An unrecognized category falls back
// to the source's default category instead of failing.
func (r *Registry) Resolve(source, category, query string) (Endpoint, bool) {
	s, ok := r.sources[strings.ToLower(strings.TrimSpace(source))]
	if !ok {
		return Endpoint{}, false
	}

	if q := strings.TrimSpace(query); q != "" {
		if !s.SearchCapable() {
			return Endpoint{}, false
		}
		return Endpoint{
			URL:    fmt.Sprintf(s.SearchTemplate, url.QueryEscape(q)),
			Search: true,
		}, true
	}

	code := strings.ToLower(strings.TrimSpace(category))
	feedURL, ok := s.Categories[code]
	if !ok {
		feedURL, ok = s.Categories[s.DefaultCategory]
		if !ok {
			return Endpoint{}, false
		}
	}
	return Endpoint{URL: feedURL}, true
}

// Lookup returns the source definition by name.
func (r *Registry) Lookup(name string) (Source, bool) {
	s, ok := r.sources[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Names lists registered sources in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// SearchSources lists the sources that accept free-text queries.
func (r *Registry) SearchSources() []string {
	var out []string
	for _, name := range r.order {
		if r.sources[name].SearchCapable() {
			out = append(out, name)
		}
	}
	return out
}

// TopPairs returns the (source, category) pairs aggregated for the top
// stories view.
func (r *Registry) TopPairs() []Pair {
	out := make([]Pair, len(r.topPairs))
	copy(out, r.topPairs)
	return out
}

// SetTopPairs overrides the aggregation registry.
func (r *Registry) SetTopPairs(pairs []Pair) {
	if len(pairs) > 0 {
		r.topPairs = pairs
	}
}

// fileConfig is the YAML shape of an external sources file.
type fileConfig struct {
	Sources []struct {
		Name       string            `yaml:"name"`
		Search     string            `yaml:"search"`
		Default    string            `yaml:"default"`
		Categories map[string]string `yaml:"categories"`
	} `yaml:"sources"`
	Top []Pair `yaml:"top"`
}

// LoadFile merges sources from a YAML file into the registry. Entries with
// names matching built-ins replace them.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sources config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("parse sources config: %w", err)
	}
	for _, s := range cfg.Sources {
		categories := make(map[string]string, len(s.Categories))
		for code, u := range s.Categories {
			categories[strings.ToLower(code)] = u
		}
		def := strings.ToLower(s.Default)
		if def == "" {
			for code := range categories {
				def = code
				break
			}
		}
		r.Add(Source{
			Name:            s.Name,
			SearchTemplate:  s.Search,
			Categories:      categories,
			DefaultCategory: def,
		})
	}
	r.SetTopPairs(cfg.Top)
	return nil
}

// Built-in sources. Bing is the only search-capable one; its category
// feeds are topic searches behind the same RSS endpoint. The portal feeds
// are fixed per-category URLs.
func builtinSources() []Source {
	bingSearch := "https://www.bing.com/news/search?q=%s&format=rss&cc=JP"
	bingCategory := func(topic string) string {
		return fmt.Sprintf(bingSearch, url.QueryEscape(topic))
	}
	return []Source{
		{
			Name:           "bing",
			SearchTemplate: bingSearch,
			Categories: map[string]string{
				"headlines":     bingCategory("トップニュース"),
				"technology":    bingCategory("テクノロジー"),
				"business":      bingCategory("ビジネス"),
				"science":       bingCategory("科学"),
				"entertainment": bingCategory("エンタメ"),
				"sports":        bingCategory("スポーツ"),
				"health":        bingCategory("健康"),
			},
			DefaultCategory: "headlines",
		},
		{
			Name: "yahoo",
			Categories: map[string]string{
				"headlines":     "https://news.yahoo.co.jp/rss/topics/top-picks.xml",
				"technology":    "https://news.yahoo.co.jp/rss/topics/it.xml",
				"business":      "https://news.yahoo.co.jp/rss/topics/business.xml",
				"science":       "https://news.yahoo.co.jp/rss/topics/science.xml",
				"entertainment": "https://news.yahoo.co.jp/rss/topics/entertainment.xml",
				"sports":        "https://news.yahoo.co.jp/rss/topics/sports.xml",
			},
			DefaultCategory: "headlines",
		},
		{
			Name: "nhk",
			Categories: map[string]string{
				"headlines": "https://www.nhk.or.jp/rss/news/cat0.xml",
				"science":   "https://www.nhk.or.jp/rss/news/cat3.xml",
				"business":  "https://www.nhk.or.jp/rss/news/cat5.xml",
				"sports":    "https://www.nhk.or.jp/rss/news/cat7.xml",
			},
			DefaultCategory: "headlines",
		},
		{
			Name: "itmedia",
			Categories: map[string]string{
				"technology": "https://rss.itmedia.co.jp/rss/2.0/news_bursts.xml",
				"ai":         "https://rss.itmedia.co.jp/rss/2.0/aiplus.xml",
			},
			DefaultCategory: "technology",
		},
	}
}

func defaultTopPairs() []Pair {
	return []Pair{
		{Source: "bing", Category: "headlines"},
		{Source: "yahoo", Category: "headlines"},
		{Source: "nhk", Category: "headlines"},
		{Source: "itmedia", Category: "technology"},
		{Source: "itmedia", Category: "ai"},
		{Source: "bing", Category: "technology"},
	}
}
