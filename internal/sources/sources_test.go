package sources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolve_CategoryFeed(t *testing.T) {
	r := NewRegistry()
	ep, ok := r.Resolve("yahoo", "technology", "")
	if !ok {
		t.Fatal("Resolve failed for a built-in source")
	}
	if ep.Search {
		t.Error("category resolution marked as search")
	}
	if !strings.Contains(ep.URL, "it.xml") {
		t.Errorf("URL = %q, want the technology feed", ep.URL)
	}
}

func TestResolve_UnknownCategoryFallsBackToDefault(t *testing.T) {
	r := NewRegistry()
	def, ok := r.Resolve("nhk", "headlines", "")
	if !ok {
		t.Fatal("Resolve failed for default category")
	}
	got, ok := r.Resolve("nhk", "no-such-category", "")
	if !ok {
		t.Fatal("Resolve failed for unknown category")
	}
	if got.URL != def.URL {
		t.Errorf("unknown category resolved to %q, want default %q", got.URL, def.URL)
	}
}

func TestResolve_SearchQuery(t *testing.T) {
	r := NewRegistry()
	ep, ok := r.Resolve("bing", "", "量子コンピュータ")
	if !ok {
		t.Fatal("Resolve failed for a search query")
	}
	if !ep.Search {
		t.Error("search resolution not marked as search")
	}
	if !strings.Contains(ep.URL, "q=%E9%87%8F%E5%AD%90") {
		t.Errorf("URL = %q, want the query URL-escaped", ep.URL)
	}
	if !strings.Contains(ep.URL, "format=rss") || !strings.Contains(ep.URL, "cc=JP") {
		t.Errorf("URL = %q, missing rss format or region", ep.URL)
	}
}

func TestResolve_QueryAgainstNonSearchSource(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Resolve("yahoo", "", "anything"); ok {
		t.Error("Resolve succeeded for a query against a non-search source")
	}
}

func TestResolve_UnknownSource(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Resolve("nope", "headlines", ""); ok {
		t.Error("Resolve succeeded for an unknown source")
	}
}

func TestResolve_CaseInsensitiveNames(t *testing.T) {
	r := NewRegistry()
	a, ok1 := r.Resolve("Yahoo", "Technology", "")
	b, ok2 := r.Resolve("yahoo", "technology", "")
	if !ok1 || !ok2 || a.URL != b.URL {
		t.Errorf("case variants resolved differently: %v %v", a, b)
	}
}

func TestSearchSources(t *testing.T) {
	r := NewRegistry()
	got := r.SearchSources()
	if len(got) != 1 || got[0] != "bing" {
		t.Errorf("SearchSources = %v, want only bing among built-ins", got)
	}
}

func TestTopPairsCopy(t *testing.T) {
	r := NewRegistry()
	pairs := r.TopPairs()
	if len(pairs) == 0 {
		t.Fatal("no default top pairs")
	}
	pairs[0] = Pair{Source: "mutated", Category: "x"}
	if r.TopPairs()[0].Source == "mutated" {
		t.Error("TopPairs returned internal slice, caller mutation leaked")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	data := `
sources:
  - name: Custom
    search: "https://example.com/search?q=%s"
    default: main
    categories:
      Main: "https://example.com/main.xml"
      Extra: "https://example.com/extra.xml"
top:
  - source: custom
    category: main
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	ep, ok := r.Resolve("custom", "extra", "")
	if !ok || ep.URL != "https://example.com/extra.xml" {
		t.Errorf("Resolve(custom, extra) = %v %v, category codes should be lowercased", ep, ok)
	}
	if _, ok := r.Resolve("custom", "", "hello"); !ok {
		t.Error("loaded source should be search-capable")
	}

	top := r.TopPairs()
	if len(top) != 1 || top[0].Source != "custom" {
		t.Errorf("TopPairs = %v, want the file override", top)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadFile("/no/such/file.yaml"); err == nil {
		t.Error("LoadFile succeeded on a missing file")
	}
}
