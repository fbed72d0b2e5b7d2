package mute

import (
	"testing"

	"newsdash/internal/feed"
)

func TestFilter_RemovesTitleMatches(t *testing.T) {
	articles := []feed.Article{
		{Title: "Celebrity scandal rocks studio", Link: "a"},
		{Title: "Markets close higher", Link: "b"},
	}
	kept := Filter(articles, []string{"scandal"})
	if len(kept) != 1 || kept[0].Link != "b" {
		t.Errorf("Filter kept %+v, want only the non-matching article", kept)
	}
}

func TestFilter_ChecksSummaryToo(t *testing.T) {
	articles := []feed.Article{
		{Title: "Quiet headline", Summary: "Details of the scandal emerge.", Link: "a"},
	}
	if kept := Filter(articles, []string{"scandal"}); len(kept) != 0 {
		t.Errorf("Filter kept %d articles, want 0: summary matches must mute", len(kept))
	}
}

func TestFilter_CaseInsensitive(t *testing.T) {
	articles := []feed.Article{
		{Title: "SCANDAL at the ministry", Link: "a"},
	}
	if kept := Filter(articles, []string{"Scandal"}); len(kept) != 0 {
		t.Errorf("Filter is case-sensitive, kept %d articles", len(kept))
	}
}

func TestFilter_EmptyWordListIsNoOp(t *testing.T) {
	articles := []feed.Article{{Title: "a"}, {Title: "b"}}
	if kept := Filter(articles, nil); len(kept) != 2 {
		t.Errorf("Filter(nil words) kept %d, want all", len(kept))
	}
	if kept := Filter(articles, []string{" ", ""}); len(kept) != 2 {
		t.Errorf("Filter(blank words) kept %d, want all: blanks must not mute everything", len(kept))
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	articles := []feed.Article{
		{Title: "one", Link: "1"},
		{Title: "muted word here", Link: "2"},
		{Title: "three", Link: "3"},
		{Title: "four", Link: "4"},
	}
	kept := Filter(articles, []string{"muted"})
	want := []string{"1", "3", "4"}
	if len(kept) != len(want) {
		t.Fatalf("kept %d, want %d", len(kept), len(want))
	}
	for i, link := range want {
		if kept[i].Link != link {
			t.Errorf("position %d = %q, want %q", i, kept[i].Link, link)
		}
	}
}

func TestFilter_MultipleWords(t *testing.T) {
	articles := []feed.Article{
		{Title: "gossip column", Link: "a"},
		{Title: "serious analysis", Summary: "no rumor here either... actually a rumor", Link: "b"},
		{Title: "plain news", Link: "c"},
	}
	kept := Filter(articles, []string{"gossip", "rumor"})
	if len(kept) != 1 || kept[0].Link != "c" {
		t.Errorf("Filter kept %+v, want only the clean article", kept)
	}
}

func TestMatches(t *testing.T) {
	a := feed.Article{Title: "Tabloid exclusive", Summary: "celebrity gossip"}
	if !Matches(a, []string{"gossip"}) {
		t.Error("Matches = false, want true for summary hit")
	}
	if Matches(a, []string{"politics"}) {
		t.Error("Matches = true, want false for no hit")
	}
	if Matches(a, nil) {
		t.Error("Matches = true with no words")
	}
}
