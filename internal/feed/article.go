package feed

import (
	"encoding/csv"
	"io"
	"time"
)

const (
	// PlaceholderTitle is shown when a feed entry carries no title at all.
	PlaceholderTitle = "(untitled)"
	// PlaceholderLink marks entries without a usable link. Such articles are
	// displayable but cannot be deduplicated against real URLs or bookmarked.
	PlaceholderLink = "#"

	publishedLayout = "2006-01-02 15:04:05"
)

// Article is the canonical, normalized representation of one feed entry.
// It is created once by Normalize and never mutated afterwards, except for
// the optional image enrichment step which may fill in an empty ImageURL.
type Article struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Summary  string `json:"summary"`
	ImageURL string `json:"image_url,omitempty"`
	Source   string `json:"source"`

	// Published is the normalized publish timestamp. The zero value means
	// the feed provided no parseable date; such articles sort after dated
	// ones. PublishedRaw keeps whatever date string the feed did provide,
	// for display only.
	Published    time.Time `json:"published"`
	PublishedRaw string    `json:"published_raw,omitempty"`
}

// FormatPublished renders the timestamp as "YYYY-MM-DD HH:MM:SS", falling
// back to the raw upstream string when no structured date was available.
func (a Article) FormatPublished() string {
	if a.Published.IsZero() {
		return a.PublishedRaw
	}
	return a.Published.Format(publishedLayout)
}

// ScoredArticle pairs an article with its keyword relevance score.
type ScoredArticle struct {
	Score   int     `json:"score"`
	Article Article `json:"article"`
}

// Group is a non-empty list of near-duplicate articles. The first element
// is the representative shown to the user, the rest are related coverage.
type Group struct {
	Representative Article   `json:"representative"`
	Related        []Article `json:"related,omitempty"`
}

// Articles returns the full member list, representative first.
func (g Group) Articles() []Article {
	out := make([]Article, 0, 1+len(g.Related))
	out = append(out, g.Representative)
	return append(out, g.Related...)
}

// Record flattens an article into the columns used for tabular export:
// title, link, source, published, summary.
func (a Article) Record() []string {
	return []string{a.Title, a.Link, a.Source, a.FormatPublished(), a.Summary}
}

// WriteCSV writes articles as delimited records suitable for the bookmark
// export collaborator.
func WriteCSV(w io.Writer, articles []Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"title", "link", "source", "published", "summary"}); err != nil {
		return err
	}
	for _, a := range articles {
		if err := cw.Write(a.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
