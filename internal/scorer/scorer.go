// Package scorer assigns keyword relevance scores to articles. Scoring is
// purely additive substring matching; there is no model behind it.
package scorer

import (
	"sort"
	"strings"

	"newsdash/internal/feed"
)

const (
	titlePoints   = 30
	summaryPoints = 20
	matchBonus    = 15

	// MaxKeywords caps the interest list; extra keywords are ignored.
	MaxKeywords = 5
)

// Score computes the relevance of an article against interest keywords.
// Each keyword adds 30 points for a title match, else 20 for a summary
// match; a title match suppresses the summary check for that keyword.
// One flat 15-point bonus applies when anything matched at all. No
// keywords, or no matches, scores exactly 0.
func Score(a feed.Article, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}
	if len(keywords) > MaxKeywords {
		keywords = keywords[:MaxKeywords]
	}

	title := strings.ToLower(a.Title)
	summary := strings.ToLower(a.Summary)

	score := 0
	matched := false
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) {
			score += titlePoints
			matched = true
		} else if strings.Contains(summary, kw) {
			score += summaryPoints
			matched = true
		}
	}
	if matched {
		score += matchBonus
	}
	return score
}

// Rank scores every article, keeps only positive scores and sorts them
// descending. The sort is stable: ties keep their input order, which for
// aggregated input is the fetch-merge order.
func Rank(articles []feed.Article, keywords []string) []feed.ScoredArticle {
	ranked := make([]feed.ScoredArticle, 0, len(articles))
	for _, a := range articles {
		if s := Score(a, keywords); s > 0 {
			ranked = append(ranked, feed.ScoredArticle{Score: s, Article: a})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
