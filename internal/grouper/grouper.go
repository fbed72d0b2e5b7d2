// Package grouper clusters near-duplicate stories by title similarity so
// the presentation layer can fold repeated coverage under one card.
package grouper

import (
	"newsdash/internal/feed"
)

// SimilarityThreshold is the minimum title similarity ratio for two
// articles to be considered the same story.
const SimilarityThreshold = 0.6

// Group partitions articles into clusters with a single left-to-right
// pass. Each not-yet-grouped article opens a group and claims every later
// ungrouped article whose title is similar to its own; similarity is
// always judged against the group's representative, never transitively.
// Groups appear in the order their representatives appear in the input.
// O(n²) over the input, fine for the tens of articles per request.
func Group(articles []feed.Article) []feed.Group {
	grouped := make([]bool, len(articles))
	groups := make([]feed.Group, 0, len(articles))

	for i := range articles {
		if grouped[i] {
			continue
		}
		grouped[i] = true
		g := feed.Group{Representative: articles[i]}

		for j := i + 1; j < len(articles); j++ {
			if grouped[j] {
				continue
			}
			if Ratio(articles[i].Title, articles[j].Title) >= SimilarityThreshold {
				grouped[j] = true
				g.Related = append(g.Related, articles[j])
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// Ratio returns a similarity ratio in [0, 1] between two strings:
// 2*LCS/(len(a)+len(b)) counted in runes, so multibyte titles compare
// by character rather than by byte. Two empty strings are identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(lcsLength(ra, rb)) / float64(total)
}

// lcsLength computes the longest-common-subsequence length with a
// two-row DP table.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
