// Package mute suppresses articles containing user-banned terms.
package mute

import (
	"strings"

	"newsdash/internal/feed"
)

// Filter returns the articles whose title and summary contain none of the
// banned substrings, case-insensitively, preserving input order. An empty
// or all-blank word list is a no-op returning the input unchanged.
func Filter(articles []feed.Article, words []string) []feed.Article {
	banned := normalize(words)
	if len(banned) == 0 {
		return articles
	}

	kept := make([]feed.Article, 0, len(articles))
	for _, a := range articles {
		if !matchesAny(a, banned) {
			kept = append(kept, a)
		}
	}
	return kept
}

// Matches reports whether the article would be suppressed by the given
// word list.
func Matches(a feed.Article, words []string) bool {
	return matchesAny(a, normalize(words))
}

func normalize(words []string) []string {
	banned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			banned = append(banned, w)
		}
	}
	return banned
}

func matchesAny(a feed.Article, banned []string) bool {
	title := strings.ToLower(a.Title)
	summary := strings.ToLower(a.Summary)
	for _, w := range banned {
		if strings.Contains(title, w) || strings.Contains(summary, w) {
			return true
		}
	}
	return false
}
