// Package search derives views of the catalog from a query string.
// Everything here is pure: the same catalog and query always give the
// same ordered result.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/marquee/internal/domain"
)

// Filter returns the titles whose title text contains query as a
// case-insensitive substring, in catalog order. An empty query returns
// the full catalog. The query is matched as given, spaces included.
func Filter(titles []domain.Title, query string) []domain.Title {
	if query == "" {
		return titles
	}

	needle := strings.ToLower(query)
	out := make([]domain.Title, 0, len(titles))
	for _, t := range titles {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Suggest returns up to limit "did you mean" titles for a query that
// matched nothing, best match first. Subsequence matches rank ahead of
// near-miss spellings.
func Suggest(titles []domain.Title, query string, limit int) []domain.Title {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 || len(titles) == 0 {
		return nil
	}

	lowerTitles := make([]string, len(titles))
	for i, t := range titles {
		lowerTitles[i] = strings.ToLower(t.Title)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, lowerTitles)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]domain.Title, 0, limit)
	seen := make(map[int]bool, limit)
	for _, r := range ranks {
		if len(out) == limit {
			return out
		}
		out = append(out, titles[r.OriginalIndex])
		seen[r.OriginalIndex] = true
	}

	// Typo tolerance for whatever slots remain
	maxTypos := allowedTypos(len([]rune(query)))
	type near struct {
		index    int
		distance int
	}
	var nears []near
	for i, lt := range lowerTitles {
		if seen[i] {
			continue
		}
		if d := closestWordDistance(query, lt); d <= maxTypos {
			nears = append(nears, near{i, d})
		}
	}
	sort.SliceStable(nears, func(i, j int) bool { return nears[i].distance < nears[j].distance })
	for _, n := range nears {
		if len(out) == limit {
			break
		}
		out = append(out, titles[n.index])
	}
	return out
}

// closestWordDistance compares query against the whole title and each of
// its words, returning the smallest edit distance.
func closestWordDistance(query, lowerTitle string) int {
	best := fuzzy.LevenshteinDistance(query, lowerTitle)
	for _, w := range strings.Fields(lowerTitle) {
		if d := fuzzy.LevenshteinDistance(query, w); d < best {
			best = d
		}
	}
	return best
}

// allowedTypos returns the number of typos allowed based on query length:
// 1-3 chars = 0, 4-6 chars = 1, 7+ chars = 2
func allowedTypos(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 6:
		return 1
	default:
		return 2
	}
}
