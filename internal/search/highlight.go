package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Highlight returns the rune positions of title that query matched: the
// substring span when the title contains query, otherwise the fuzzy
// character positions. It returns nil when nothing matches.
func Highlight(title, query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	lower := strings.ToLower(title)

	if at := strings.Index(lower, query); at >= 0 {
		start := len([]rune(lower[:at]))
		n := len([]rune(query))
		out := make([]int, n)
		for i := range out {
			out[i] = start + i
		}
		return out
	}

	found := fuzzy.Find(query, []string{lower})
	if len(found) == 0 {
		return nil
	}
	return byteToRuneIndexes(lower, found[0].MatchedIndexes)
}

func byteToRuneIndexes(s string, byteIdx []int) []int {
	if len(byteIdx) == 0 {
		return nil
	}
	runeAt := make(map[int]int, len(s))
	r := 0
	for b := range s {
		runeAt[b] = r
		r++
	}
	out := make([]int, 0, len(byteIdx))
	for _, b := range byteIdx {
		if ri, ok := runeAt[b]; ok {
			out = append(out, ri)
		}
	}
	return out
}
