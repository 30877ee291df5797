package search

import (
	"sort"
	"strings"

	"github.com/shelfwise/shelfwise/internal/catalog"
)

// DefaultThreshold is the minimum fuzzy score kept when the caller does
// not supply one.
const DefaultThreshold = 60

// NewScorer returns the scorer for mode ("fuzzy" or "fast"). Unknown
// modes fall back to fuzzy. threshold applies to fuzzy mode only.
func NewScorer(mode string, threshold int) Scorer {
	if strings.EqualFold(mode, "fast") {
		return NewFastScorer()
	}
	return NewFuzzyScorer(threshold)
}

// Search scores every book against query and returns matches sorted by
// score descending. Ties keep encounter order. An empty query returns
// every book with score 100, in original order.
func Search(sc Scorer, books []catalog.FileRecord, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Result, len(books))
		for i, b := range books {
			out[i] = Result{Book: b, Score: 100}
		}
		return out
	}

	out := make([]Result, 0, len(books))
	for _, b := range books {
		score, keep := sc.Score(query, b)
		if !keep {
			continue
		}
		out = append(out, Result{Book: b, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
