package search

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/shelfwise/shelfwise/internal/catalog"
)

// FuzzyScorer scores the query against the extension-less filename with
// partial-ratio and token-sort-ratio similarity, boosting substring
// containment. Higher accuracy, higher cost; the default mode.
type FuzzyScorer struct {
	threshold int
}

// NewFuzzyScorer returns a fuzzy scorer keeping records whose score is
// at least threshold (DefaultThreshold when <= 0).
func NewFuzzyScorer(threshold int) *FuzzyScorer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &FuzzyScorer{threshold: threshold}
}

// Mode implements Scorer.
func (s *FuzzyScorer) Mode() string { return "fuzzy" }

// Score implements Scorer. The score is the max of the partial-ratio
// and token-sort-ratio similarities, plus 20 (capped at 100) when the
// query is a literal substring of the filename.
func (s *FuzzyScorer) Score(query string, rec catalog.FileRecord) (int, bool) {
	name := normalize(stripExt(rec.Filename))
	q := normalize(query)

	best := fuzzy.PartialRatio(q, name)
	if token := fuzzy.TokenSortRatio(q, name); token > best {
		best = token
	}
	if strings.Contains(name, q) {
		best += 20
		if best > 100 {
			best = 100
		}
	}
	return best, best >= s.threshold
}
