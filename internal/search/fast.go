package search

import (
	"math"
	"strings"

	"github.com/shelfwise/shelfwise/internal/catalog"
)

// FastScorer scores by keyword overlap over the filename plus bare
// extension text. Cheaper than fuzzy matching; intended for
// resource-constrained deployments. There is no threshold: any record
// with at least one matching term is kept, score 0 is excluded.
type FastScorer struct{}

// NewFastScorer returns a keyword-overlap scorer.
func NewFastScorer() *FastScorer { return &FastScorer{} }

// Mode implements Scorer.
func (s *FastScorer) Mode() string { return "fast" }

// Score implements Scorer. The whole query as a substring scores 100.
// Otherwise the base score is round(100 * matched/total * 0.9) over the
// whitespace-delimited query terms, with +5 per term that prefixes a
// whole word of the searchable text, capped at 100.
func (s *FastScorer) Score(query string, rec catalog.FileRecord) (int, bool) {
	q := normalize(strings.TrimSpace(query))
	terms := strings.Fields(q)
	if len(terms) == 0 {
		return 0, false
	}

	searchable := normalize(stripExt(rec.Filename)) + " " + strings.TrimPrefix(normalize(rec.Extension), ".")
	if strings.Contains(searchable, q) {
		return 100, true
	}

	matched := 0
	for _, t := range terms {
		if strings.Contains(searchable, t) {
			matched++
		}
	}
	if matched == 0 {
		return 0, false
	}

	score := int(math.Round(100 * float64(matched) / float64(len(terms)) * 0.9))
	words := strings.Fields(searchable)
	for _, t := range terms {
		for _, w := range words {
			if strings.HasPrefix(w, t) {
				score += 5
				break
			}
		}
	}
	if score > 100 {
		score = 100
	}
	return score, true
}
