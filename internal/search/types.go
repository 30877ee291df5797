// Package search scores catalog entries against free-text queries.
package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/shelfwise/shelfwise/internal/catalog"
)

// Result pairs a matched book with its score (0-100). Results are
// transient; they are produced per query and never persisted.
type Result struct {
	Book  catalog.FileRecord `json:"book"`
	Score int                `json:"score"`
}

// Scorer scores one record against a query and reports whether the
// record should be kept. Implementations are chosen at construction
// time, not per query.
type Scorer interface {
	Score(query string, rec catalog.FileRecord) (score int, keep bool)
	Mode() string
}

// normalize lowercases s and applies NFC so that composed and
// decomposed filename spellings compare equal.
func normalize(s string) string {
	return norm.NFC.String(strings.ToLower(s))
}

// stripExt returns the filename without its extension.
func stripExt(filename string) string {
	return strings.TrimSuffix(filename, filenameExt(filename))
}

func filenameExt(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return filename[i:]
	}
	return ""
}
