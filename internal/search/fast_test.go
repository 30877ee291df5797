package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/catalog"
)

func TestFastScorer_WholeQuerySubstring(t *testing.T) {
	sc := NewFastScorer()
	rec := catalog.FileRecord{Filename: "Harry Potter and the Sorcerer's Stone.epub", Extension: ".epub"}

	score, keep := sc.Score("harry potter", rec)
	require.True(t, keep)
	require.Equal(t, 100, score)
}

func TestFastScorer_AbbreviatedTerms(t *testing.T) {
	sc := NewFastScorer()
	rec := catalog.FileRecord{Filename: "Harry Potter and the Sorcerer's Stone.epub", Extension: ".epub"}

	// Both terms match and both prefix a word: 90 base + 5 + 5.
	score, keep := sc.Score("har pot", rec)
	require.True(t, keep)
	require.Equal(t, 100, score)
}

func TestFastScorer_PartialTermMatch(t *testing.T) {
	sc := NewFastScorer()
	rec := catalog.FileRecord{Filename: "Dune Messiah.mobi", Extension: ".mobi"}

	// One of two terms matches: round(100 * 1/2 * 0.9) = 45, +5 prefix.
	score, keep := sc.Score("dune zebra", rec)
	require.True(t, keep)
	require.Equal(t, 50, score)
}

func TestFastScorer_NoMatchExcluded(t *testing.T) {
	sc := NewFastScorer()
	rec := catalog.FileRecord{Filename: "Dune.epub", Extension: ".epub"}

	score, keep := sc.Score("zzz", rec)
	require.False(t, keep)
	require.Equal(t, 0, score)
}

func TestFastScorer_MatchesExtensionText(t *testing.T) {
	sc := NewFastScorer()
	rec := catalog.FileRecord{Filename: "Dune.epub", Extension: ".epub"}

	score, keep := sc.Score("dune epub", rec)
	require.True(t, keep)
	require.Equal(t, 100, score)
}

func TestFastScorer_BlankQuery(t *testing.T) {
	sc := NewFastScorer()
	rec := catalog.FileRecord{Filename: "Dune.epub", Extension: ".epub"}

	_, keep := sc.Score("   ", rec)
	require.False(t, keep)
}
