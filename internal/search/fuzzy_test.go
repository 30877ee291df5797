package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/catalog"
)

func TestFuzzyScorer_PartialTitleMatch(t *testing.T) {
	sc := NewFuzzyScorer(60)
	rec := catalog.FileRecord{Filename: "Harry Potter and the Sorcerer's Stone.epub"}

	score, keep := sc.Score("harry potter", rec)
	require.True(t, keep)
	require.GreaterOrEqual(t, score, 80, "prefix of the title must score high")
}

func TestFuzzyScorer_ContainmentBoostCapsAt100(t *testing.T) {
	sc := NewFuzzyScorer(60)
	rec := catalog.FileRecord{Filename: "Dune.epub"}

	score, keep := sc.Score("dune", rec)
	require.True(t, keep)
	require.Equal(t, 100, score)
}

func TestFuzzyScorer_CaseInsensitive(t *testing.T) {
	sc := NewFuzzyScorer(60)
	rec := catalog.FileRecord{Filename: "The Pragmatic Programmer.pdf"}

	lower, _ := sc.Score("pragmatic programmer", rec)
	upper, _ := sc.Score("PRAGMATIC PROGRAMMER", rec)
	require.Equal(t, lower, upper)
}

func TestFuzzyScorer_ThresholdExcludesWeakMatches(t *testing.T) {
	sc := NewFuzzyScorer(60)
	rec := catalog.FileRecord{Filename: "Dune.epub"}

	_, keep := sc.Score("quantum field theory", rec)
	require.False(t, keep)
}

func TestFuzzyScorer_WordOrderInsensitive(t *testing.T) {
	sc := NewFuzzyScorer(60)
	rec := catalog.FileRecord{Filename: "Dune Messiah.mobi"}

	score, keep := sc.Score("messiah dune", rec)
	require.True(t, keep, "token sort must rescue reordered terms")
	require.GreaterOrEqual(t, score, 90)
}

func TestNewFuzzyScorer_DefaultThreshold(t *testing.T) {
	sc := NewFuzzyScorer(0)
	require.Equal(t, DefaultThreshold, sc.threshold)
	sc = NewFuzzyScorer(-5)
	require.Equal(t, DefaultThreshold, sc.threshold)
	sc = NewFuzzyScorer(80)
	require.Equal(t, 80, sc.threshold)
}
