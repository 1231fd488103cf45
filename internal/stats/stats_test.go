package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thanhnp/bicle/internal/models"
)

type blockList []*models.Block

func (l blockList) Each(fn func(b *models.Block)) {
	for _, b := range l {
		fn(b)
	}
}

func block(sources ...string) *models.Block {
	b := &models.Block{}
	for _, s := range sources {
		b.News = append(b.News, &models.LedgerEntry{Source: s})
	}
	return b
}

func TestSourceCountsFirstAppearanceOrder(t *testing.T) {
	chain := blockList{
		block("The Guardian"),
		block("Wired", "Ars Technica", "Wired"),
		block("Ars Technica", "CNET", "Wired"),
	}

	require.Equal(t, []models.SourceCount{
		{Source: "The Guardian", Count: 1},
		{Source: "Wired", Count: 3},
		{Source: "Ars Technica", Count: 2},
		{Source: "CNET", Count: 1},
	}, SourceCounts(chain))
}

func TestTopNStableTies(t *testing.T) {
	counts := []models.SourceCount{
		{Source: "a", Count: 1},
		{Source: "b", Count: 3},
		{Source: "c", Count: 1},
		{Source: "d", Count: 3},
		{Source: "e", Count: 2},
	}

	require.Equal(t, []models.SourceCount{
		{Source: "b", Count: 3},
		{Source: "d", Count: 3},
		{Source: "e", Count: 2},
		{Source: "a", Count: 1},
		{Source: "c", Count: 1},
	}, TopN(counts, 10))

	require.Equal(t, []models.SourceCount{
		{Source: "b", Count: 3},
		{Source: "d", Count: 3},
	}, TopN(counts, 2))

	require.Len(t, TopN(counts, 0), 5)
	// input untouched
	require.Equal(t, "a", counts[0].Source)
}

func TestSummarize(t *testing.T) {
	chain := blockList{block("A"), block("B", "A"), block("C", "A", "B")}

	s := Summarize(chain, 2)
	require.Equal(t, 6, s.TotalEntries)
	require.Equal(t, 3, s.BlockCount)
	require.Equal(t, []models.SourceCount{{Source: "A", Count: 3}, {Source: "B", Count: 2}}, s.Sources)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(blockList{}, 10)
	require.Empty(t, s.Sources)
	require.Zero(t, s.TotalEntries)
	require.Zero(t, s.BlockCount)
}
