package stats

import (
	"sort"

	"github.com/thanhnp/bicle/internal/models"
)

// Source iterates over the blocks to aggregate
type Source interface {
	Each(fn func(b *models.Block))
}

// Summary is the source distribution of a ledger
type Summary struct {
	Sources      []models.SourceCount `json:"sources"`
	TotalEntries int                  `json:"total_entries"`
	BlockCount   int                  `json:"block_count"`
}

// SourceCounts tallies entries per source. Rows are in order of first
// appearance in the chain.
func SourceCounts(src Source) []models.SourceCount {
	index := make(map[string]int)
	var counts []models.SourceCount

	src.Each(func(b *models.Block) {
		for _, n := range b.News {
			i, ok := index[n.Source]
			if !ok {
				i = len(counts)
				index[n.Source] = i
				counts = append(counts, models.SourceCount{Source: n.Source})
			}
			counts[i].Count++
		}
	})

	return counts
}

// TopN orders counts by count descending and keeps the first n. Ties keep
// their first-appearance order. n <= 0 keeps every row.
func TopN(counts []models.SourceCount, n int) []models.SourceCount {
	sorted := make([]models.SourceCount, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Summarize returns the top n sources plus ledger totals
func Summarize(src Source, n int) Summary {
	counts := SourceCounts(src)

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	blocks := 0
	src.Each(func(*models.Block) { blocks++ })

	return Summary{
		Sources:      TopN(counts, n),
		TotalEntries: total,
		BlockCount:   blocks,
	}
}
