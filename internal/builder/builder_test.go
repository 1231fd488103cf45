package builder

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thanhnp/bicle/internal/dedup"
	"github.com/thanhnp/bicle/internal/hashing"
	"github.com/thanhnp/bicle/internal/ledger"
	"github.com/thanhnp/bicle/internal/models"
)

var fixedNow = time.Date(2026, 4, 10, 8, 30, 15, 0, time.UTC)

type fixture struct {
	ledger *ledger.Ledger
	dedup  *dedup.Deduplicator
	b      *Builder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := ledger.New(nil, nil, nil)
	_, err := l.SeedGenesis()
	require.NoError(t, err)
	d := dedup.New(nil, nil, nil, nil)
	b := New(d, l, nil)
	b.SetClock(func() time.Time { return fixedNow })
	return &fixture{ledger: l, dedup: d, b: b}
}

func item(n int) models.NewsItem {
	return models.NewsItem{
		Title:     fmt.Sprintf("story %d", n),
		Link:      fmt.Sprintf("https://feed.test/%d", n),
		Source:    "Feed",
		Published: "2026-04-10",
		Summary:   "summary",
	}
}

func TestBuildFirstBlock(t *testing.T) {
	f := newFixture(t)

	block, ok := f.b.Build([]models.NewsItem{item(1), item(2)}, 5)
	require.True(t, ok)
	require.Equal(t, int64(1), block.BlockNumber)
	require.Equal(t, ledger.GenesisHash, block.PreviousHash())
	require.Equal(t, fixedNow, block.Timestamp)
	require.Len(t, block.News, 2)
	require.Equal(t, "https://feed.test/1", block.News[0].Link)
	require.Equal(t, hashing.BlockHash(block.IHashes()), block.BlockHash)

	require.True(t, f.dedup.IsBroadcast("https://feed.test/1"))
	require.True(t, f.dedup.IsBroadcast("https://feed.test/2"))
	require.Equal(t, 2, f.ledger.Len())
}

func TestBuildOnlyBroadcastIsNoBlock(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.dedup.MarkBroadcast([]string{item(1).Link, item(2).Link}, fixedNow))

	block, ok := f.b.Build([]models.NewsItem{item(1), item(2)}, 5)
	require.False(t, ok)
	require.Nil(t, block)
	require.Equal(t, 1, f.ledger.Len())
}

func TestBuildEmptyPool(t *testing.T) {
	f := newFixture(t)
	_, ok := f.b.Build(nil, 5)
	require.False(t, ok)
}

func TestBuildRespectsMaxNewsAndOrder(t *testing.T) {
	f := newFixture(t)
	candidates := []models.NewsItem{item(1), item(2), item(3)}

	block, ok := f.b.Build(candidates, 1)
	require.True(t, ok)
	require.Len(t, block.News, 1)
	require.Equal(t, item(1).Link, block.News[0].Link)

	require.False(t, f.dedup.IsBroadcast(item(2).Link))
	require.False(t, f.dedup.IsBroadcast(item(3).Link))

	next, ok := f.b.Build(candidates, 5)
	require.True(t, ok)
	require.Equal(t, int64(2), next.BlockNumber)
	require.Equal(t, block.BlockHash, next.PreviousHash())
	require.Len(t, next.News, 2)
	require.Equal(t, item(2).Link, next.News[0].Link)
	require.Equal(t, item(3).Link, next.News[1].Link)
}

func TestSelectSkipsSameDigestInOnePass(t *testing.T) {
	f := newFixture(t)
	dup := item(1)

	selected := f.b.Select([]models.NewsItem{item(1), dup, item(2)}, 5)
	require.Len(t, selected, 2)
	require.Equal(t, item(2).Link, selected[1].Link)
}

func TestSelectSameLinkDifferentContent(t *testing.T) {
	f := newFixture(t)
	a := item(1)
	b := item(1)
	b.Title = "retitled"

	// in-pass dedup is by digest only
	selected := f.b.Select([]models.NewsItem{a, b}, 5)
	require.Len(t, selected, 2)
}

func TestSelectTruncatesButHashesFullFields(t *testing.T) {
	f := newFixture(t)
	it := item(1)
	it.Title = strings.Repeat("é", 400)
	it.Summary = strings.Repeat("s", 500)

	selected := f.b.Select([]models.NewsItem{it}, 5)
	require.Len(t, selected, 1)
	require.Len(t, []rune(selected[0].Title), models.MaxTitleLen)
	require.Len(t, selected[0].Summary, models.MaxSummaryLen)
	require.Equal(t, hashing.ItemHash(it.Title, it.Link, it.Source, it.Published), selected[0].IHash)
}

func TestSelectDefaultsMaxNews(t *testing.T) {
	f := newFixture(t)
	var candidates []models.NewsItem
	for i := 0; i < 10; i++ {
		candidates = append(candidates, item(i))
	}
	require.Len(t, f.b.Select(candidates, 0), DefaultMaxNews)
}

func TestSelectSkipsMissingLink(t *testing.T) {
	f := newFixture(t)
	it := item(1)
	it.Link = ""
	require.Empty(t, f.b.Select([]models.NewsItem{it}, 5))
}

func TestBuildClearsPendingSubmission(t *testing.T) {
	f := newFixture(t)
	entry, err := f.dedup.Submit(models.NewsItem{Title: "X", Link: "https://user.test/a", Source: "user-submission"}, "alice")
	require.NoError(t, err)

	block, ok := f.b.Build([]models.NewsItem{entry.Candidate(), item(1)}, 5)
	require.True(t, ok)
	require.Equal(t, entry.IHash, block.News[0].IHash)
	require.False(t, f.dedup.IsPending("https://user.test/a"))
	require.Zero(t, f.dedup.PendingLen())
}

func TestChainIntegrityAcrossBuilds(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		_, ok := f.b.Build([]models.NewsItem{item(3 * i), item(3*i + 1), item(3*i + 2)}, 5)
		require.True(t, ok)
	}
	require.NoError(t, f.ledger.Verify())
	require.Equal(t, 6, f.ledger.Len())
}
