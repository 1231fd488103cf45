package builder

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/bicle/internal/hashing"
	"github.com/thanhnp/bicle/internal/logger"
	"github.com/thanhnp/bicle/internal/metrics"
	"github.com/thanhnp/bicle/internal/models"
)

// DefaultMaxNews caps the number of entries per block
const DefaultMaxNews = 5

// Index is the dedup state the builder reads and signals back to
type Index interface {
	IsBroadcast(link string) bool
	MarkBroadcast(links []string, at time.Time) error
}

// Chain seals selected entries into the next block
type Chain interface {
	Seal(entries []*models.LedgerEntry, at time.Time) (*models.Block, error)
}

// Builder selects candidates and assembles blocks
type Builder struct {
	index Index
	chain Chain
	log   *logrus.Entry
	now   func() time.Time
}

// New creates a Builder
func New(index Index, chain Chain, log *logrus.Entry) *Builder {
	return &Builder{
		index: index,
		chain: chain,
		log:   logger.OrDefault(log, "builder"),
		now:   time.Now,
	}
}

// SetClock replaces the time source used to stamp blocks
func (b *Builder) SetClock(now func() time.Time) {
	b.now = now
}

// Select walks candidates in the given order and returns at most maxNews
// entries. A candidate is skipped when its link was already broadcast or
// when its iHash was already selected in this pass. Title and summary are
// truncated for storage; the iHash covers the untruncated fields.
func (b *Builder) Select(candidates []models.NewsItem, maxNews int) []*models.LedgerEntry {
	if maxNews < 1 {
		maxNews = DefaultMaxNews
	}

	selected := make([]*models.LedgerEntry, 0, maxNews)
	seen := make(map[string]struct{})

	for _, it := range candidates {
		if it.Link == "" || b.index.IsBroadcast(it.Link) {
			continue
		}

		ih := hashing.ItemHash(it.Title, it.Link, it.Source, it.Published)
		if _, ok := seen[ih]; ok {
			continue
		}
		seen[ih] = struct{}{}

		selected = append(selected, &models.LedgerEntry{
			Title:     models.TruncateRunes(it.Title, models.MaxTitleLen),
			Link:      it.Link,
			Source:    it.Source,
			Published: it.Published,
			Summary:   models.TruncateRunes(it.Summary, models.MaxSummaryLen),
			IHash:     ih,
		})

		if len(selected) >= maxNews {
			break
		}
	}

	return selected
}

// Build selects entries from candidates, seals them into a new block and
// marks their links as broadcast. ok is false when nothing was eligible;
// that is not a failure. Persistence errors are logged by the ledger and
// dedup layers and do not undo the block.
func (b *Builder) Build(candidates []models.NewsItem, maxNews int) (block *models.Block, ok bool) {
	selected := b.Select(candidates, maxNews)
	if len(selected) == 0 {
		metrics.EmptyMines.Inc()
		b.log.WithField("candidates", len(candidates)).Info("No new data for mining")
		return nil, false
	}

	block, err := b.chain.Seal(selected, b.now())
	if block == nil {
		b.log.Errorf("Failed to seal block: %v", err)
		return nil, false
	}

	links := make([]string, 0, len(selected))
	for _, n := range selected {
		links = append(links, n.Link)
	}
	_ = b.index.MarkBroadcast(links, block.Timestamp)

	metrics.BlocksMined.Inc()
	b.log.WithFields(logrus.Fields{
		"block": block.BlockNumber,
		"news":  len(block.News),
		"hash":  block.BlockHash,
	}).Info("Block mined")

	return block.Clone(), true
}
