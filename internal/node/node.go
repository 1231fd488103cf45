// Package node is the single entry point to the ledger core. Every
// operation runs under one mutex, so mining passes never interleave.
package node

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/bicle/internal/builder"
	"github.com/thanhnp/bicle/internal/dedup"
	"github.com/thanhnp/bicle/internal/ledger"
	"github.com/thanhnp/bicle/internal/logger"
	"github.com/thanhnp/bicle/internal/metrics"
	"github.com/thanhnp/bicle/internal/models"
	"github.com/thanhnp/bicle/internal/stats"
	"github.com/thanhnp/bicle/internal/storage"
)

// Submission defaults
const (
	DefaultSource    = "user-submission"
	DefaultSubmitter = "anonymous"
)

// Defaults for the read operations
const (
	DefaultRecentCount = 5
	DefaultTopN        = 10
)

// DefaultLookupTimeout bounds the feed lookup made for a submitted link
const DefaultLookupTimeout = 5 * time.Second

// CandidateSource supplies freshly fetched items for a mining pass
type CandidateSource interface {
	Fetch(ctx context.Context, perFeed int) ([]models.NewsItem, error)
}

// LinkLookup reads a submitted link as a feed. The first entry's title and
// published time and the feed title as source fill blank submission fields.
type LinkLookup interface {
	Lookup(ctx context.Context, link string) (models.NewsItem, error)
}

// Options configures a Node
type Options struct {
	Version         string
	MaxNews         int
	DedupTTL        time.Duration
	AutoMineEnabled bool
	Lookup          LinkLookup
	LookupTimeout   time.Duration
	Now             func() time.Time
	Log             *logrus.Entry
}

// Node owns the ledger, the dedup index and the block builder
type Node struct {
	mu sync.Mutex

	gw      *trackedGateway
	ledger  *ledger.Ledger
	dedup   *dedup.Deduplicator
	builder *builder.Builder

	opts Options
	log  *logrus.Entry
}

// New loads state from gw and prepares the node. A store that fails to
// load is logged and starts empty. Expired dedup entries are pruned, all
// stores are re-persisted, and genesis is seeded into an empty ledger.
func New(gw storage.Gateway, opts Options) *Node {
	if opts.MaxNews < 1 {
		opts.MaxNews = builder.DefaultMaxNews
	}
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = dedup.DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = DefaultLookupTimeout
	}
	log := logger.OrDefault(opts.Log, "node")
	tracked := newTrackedGateway(gw)

	blocks, err := tracked.LoadBlocks()
	if err != nil {
		log.Errorf("Failed to load ledger, starting empty: %v", err)
		blocks = nil
	}
	broadcast, err := tracked.LoadBroadcast()
	if err != nil {
		log.Errorf("Failed to load dedup index, starting empty: %v", err)
		broadcast = nil
	}
	pending, err := tracked.LoadPending()
	if err != nil {
		log.Errorf("Failed to load pending queue, starting empty: %v", err)
		pending = nil
	}

	n := &Node{
		gw:     tracked,
		ledger: ledger.New(blocks, tracked, log.WithField("prefix", "ledger")),
		dedup:  dedup.New(broadcast, pending, tracked, log.WithField("prefix", "dedup")),
		opts:   opts,
		log:    log,
	}
	n.dedup.SetClock(opts.Now)
	n.builder = builder.New(n.dedup, n.ledger, log.WithField("prefix", "builder"))
	n.builder.SetClock(opts.Now)

	if removed := n.dedup.PruneExpired(opts.Now(), opts.DedupTTL); removed > 0 {
		log.WithField("removed", removed).Info("Pruned expired dedup entries")
	}
	_ = n.ledger.Persist()
	_ = n.dedup.Persist()
	_, _ = n.ledger.SeedGenesis()

	log.WithFields(logrus.Fields{
		"blocks":  n.ledger.Len(),
		"history": n.dedup.HistoryLen(),
		"pending": n.dedup.PendingLen(),
	}).Info("Node ready")

	return n
}

// Close closes the underlying store
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gw.Close()
}

// Submit queues a user submission. Blank fields are first filled from a
// feed lookup on the link, when one is configured. Still missing title
// falls back to the link, missing source and submitter get their defaults.
func (n *Node) Submit(ctx context.Context, item models.NewsItem, submitter string) (*models.PendingEntry, error) {
	item = item.Normalize()
	if n.needsLookup(item) {
		item = n.lookup(ctx, item)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if item.Title == "" {
		item.Title = item.Link
	}
	if item.Source == "" {
		item.Source = DefaultSource
	}
	if submitter == "" {
		submitter = DefaultSubmitter
	}

	entry, err := n.dedup.Submit(item, submitter)
	metrics.Submissions.WithLabelValues(submissionResult(err)).Inc()
	if err != nil {
		n.log.WithField("link", item.Link).Infof("Submission rejected: %v", err)
		return nil, err
	}

	n.log.WithFields(logrus.Fields{
		"link":      entry.Link,
		"submitter": entry.Submitter,
	}).Info("Submission queued")
	return entry, nil
}

func (n *Node) needsLookup(item models.NewsItem) bool {
	if n.opts.Lookup == nil || item.Link == "" {
		return false
	}
	if item.Title != "" && item.Source != "" && item.Published != "" {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.dedup.IsBroadcast(item.Link) && !n.dedup.IsPending(item.Link)
}

// lookup runs outside the node lock. A failed lookup leaves item as is.
func (n *Node) lookup(ctx context.Context, item models.NewsItem) models.NewsItem {
	ctx, cancel := context.WithTimeout(ctx, n.opts.LookupTimeout)
	defer cancel()

	found, err := n.opts.Lookup.Lookup(ctx, item.Link)
	if err != nil {
		n.log.WithField("link", item.Link).Debugf("Link lookup failed, using defaults: %v", err)
		return item
	}
	found = found.Normalize()
	if item.Title == "" {
		item.Title = found.Title
	}
	if item.Source == "" {
		item.Source = found.Source
	}
	if item.Published == "" {
		item.Published = found.Published
	}
	return item
}

func submissionResult(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, dedup.ErrAlreadyBroadcast):
		return "already_broadcast"
	case errors.Is(err, dedup.ErrAlreadyPending):
		return "already_pending"
	default:
		return "invalid"
	}
}

// Mine builds a block from candidates in the given order. ok is false when
// no candidate was eligible.
func (n *Node) Mine(candidates []models.NewsItem, maxNews int) (*models.Block, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mine(candidates, maxNews)
}

func (n *Node) mine(candidates []models.NewsItem, maxNews int) (*models.Block, bool) {
	if maxNews < 1 {
		maxNews = n.opts.MaxNews
	}
	return n.builder.Build(candidates, maxNews)
}

// MineFromSource gathers pending submissions first, then items from src,
// and mines them as one pass. Source items that are already broadcast or
// pending, or have no link, are dropped. A source error is returned only
// when there is nothing pending to mine either.
func (n *Node) MineFromSource(ctx context.Context, src CandidateSource, perFeed, maxNews int) (*models.Block, bool, error) {
	var (
		fetched  []models.NewsItem
		fetchErr error
	)
	// fetch outside the lock; the network may be slow
	if src != nil {
		fetched, fetchErr = src.Fetch(ctx, perFeed)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	pending := n.dedup.Pending()
	if fetchErr != nil {
		if len(pending) == 0 {
			return nil, false, fetchErr
		}
		n.log.Warnf("Candidate fetch failed, mining pending only: %v", fetchErr)
	}

	candidates := make([]models.NewsItem, 0, len(pending)+len(fetched))
	for _, p := range pending {
		candidates = append(candidates, p.Candidate())
	}
	for _, it := range fetched {
		if it.Link == "" || n.dedup.IsBroadcast(it.Link) || n.dedup.IsPending(it.Link) {
			continue
		}
		candidates = append(candidates, it)
	}

	block, ok := n.mine(candidates, maxNews)
	return block, ok, nil
}

// GetBlock returns the block with the given number, or ledger.ErrNotFound
func (n *Node) GetBlock(number int64) (*models.Block, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.ByNumber(number)
}

// GetTipHash returns the blockhash of the last block
func (n *Node) GetTipHash() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	tip := n.ledger.Tip()
	if tip == nil {
		return ""
	}
	return tip.BlockHash
}

// RecentBlocks returns the last count blocks, most recent last
func (n *Node) RecentBlocks(count int) []*models.Block {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Recent(count)
}

// Verify checks the whole chain. The error is a *ledger.IntegrityError
// naming the first offending block.
func (n *Node) Verify() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Verify()
}

// ExportAll returns a copy of the full chain
func (n *Node) ExportAll() []*models.Block {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Blocks()
}

// Stats returns the topN sources by entry count plus ledger totals
func (n *Node) Stats(topN int) stats.Summary {
	n.mu.Lock()
	defer n.mu.Unlock()
	return stats.Summarize(n.ledger, topN)
}

// Pending returns the queued submissions in mining order
func (n *Node) Pending() []*models.PendingEntry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dedup.Pending()
}

// SetAutoMine records whether the periodic miner is running
func (n *Node) SetAutoMine(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opts.AutoMineEnabled = enabled
}

// Status summarizes the node
func (n *Node) Status() models.NodeStatus {
	n.mu.Lock()
	defer n.mu.Unlock()

	healthy, lastErr := n.gw.health()
	return models.NodeStatus{
		Version:            n.opts.Version,
		HistoryCount:       n.dedup.HistoryLen(),
		PendingCount:       n.dedup.PendingLen(),
		BlockCount:         n.ledger.Len(),
		Integrity:          n.ledger.Valid(),
		AutoMineEnabled:    n.opts.AutoMineEnabled,
		PersistenceHealthy: healthy,
		LastPersistError:   lastErr,
	}
}

// ExportFilename names a chain export taken at t
func ExportFilename(t time.Time) string {
	return "bicle_blockchain_" + t.UTC().Format("20060102_150405") + ".json"
}
