// Package ledger holds the ordered, hash-linked sequence of blocks.
//
// The ledger is the only writer of block numbers, block hashes and
// previous links. It does no locking; callers serialize access.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/bicle/internal/hashing"
	"github.com/thanhnp/bicle/internal/logger"
	"github.com/thanhnp/bicle/internal/metrics"
	"github.com/thanhnp/bicle/internal/models"
)

// ErrNotFound is returned when no block carries the requested number
var ErrNotFound = errors.New("ledger: block not found")

// Store persists the full block sequence
type Store interface {
	SaveBlocks(blocks []*models.Block) error
}

// IntegrityError describes the first block that failed verification
type IntegrityError struct {
	Index       int
	BlockNumber int64
	Reason      string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ledger: block #%d (index %d): %s", e.BlockNumber, e.Index, e.Reason)
}

// Ledger is the in-memory chain backed by a Store
type Ledger struct {
	blocks []*models.Block
	store  Store
	log    *logrus.Entry
}

// New creates a Ledger over already loaded blocks
func New(blocks []*models.Block, store Store, log *logrus.Entry) *Ledger {
	l := &Ledger{
		blocks: blocks,
		store:  store,
		log:    logger.OrDefault(log, "ledger"),
	}
	metrics.ChainHeight.Set(float64(len(blocks)))
	return l
}

// Len returns the number of blocks, genesis included
func (l *Ledger) Len() int {
	return len(l.blocks)
}

// SeedGenesis appends the genesis block when the ledger is empty.
// It reports whether a block was added.
func (l *Ledger) SeedGenesis() (bool, error) {
	if len(l.blocks) > 0 {
		return false, nil
	}
	if err := l.Append(Genesis()); err != nil {
		return true, err
	}
	l.log.Info("Genesis block initialized")
	return true, nil
}

// Append adds block to the end of the chain and persists the whole chain.
// A persistence error is logged and returned; the in-memory append stands.
func (l *Ledger) Append(block *models.Block) error {
	l.blocks = append(l.blocks, block)
	metrics.ChainHeight.Set(float64(len(l.blocks)))

	if err := l.persist(); err != nil {
		l.log.WithField("block", block.BlockNumber).Errorf("Failed to persist ledger: %v", err)
		return err
	}
	return nil
}

// Seal builds the next block from entries, links it to the tip and
// appends it. The block is numbered len(ledger), so genesis is 0 and the
// first mined block is 1. The returned block is appended even when err
// reports a persistence failure.
func (l *Ledger) Seal(entries []*models.LedgerEntry, at time.Time) (*models.Block, error) {
	tip := l.Tip()
	if tip == nil {
		return nil, errors.New("ledger: not seeded")
	}
	if len(entries) == 0 {
		return nil, errors.New("ledger: empty block")
	}

	prev := tip.BlockHash
	block := &models.Block{
		BlockNumber: int64(len(l.blocks)),
		Timestamp:   at.UTC().Truncate(time.Second),
		News:        entries,
		Previous:    &prev,
	}
	block.BlockHash = hashing.BlockHash(block.IHashes())

	return block, l.Append(block)
}

// Persist writes the whole chain to the store
func (l *Ledger) Persist() error {
	if err := l.persist(); err != nil {
		l.log.Errorf("Failed to persist ledger: %v", err)
		return err
	}
	return nil
}

func (l *Ledger) persist() error {
	if l.store == nil {
		return nil
	}
	if err := l.store.SaveBlocks(l.blocks); err != nil {
		return fmt.Errorf("save blocks: %w", err)
	}
	return nil
}

// Tip returns the last block, or nil for an unseeded ledger
func (l *Ledger) Tip() *models.Block {
	if len(l.blocks) == 0 {
		return nil
	}
	return l.blocks[len(l.blocks)-1]
}

// ByNumber returns a copy of the block with the given block_number
func (l *Ledger) ByNumber(n int64) (*models.Block, error) {
	for _, b := range l.blocks {
		if b.BlockNumber == n {
			return b.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Recent returns copies of the last count blocks, most recent last
func (l *Ledger) Recent(count int) []*models.Block {
	if count <= 0 {
		return []*models.Block{}
	}
	start := len(l.blocks) - count
	if start < 0 {
		start = 0
	}
	return cloneAll(l.blocks[start:])
}

// Blocks returns copies of every block in chain order
func (l *Ledger) Blocks() []*models.Block {
	return cloneAll(l.blocks)
}

// Each calls fn for every block in chain order without copying.
// fn must not modify the block.
func (l *Ledger) Each(fn func(b *models.Block)) {
	for _, b := range l.blocks {
		fn(b)
	}
}

// Verify checks the previous link and recomputes the block hash of every
// block after genesis. It returns an *IntegrityError for the first
// offending block. Chains of length <= 1 are valid. A failure is logged
// and counted.
func (l *Ledger) Verify() error {
	ie := l.check()
	if ie == nil {
		return nil
	}
	metrics.VerifyFailures.Inc()
	l.log.WithFields(logrus.Fields{
		"index": ie.Index,
		"block": ie.BlockNumber,
	}).Errorf("Integrity check failed: %s", ie.Reason)
	return ie
}

// Valid runs the same checks as Verify without logging or counting
func (l *Ledger) Valid() bool {
	return l.check() == nil
}

func (l *Ledger) check() *IntegrityError {
	for i := 1; i < len(l.blocks); i++ {
		b := l.blocks[i]

		if b.Previous == nil || b.PreviousHash() != l.blocks[i-1].BlockHash {
			return &IntegrityError{Index: i, BlockNumber: b.BlockNumber, Reason: "previous hash mismatch"}
		}

		if hashing.BlockHash(b.IHashes()) != b.BlockHash {
			return &IntegrityError{Index: i, BlockNumber: b.BlockNumber, Reason: "invalid blockhash"}
		}
	}
	return nil
}

func cloneAll(blocks []*models.Block) []*models.Block {
	out := make([]*models.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}
