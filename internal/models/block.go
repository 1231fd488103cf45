package models

import (
	"time"
)

// Block represents one ledger block: a capped batch of deduplicated news
// entries bound together by BlockHash and linked to its predecessor.
type Block struct {
	BlockNumber int64          `json:"block_number"`
	Timestamp   time.Time      `json:"timestamp"`
	News        []*LedgerEntry `json:"news"`
	BlockHash   string         `json:"blockhash"`
	Previous    *string        `json:"previous"` // nil only for genesis
}

// IHashes returns the item digests of the block in stored order.
func (b *Block) IHashes() []string {
	hashes := make([]string, 0, len(b.News))
	for _, n := range b.News {
		hashes = append(hashes, n.IHash)
	}
	return hashes
}

// PreviousHash returns the predecessor hash, or "" for genesis.
func (b *Block) PreviousHash() string {
	if b.Previous == nil {
		return ""
	}
	return *b.Previous
}

// Clone returns a deep copy so callers cannot mutate ledger state.
func (b *Block) Clone() *Block {
	c := *b
	c.News = make([]*LedgerEntry, len(b.News))
	for i, n := range b.News {
		entry := *n
		c.News[i] = &entry
	}
	if b.Previous != nil {
		prev := *b.Previous
		c.Previous = &prev
	}
	return &c
}
