package storage

import (
	"encoding/json"
	"fmt"

	"github.com/thanhnp/bicle/internal/models"
)

// BlockStore handles block storage operations
type BlockStore struct {
	db *PebbleDB
}

// NewBlockStore creates a new BlockStore
func NewBlockStore(db *PebbleDB) *BlockStore {
	return &BlockStore{db: db}
}

// blockIndexKey creates a key for the blocks column family. The index is
// the position in the chain, zero-padded so keys sort in chain order.
func blockIndexKey(index int) []byte {
	return []byte(fmt.Sprintf("%012d", index))
}

// SaveAll replaces the stored chain with blocks in one batch
func (s *BlockStore) SaveAll(blocks []*models.Block) error {
	batch := s.db.NewBatch()
	defer batch.Destroy()

	if err := s.db.ClearBatch(batch, CFBlocks); err != nil {
		return err
	}

	for i, block := range blocks {
		data, err := json.Marshal(block)
		if err != nil {
			return fmt.Errorf("failed to marshal block %d: %w", block.BlockNumber, err)
		}
		if err := s.db.PutBatch(batch, CFBlocks, blockIndexKey(i), data); err != nil {
			return err
		}
	}

	return s.db.WriteBatch(batch)
}

// LoadAll returns the stored chain in order
func (s *BlockStore) LoadAll() ([]*models.Block, error) {
	iter, err := s.db.NewIterator(CFBlocks)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var blocks []*models.Block
	for ; iter.Valid(); iter.Next() {
		var block models.Block
		if err := json.Unmarshal(iter.Value(), &block); err != nil {
			return nil, fmt.Errorf("failed to unmarshal block at %s: %w", iter.Key(), err)
		}
		blocks = append(blocks, &block)
	}

	return blocks, nil
}
