package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/thanhnp/bicle/internal/models"
)

// BroadcastStore handles the link -> broadcast time index
type BroadcastStore struct {
	db *PebbleDB
}

// NewBroadcastStore creates a new BroadcastStore
func NewBroadcastStore(db *PebbleDB) *BroadcastStore {
	return &BroadcastStore{db: db}
}

// SaveAll replaces the stored index in one batch
func (s *BroadcastStore) SaveAll(index map[string]time.Time) error {
	batch := s.db.NewBatch()
	defer batch.Destroy()

	if err := s.db.ClearBatch(batch, CFBroadcast); err != nil {
		return err
	}

	for link, at := range index {
		value := []byte(at.UTC().Format(time.RFC3339Nano))
		if err := s.db.PutBatch(batch, CFBroadcast, []byte(link), value); err != nil {
			return err
		}
	}

	return s.db.WriteBatch(batch)
}

// LoadAll returns the stored index
func (s *BroadcastStore) LoadAll() (map[string]time.Time, error) {
	iter, err := s.db.NewIterator(CFBroadcast)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	index := make(map[string]time.Time)
	for ; iter.Valid(); iter.Next() {
		at, err := time.Parse(time.RFC3339Nano, string(iter.Value()))
		if err != nil {
			return nil, fmt.Errorf("failed to parse broadcast time for %s: %w", iter.Key(), err)
		}
		index[string(iter.Key())] = at.UTC()
	}

	return index, nil
}

// PendingStore handles submissions awaiting mining
type PendingStore struct {
	db *PebbleDB
}

// NewPendingStore creates a new PendingStore
func NewPendingStore(db *PebbleDB) *PendingStore {
	return &PendingStore{db: db}
}

// SaveAll replaces the stored pending map in one batch
func (s *PendingStore) SaveAll(pending map[string]*models.PendingEntry) error {
	batch := s.db.NewBatch()
	defer batch.Destroy()

	if err := s.db.ClearBatch(batch, CFPending); err != nil {
		return err
	}

	for link, entry := range pending {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal pending entry: %w", err)
		}
		if err := s.db.PutBatch(batch, CFPending, []byte(link), data); err != nil {
			return err
		}
	}

	return s.db.WriteBatch(batch)
}

// LoadAll returns the stored pending map
func (s *PendingStore) LoadAll() (map[string]*models.PendingEntry, error) {
	iter, err := s.db.NewIterator(CFPending)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	pending := make(map[string]*models.PendingEntry)
	for ; iter.Valid(); iter.Next() {
		var entry models.PendingEntry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pending entry %s: %w", iter.Key(), err)
		}
		pending[string(iter.Key())] = &entry
	}

	return pending, nil
}
