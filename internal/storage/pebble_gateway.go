package storage

import (
	"fmt"
	"time"

	"github.com/thanhnp/bicle/internal/models"
	"github.com/thanhnp/bicle/pkg/semver"
)

// PebbleGateway holds all stores sharing one Pebble database
type PebbleGateway struct {
	DB             *PebbleDB
	BlockStore     *BlockStore
	BroadcastStore *BroadcastStore
	PendingStore   *PendingStore
	MetaStore      *MetaStore
}

// NewPebbleGateway opens the database at dir and checks its format version
func NewPebbleGateway(dir string) (*PebbleGateway, error) {
	db, err := NewPebbleDB(dir)
	if err != nil {
		return nil, err
	}

	g := &PebbleGateway{
		DB:             db,
		BlockStore:     NewBlockStore(db),
		BroadcastStore: NewBroadcastStore(db),
		PendingStore:   NewPendingStore(db),
		MetaStore:      NewMetaStore(db),
	}

	if err := g.checkFormat(); err != nil {
		db.Close()
		return nil, err
	}

	return g, nil
}

// checkFormat refuses stores written by a newer or incompatible build and
// moves older compatible stores forward to the current format
func (g *PebbleGateway) checkFormat() error {
	current := semver.MustParse(FormatVersion)

	stored, err := g.MetaStore.FormatVersion()
	if err != nil {
		return err
	}
	if stored == nil {
		return g.MetaStore.SetFormatVersion(current)
	}
	if stored.GreaterThan(current) || !semver.Compatible(stored, current) {
		return fmt.Errorf("%w: found %s, want %s", ErrIncompatibleStore, stored, current)
	}
	if stored.LessThan(current) {
		return g.MetaStore.SetFormatVersion(current)
	}
	return nil
}

// LoadBlocks returns the stored chain
func (g *PebbleGateway) LoadBlocks() ([]*models.Block, error) {
	return g.BlockStore.LoadAll()
}

// SaveBlocks replaces the stored chain
func (g *PebbleGateway) SaveBlocks(blocks []*models.Block) error {
	return g.BlockStore.SaveAll(blocks)
}

// LoadBroadcast returns the stored dedup index
func (g *PebbleGateway) LoadBroadcast() (map[string]time.Time, error) {
	return g.BroadcastStore.LoadAll()
}

// SaveBroadcast replaces the stored dedup index
func (g *PebbleGateway) SaveBroadcast(index map[string]time.Time) error {
	return g.BroadcastStore.SaveAll(index)
}

// LoadPending returns the stored pending queue
func (g *PebbleGateway) LoadPending() (map[string]*models.PendingEntry, error) {
	return g.PendingStore.LoadAll()
}

// SavePending replaces the stored pending queue
func (g *PebbleGateway) SavePending(pending map[string]*models.PendingEntry) error {
	return g.PendingStore.SaveAll(pending)
}

// Close closes the database
func (g *PebbleGateway) Close() error {
	return g.DB.Close()
}
