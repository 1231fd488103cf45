// Package storage persists the ledger, the dedup index and the pending
// queue. Every save replaces the whole store.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/thanhnp/bicle/internal/models"
)

// Backend names
const (
	BackendJSON   = "json"
	BackendPebble = "pebble"
)

// FormatVersion is the on-disk layout version written by this build
const FormatVersion = "1.0.0"

// ErrIncompatibleStore is returned when a store was written with an
// incompatible format version
var ErrIncompatibleStore = errors.New("storage: incompatible store format")

// Gateway loads and saves the three persisted stores
type Gateway interface {
	LoadBlocks() ([]*models.Block, error)
	SaveBlocks(blocks []*models.Block) error
	LoadBroadcast() (map[string]time.Time, error)
	SaveBroadcast(index map[string]time.Time) error
	LoadPending() (map[string]*models.PendingEntry, error)
	SavePending(pending map[string]*models.PendingEntry) error
	Close() error
}

// Open returns the gateway for backend rooted at dir
func Open(backend, dir string) (Gateway, error) {
	switch backend {
	case BackendJSON, "":
		return NewFileGateway(dir)
	case BackendPebble:
		return NewPebbleGateway(dir)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
