package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thanhnp/bicle/internal/models"
)

// File names under the storage directory
const (
	BlocksFile    = "blocks.json"
	BroadcastFile = "sent_news.json"
	PendingFile   = "pending.json"
)

// FileGateway keeps each store in its own JSON document
type FileGateway struct {
	dir string
}

// NewFileGateway creates the storage directory if needed
func NewFileGateway(dir string) (*FileGateway, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileGateway{dir: dir}, nil
}

// LoadBlocks returns the stored chain, or nil when the file does not exist
func (g *FileGateway) LoadBlocks() ([]*models.Block, error) {
	var blocks []*models.Block
	if err := g.read(BlocksFile, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// SaveBlocks replaces the stored chain
func (g *FileGateway) SaveBlocks(blocks []*models.Block) error {
	if blocks == nil {
		blocks = []*models.Block{}
	}
	return g.write(BlocksFile, blocks)
}

// LoadBroadcast returns the stored dedup index
func (g *FileGateway) LoadBroadcast() (map[string]time.Time, error) {
	index := make(map[string]time.Time)
	if err := g.read(BroadcastFile, &index); err != nil {
		return nil, err
	}
	for link, at := range index {
		index[link] = at.UTC()
	}
	return index, nil
}

// SaveBroadcast replaces the stored dedup index
func (g *FileGateway) SaveBroadcast(index map[string]time.Time) error {
	out := make(map[string]string, len(index))
	for link, at := range index {
		out[link] = at.UTC().Format(time.RFC3339Nano)
	}
	return g.write(BroadcastFile, out)
}

// LoadPending returns the stored pending queue
func (g *FileGateway) LoadPending() (map[string]*models.PendingEntry, error) {
	pending := make(map[string]*models.PendingEntry)
	if err := g.read(PendingFile, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// SavePending replaces the stored pending queue
func (g *FileGateway) SavePending(pending map[string]*models.PendingEntry) error {
	if pending == nil {
		pending = map[string]*models.PendingEntry{}
	}
	return g.write(PendingFile, pending)
}

// Close is a no-op
func (g *FileGateway) Close() error {
	return nil
}

// read decodes name into v. A missing file leaves v untouched.
func (g *FileGateway) read(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(g.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// write replaces name atomically: temp file in the same directory, fsync,
// then rename
func (g *FileGateway) write(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(g.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(g.dir, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
