package storage

import (
	"fmt"

	"github.com/thanhnp/bicle/pkg/semver"
)

var formatKey = []byte("format")

// MetaStore handles store metadata
type MetaStore struct {
	db *PebbleDB
}

// NewMetaStore creates a new MetaStore
func NewMetaStore(db *PebbleDB) *MetaStore {
	return &MetaStore{db: db}
}

// FormatVersion returns the stored format version, or nil for a fresh store
func (s *MetaStore) FormatVersion() (*semver.Version, error) {
	data, err := s.db.Get(CFMeta, formatKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	v, err := semver.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse store format: %w", err)
	}
	return v, nil
}

// SetFormatVersion records the format version
func (s *MetaStore) SetFormatVersion(v *semver.Version) error {
	return s.db.Put(CFMeta, formatKey, []byte(v.String()))
}
