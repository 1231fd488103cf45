// Package dedup tracks which links were already broadcast and which user
// submissions are waiting to be mined.
//
// Historical deduplication is keyed by link only. The same story
// republished under a different URL is not caught here.
package dedup

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/bicle/internal/hashing"
	"github.com/thanhnp/bicle/internal/logger"
	"github.com/thanhnp/bicle/internal/metrics"
	"github.com/thanhnp/bicle/internal/models"
)

// DefaultTTL is how long a broadcast link blocks resubmission
const DefaultTTL = 30 * 24 * time.Hour

var (
	ErrAlreadyBroadcast = errors.New("dedup: news already broadcast")
	ErrAlreadyPending   = errors.New("dedup: news already in pending queue")
	ErrMissingLink      = errors.New("dedup: link is required")
)

// Store persists the dedup index and the pending map, each in full
type Store interface {
	SaveBroadcast(index map[string]time.Time) error
	SavePending(pending map[string]*models.PendingEntry) error
}

// Deduplicator owns the dedup index (link -> broadcast time) and the
// pending map (link -> submission). It does no locking.
type Deduplicator struct {
	broadcast map[string]time.Time
	pending   map[string]*models.PendingEntry
	store     Store
	log       *logrus.Entry
	now       func() time.Time
}

// New creates a Deduplicator over already loaded state. nil maps are
// treated as empty.
func New(broadcast map[string]time.Time, pending map[string]*models.PendingEntry, store Store, log *logrus.Entry) *Deduplicator {
	if broadcast == nil {
		broadcast = make(map[string]time.Time)
	}
	if pending == nil {
		pending = make(map[string]*models.PendingEntry)
	}
	log = logger.OrDefault(log, "dedup")

	// the map key is the authoritative link
	for link, p := range pending {
		if p == nil {
			log.WithField("link", link).Warn("Dropping empty pending entry")
			delete(pending, link)
			continue
		}
		p.Link = link
	}

	d := &Deduplicator{
		broadcast: broadcast,
		pending:   pending,
		store:     store,
		log:       log,
		now:       time.Now,
	}
	d.updateGauges()
	return d
}

// SetClock replaces the time source used for submission timestamps
func (d *Deduplicator) SetClock(now func() time.Time) {
	d.now = now
}

// IsBroadcast reports whether link is in the dedup index
func (d *Deduplicator) IsBroadcast(link string) bool {
	_, ok := d.broadcast[link]
	return ok
}

// IsPending reports whether link is queued for mining
func (d *Deduplicator) IsPending(link string) bool {
	_, ok := d.pending[link]
	return ok
}

// HistoryLen returns the size of the dedup index
func (d *Deduplicator) HistoryLen() int {
	return len(d.broadcast)
}

// PendingLen returns the number of queued submissions
func (d *Deduplicator) PendingLen() int {
	return len(d.pending)
}

// Submit queues item for the next block. The item is normalized first.
// On success the pending store is persisted; a persistence error is
// logged and does not undo the submission.
func (d *Deduplicator) Submit(item models.NewsItem, submitter string) (*models.PendingEntry, error) {
	item = item.Normalize()
	if item.Link == "" {
		return nil, ErrMissingLink
	}
	if d.IsBroadcast(item.Link) {
		return nil, ErrAlreadyBroadcast
	}
	if d.IsPending(item.Link) {
		return nil, ErrAlreadyPending
	}

	entry := &models.PendingEntry{
		Title:     item.Title,
		Link:      item.Link,
		Source:    item.Source,
		Published: item.Published,
		Submitter: submitter,
		AddedAt:   d.now().UTC(),
		IHash:     hashing.ItemHash(item.Title, item.Link, item.Source, item.Published),
	}
	d.pending[item.Link] = entry
	d.updateGauges()

	d.savePending()
	copied := *entry
	return &copied, nil
}

// MarkBroadcast records links as broadcast at the given time, removes them
// from the pending map and persists both stores.
func (d *Deduplicator) MarkBroadcast(links []string, at time.Time) error {
	at = at.UTC()
	for _, link := range links {
		d.broadcast[link] = at
		delete(d.pending, link)
	}
	d.updateGauges()

	return errors.Join(d.saveBroadcast(), d.savePending())
}

// PruneExpired drops dedup entries older than now-ttl and returns how many
// were removed. It does not persist; call Persist afterwards.
func (d *Deduplicator) PruneExpired(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)
	removed := 0
	for link, at := range d.broadcast {
		if at.Before(cutoff) {
			delete(d.broadcast, link)
			removed++
		}
	}
	d.updateGauges()
	return removed
}

// Persist writes both stores
func (d *Deduplicator) Persist() error {
	return errors.Join(d.saveBroadcast(), d.savePending())
}

// Pending returns copies of the queued submissions ordered by submission
// time, then link.
func (d *Deduplicator) Pending() []*models.PendingEntry {
	out := make([]*models.PendingEntry, 0, len(d.pending))
	for _, p := range d.pending {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].Link < out[j].Link
	})
	return out
}

func (d *Deduplicator) saveBroadcast() error {
	if d.store == nil {
		return nil
	}
	if err := d.store.SaveBroadcast(d.broadcast); err != nil {
		d.log.WithField("store", metrics.StoreBroadcast).Errorf("Failed to persist dedup index: %v", err)
		return fmt.Errorf("save broadcast index: %w", err)
	}
	return nil
}

func (d *Deduplicator) savePending() error {
	if d.store == nil {
		return nil
	}
	if err := d.store.SavePending(d.pending); err != nil {
		d.log.WithField("store", metrics.StorePending).Errorf("Failed to persist pending queue: %v", err)
		return fmt.Errorf("save pending: %w", err)
	}
	return nil
}

func (d *Deduplicator) updateGauges() {
	metrics.HistorySize.Set(float64(len(d.broadcast)))
	metrics.PendingSize.Set(float64(len(d.pending)))
}
