package node

import (
	"sync"
	"time"

	"github.com/thanhnp/bicle/internal/metrics"
	"github.com/thanhnp/bicle/internal/models"
	"github.com/thanhnp/bicle/internal/storage"
)

// trackedGateway records store failures for the node status and the
// persistence metrics. A later successful save of the same store clears
// its failure.
type trackedGateway struct {
	storage.Gateway

	mu      sync.Mutex
	failed  map[string]error
	lastErr error
}

func newTrackedGateway(gw storage.Gateway) *trackedGateway {
	return &trackedGateway{Gateway: gw, failed: make(map[string]error)}
}

func (g *trackedGateway) track(store string, err error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		metrics.PersistenceFailures.WithLabelValues(store).Inc()
		g.failed[store] = err
		g.lastErr = err
		return err
	}
	delete(g.failed, store)
	return nil
}

// health reports whether every store's last save succeeded, plus the most
// recent failure seen
func (g *trackedGateway) health() (bool, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	msg := ""
	if g.lastErr != nil {
		msg = g.lastErr.Error()
	}
	return len(g.failed) == 0, msg
}

func (g *trackedGateway) LoadBlocks() ([]*models.Block, error) {
	blocks, err := g.Gateway.LoadBlocks()
	return blocks, g.track(metrics.StoreBlocks, err)
}

func (g *trackedGateway) SaveBlocks(blocks []*models.Block) error {
	return g.track(metrics.StoreBlocks, g.Gateway.SaveBlocks(blocks))
}

func (g *trackedGateway) LoadBroadcast() (map[string]time.Time, error) {
	index, err := g.Gateway.LoadBroadcast()
	return index, g.track(metrics.StoreBroadcast, err)
}

func (g *trackedGateway) SaveBroadcast(index map[string]time.Time) error {
	return g.track(metrics.StoreBroadcast, g.Gateway.SaveBroadcast(index))
}

func (g *trackedGateway) LoadPending() (map[string]*models.PendingEntry, error) {
	pending, err := g.Gateway.LoadPending()
	return pending, g.track(metrics.StorePending, err)
}

func (g *trackedGateway) SavePending(pending map[string]*models.PendingEntry) error {
	return g.track(metrics.StorePending, g.Gateway.SavePending(pending))
}
