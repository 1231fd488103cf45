package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/bicle/internal/models"
	"github.com/thanhnp/bicle/internal/stats"
)

// Node is the ledger core as seen by the HTTP layer
type Node interface {
	Submit(ctx context.Context, item models.NewsItem, submitter string) (*models.PendingEntry, error)
	Pending() []*models.PendingEntry
	GetBlock(number int64) (*models.Block, error)
	RecentBlocks(count int) []*models.Block
	Verify() error
	ExportAll() []*models.Block
	Stats(topN int) stats.Summary
	Status() models.NodeStatus
}

// Miner runs one mining pass over the configured feeds
type Miner interface {
	RunWith(ctx context.Context, perFeed, maxNews int) (*models.Block, bool, error)
}

// queryInt reads a positive integer query parameter, falling back to def
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return v, true
}
