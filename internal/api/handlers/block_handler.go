package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/bicle/internal/ledger"
	"github.com/thanhnp/bicle/internal/node"
)

// BlockHandler handles block-related API requests
type BlockHandler struct {
	node Node
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(n Node) *BlockHandler {
	return &BlockHandler{node: n}
}

// GetByNumber returns a block by its number
// GET /api/v1/blocks/:number
func (h *BlockHandler) GetByNumber(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block number"})
		return
	}

	block, err := h.node.GetBlock(number)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Block not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, block)
}

// GetLatest returns the number and hash of the tip
// GET /api/v1/blocks/latest
func (h *BlockHandler) GetLatest(c *gin.Context) {
	recent := h.node.RecentBlocks(1)
	if len(recent) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No blocks found"})
		return
	}

	tip := recent[0]
	c.JSON(http.StatusOK, gin.H{
		"block_number": tip.BlockNumber,
		"blockhash":    tip.BlockHash,
		"timestamp":    tip.Timestamp,
	})
}

// GetRecent returns the last blocks, most recent last
// GET /api/v1/blocks/recent?count=5
func (h *BlockHandler) GetRecent(c *gin.Context) {
	count, ok := queryInt(c, "count", node.DefaultRecentCount)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.node.RecentBlocks(count))
}
