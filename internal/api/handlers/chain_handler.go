package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/bicle/internal/ledger"
	"github.com/thanhnp/bicle/internal/node"
)

// MineRequest is the optional body of a mine request
type MineRequest struct {
	MaxNews int `json:"max_news" binding:"omitempty,min=1"`
}

// ChainHandler handles mining and whole-chain requests
type ChainHandler struct {
	node      Node
	miner     Miner
	feedLimit int
	now       func() time.Time
}

// NewChainHandler creates a new ChainHandler. feedLimit is the number of
// items taken from each feed for a manual mine.
func NewChainHandler(n Node, miner Miner, feedLimit int) *ChainHandler {
	return &ChainHandler{
		node:      n,
		miner:     miner,
		feedLimit: feedLimit,
		now:       time.Now,
	}
}

// Mine runs one mining pass
// POST /api/v1/mine
func (h *ChainHandler) Mine(c *gin.Context) {
	var req MineRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mine request: " + err.Error()})
			return
		}
	}

	block, ok, err := h.miner.RunWith(c.Request.Context(), h.feedLimit, req.MaxNews)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"mined": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mined": true, "block": block})
}

// Verify checks chain integrity
// GET /api/v1/chain/verify
func (h *ChainHandler) Verify(c *gin.Context) {
	err := h.node.Verify()
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"valid": true})
		return
	}

	var ie *ledger.IntegrityError
	if errors.As(err, &ie) {
		c.JSON(http.StatusOK, gin.H{
			"valid":        false,
			"index":        ie.Index,
			"block_number": ie.BlockNumber,
			"reason":       ie.Reason,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// Export returns the full chain as a JSON attachment
// GET /api/v1/chain/export
func (h *ChainHandler) Export(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="`+node.ExportFilename(h.now())+`"`)
	c.IndentedJSON(http.StatusOK, h.node.ExportAll())
}

// Stats returns the source distribution
// GET /api/v1/stats?top=10
func (h *ChainHandler) Stats(c *gin.Context) {
	top, ok := queryInt(c, "top", node.DefaultTopN)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.node.Stats(top))
}

// Status returns the node summary
// GET /api/v1/status
func (h *ChainHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.node.Status())
}
