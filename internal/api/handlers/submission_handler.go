package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/bicle/internal/dedup"
	"github.com/thanhnp/bicle/internal/models"
)

// SubmissionRequest is the body of a news submission
type SubmissionRequest struct {
	Link      string `json:"link" binding:"required,url"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	Published string `json:"published"`
	Submitter string `json:"submitter"`
}

// SubmissionHandler handles user submissions
type SubmissionHandler struct {
	node Node
}

// NewSubmissionHandler creates a new SubmissionHandler
func NewSubmissionHandler(n Node) *SubmissionHandler {
	return &SubmissionHandler{node: n}
}

// Create queues a submission for the next block
// POST /api/v1/submissions
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission: " + err.Error()})
		return
	}

	entry, err := h.node.Submit(c.Request.Context(), models.NewsItem{
		Title:     req.Title,
		Link:      req.Link,
		Source:    req.Source,
		Published: req.Published,
	}, req.Submitter)
	switch {
	case errors.Is(err, dedup.ErrAlreadyBroadcast):
		c.JSON(http.StatusConflict, gin.H{"error": "News already broadcast", "code": "already_broadcast"})
		return
	case errors.Is(err, dedup.ErrAlreadyPending):
		c.JSON(http.StatusConflict, gin.H{"error": "News already pending", "code": "already_pending"})
		return
	case errors.Is(err, dedup.ErrMissingLink):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Link is required"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// List returns the pending queue in mining order
// GET /api/v1/submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.node.Pending())
}
