package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/thanhnp/bicle/internal/api/handlers"
	"github.com/thanhnp/bicle/internal/api/middleware"
	"github.com/thanhnp/bicle/internal/logger"
)

// Router wraps the Gin router with handlers
type Router struct {
	engine            *gin.Engine
	log               *logrus.Entry
	blockHandler      *handlers.BlockHandler
	submissionHandler *handlers.SubmissionHandler
	chainHandler      *handlers.ChainHandler
}

// NewRouter creates a new Router with all handlers. feedLimit is the
// number of items taken per feed for a manual mine.
func NewRouter(n handlers.Node, miner handlers.Miner, feedLimit int, log *logrus.Entry) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:            gin.New(),
		log:               logger.OrDefault(log, "api"),
		blockHandler:      handlers.NewBlockHandler(n),
		submissionHandler: handlers.NewSubmissionHandler(n),
		chainHandler:      handlers.NewChainHandler(n, miner, feedLimit),
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// setupMiddleware configures middleware
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.CORS())
}

// setupRoutes configures API routes
func (r *Router) setupRoutes() {
	// Health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.engine.Group("/api/v1")
	{
		// Block routes
		blocks := v1.Group("/blocks")
		{
			blocks.GET("/latest", r.blockHandler.GetLatest)
			blocks.GET("/recent", r.blockHandler.GetRecent)
			blocks.GET("/:number", r.blockHandler.GetByNumber)
		}

		// Submission routes
		v1.POST("/submissions", r.submissionHandler.Create)
		v1.GET("/submissions", r.submissionHandler.List)

		// Chain routes
		v1.POST("/mine", r.chainHandler.Mine)
		chain := v1.Group("/chain")
		{
			chain.GET("/verify", r.chainHandler.Verify)
			chain.GET("/export", r.chainHandler.Export)
		}
		v1.GET("/stats", r.chainHandler.Stats)
		v1.GET("/status", r.chainHandler.Status)
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
