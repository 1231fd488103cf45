package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thanhnp/bicle/internal/api"
	"github.com/thanhnp/bicle/internal/logger"
	"github.com/thanhnp/bicle/internal/scheduler"
)

// NewServeCmd returns the command that runs the HTTP API and the auto-miner
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when enabled, auto-mining",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.WithPrefix("main")
	log.WithField("version", nodeVersion.String()).Info("Starting bicle node")

	n, err := openNode(cfg)
	if err != nil {
		return err
	}
	defer n.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sched *scheduler.Scheduler
	if cfg.Mining.AutoMine {
		job := newJob(cfg, n, cfg.Mining.AutoFeedLimit)
		sched, err = scheduler.New(cfg.Mining.Schedule, job, cfg.Mining.FirstRunDelay, logger.WithPrefix("scheduler"))
		if err != nil {
			return err
		}
		sched.Start(ctx)
	}
	n.SetAutoMine(sched != nil)

	router := api.NewRouter(n, newJob(cfg, n, cfg.Mining.FeedLimit), cfg.Mining.FeedLimit, logger.WithPrefix("api"))
	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	log.Info("Shutting down...")
	cancel()
	if sched != nil {
		sched.Stop()
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	log.Info("Server stopped")
	return nil
}
