package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thanhnp/bicle/internal/config"
	"github.com/thanhnp/bicle/internal/feed"
	"github.com/thanhnp/bicle/internal/logger"
	"github.com/thanhnp/bicle/internal/node"
	"github.com/thanhnp/bicle/internal/notifier"
	"github.com/thanhnp/bicle/internal/scheduler"
	"github.com/thanhnp/bicle/internal/storage"
	"github.com/thanhnp/bicle/pkg/semver"
)

// Version is the node version
const Version = "1.0.0"

var nodeVersion = semver.MustParse(Version)

// NewRootCmd builds the root command and its subcommands. Each call returns
// a fresh tree with its own flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bicle",
		Short: "Hash-linked ledger of deduplicated news",
	}

	root.PersistentFlags().StringP("config", "c", "config.yaml", "Path to configuration file")

	root.AddCommand(
		NewServeCmd(),
		NewMineCmd(),
		NewVerifyCmd(),
		NewExportCmd(),
		NewVersionCmd(),
	)
	return root
}

// loadConfig reads and validates the configuration named by the --config
// flag and sets up logging
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Dir); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return cfg, nil
}

// openNode opens the configured store and loads the node. Submitted links
// are looked up through the feed fetcher.
func openNode(cfg *config.Config) (*node.Node, error) {
	log := logger.WithPrefix("storage")
	log.WithFields(logrus.Fields{
		"backend": cfg.Storage.Backend,
		"dir":     cfg.Storage.Dir,
	}).Info("Opening store")

	gw, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return node.New(gw, node.Options{
		Version:         nodeVersion.String(),
		MaxNews:         cfg.Mining.MaxNews,
		DedupTTL:        cfg.Dedup.TTL,
		AutoMineEnabled: cfg.Mining.AutoMine,
		Lookup:          newFetcher(cfg),
		Log:             logger.WithPrefix("node"),
	}), nil
}

// newFetcher builds the feed source from the configured feeds
func newFetcher(cfg *config.Config) *feed.Fetcher {
	sources := make([]feed.Source, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		sources = append(sources, feed.Source{Name: f.Name, URL: f.URL})
	}
	return feed.New(sources, 0, logger.WithPrefix("feed"))
}

// newNotifier always logs blocks and posts them to the webhook when set
func newNotifier(cfg *config.Config) notifier.Notifier {
	n := notifier.Multi{notifier.NewLogNotifier(logger.WithPrefix("notifier"))}
	if cfg.Notifier.WebhookURL != "" {
		n = append(n, notifier.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout))
	}
	return n
}

// newJob wires a mining pass over the configured feeds
func newJob(cfg *config.Config, n *node.Node, perFeed int) *scheduler.Job {
	return scheduler.NewJob(n, newFetcher(cfg), newNotifier(cfg), perFeed, cfg.Mining.MaxNews, logger.WithPrefix("miner"))
}
