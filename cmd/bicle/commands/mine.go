package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thanhnp/bicle/internal/notifier"
)

// NewMineCmd returns the command that runs a single mining pass
func NewMineCmd() *cobra.Command {
	var (
		maxNews int
		perFeed int
	)

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Fetch the feeds once and mine a block",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if perFeed < 1 {
				perFeed = cfg.Mining.FeedLimit
			}

			n, err := openNode(cfg)
			if err != nil {
				return err
			}
			defer n.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			block, ok, err := newJob(cfg, n, perFeed).RunWith(ctx, perFeed, maxNews)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No new data for mining")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), notifier.FormatBlock(block))
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxNews, "max-news", "n", 0, "Maximum entries in the block (default from config)")
	cmd.Flags().IntVar(&perFeed, "per-feed", 0, "Items taken from each feed (default from config)")
	return cmd
}
