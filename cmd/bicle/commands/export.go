package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thanhnp/bicle/internal/node"
)

// NewExportCmd returns the command that writes the full chain to a file
func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full chain as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			n, err := openNode(cfg)
			if err != nil {
				return err
			}
			defer n.Close()

			target := output
			if target == "" {
				target = node.ExportFilename(time.Now())
			}

			blocks := n.ExportAll()
			data, err := json.MarshalIndent(blocks, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal chain: %w", err)
			}
			if err := os.WriteFile(target, data, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d blocks to %s\n", len(blocks), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default bicle_blockchain_<timestamp>.json)")
	return cmd
}
