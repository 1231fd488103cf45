package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thanhnp/bicle/internal/ledger"
)

// NewVerifyCmd returns the command that checks chain integrity. It fails
// when the chain is broken.
func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the integrity of the stored chain",
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

			if err := n.Verify(); err != nil {
				var ie *ledger.IntegrityError
				if errors.As(err, &ie) {
					fmt.Fprintf(cmd.OutOrStdout(), "INVALID: block #%d (index %d): %s\n", ie.BlockNumber, ie.Index, ie.Reason)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "VALID: %d blocks, tip %s\n", len(n.ExportAll()), n.GetTipHash())
			return nil
		},
	}
}
