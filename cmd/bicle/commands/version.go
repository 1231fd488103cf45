package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thanhnp/bicle/internal/hashing"
	"github.com/thanhnp/bicle/internal/storage"
)

// NewVersionCmd returns the command that prints version information
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bicle %s\n", nodeVersion)
			fmt.Fprintf(out, "hash scheme %s\n", hashing.SchemeVersion)
			fmt.Fprintf(out, "store format %s\n", storage.FormatVersion)
		},
	}
}
