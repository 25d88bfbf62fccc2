package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/cfk/internal/domain/comm"
)

var commCmd = &cobra.Command{
	Use:   "comm",
	Short: "Show the communicator size and rank",
	Long:  "Reads CFK_COMM_*, OMPI_COMM_WORLD_* or PMI_* from the environment; serial when none are set.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := comm.FromEnv()
		if err != nil {
			return err
		}
		role := "worker"
		if c.IsRoot() {
			role = "root"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", paint(colorBold, "▸ communicator"))
		fmt.Fprintf(out, "  Size:  %d\n", c.Size())
		fmt.Fprintf(out, "  Rank:  %d (%s)\n", c.Rank(), role)
		return nil
	},
}
