package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var libsJSON bool

var libsCmd = &cobra.Command{
	Use:   "libs",
	Short: "List registered libraries",
	Long:  "Starts a kernel with the project configuration and lists every library with its lifecycle state.",
	Args:  cobra.NoArgs,
	RunE:  runLibs,
}

func init() {
	libsCmd.Flags().BoolVar(&libsJSON, "json", false, "Output as JSON")
}

func runLibs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	k, err := openKernel(ctx, false)
	if err != nil {
		return err
	}
	defer k.Stop(ctx)

	rows := libraryRows(k.Libraries.List(), k.Builders)
	out := cmd.OutOrStdout()
	if libsJSON {
		return writeJSON(out, rows)
	}
	fmt.Fprint(out, formatLibraries(rows))
	return nil
}
