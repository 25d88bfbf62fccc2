package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/cfk/internal/domain/builder"
)

var (
	buildersBase    string
	buildersLibrary string
	buildersJSON    bool
)

var buildersCmd = &cobra.Command{
	Use:   "builders",
	Short: "List component builders",
	Long:  "Lists builders by full name. Filter by abstract base type (--base) or owning library (--lib).",
	Args:  cobra.NoArgs,
	RunE:  runBuilders,
}

func init() {
	f := buildersCmd.Flags()
	f.StringVar(&buildersBase, "base", "", "Only builders producing this base type")
	f.StringVar(&buildersLibrary, "lib", "", "Only builders owned by this library")
	f.BoolVar(&buildersJSON, "json", false, "Output as JSON")
}

func runBuilders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	k, err := openKernel(ctx, false)
	if err != nil {
		return err
	}
	defer k.Stop(ctx)

	var list []builder.Builder
	switch {
	case buildersBase != "":
		list = k.Builders.ByBase(buildersBase)
	case buildersLibrary != "":
		list = k.Builders.ByLibrary(buildersLibrary)
	default:
		list = k.Builders.List()
	}
	if buildersBase != "" && buildersLibrary != "" {
		kept := list[:0]
		for _, b := range list {
			if b.Library == buildersLibrary {
				kept = append(kept, b)
			}
		}
		list = kept
	}

	rows := builderRows(list)
	out := cmd.OutOrStdout()
	if buildersJSON {
		return writeJSON(out, rows)
	}
	fmt.Fprint(out, formatBuilders(rows))
	if len(rows) == 0 && buildersBase != "" {
		fmt.Fprintf(out, "  %s\n", paint(colorGray, "base types: "+strings.Join(k.Builders.BaseTypes(), ", ")))
	}
	return nil
}
