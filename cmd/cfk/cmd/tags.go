package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/cfk/internal/domain/tags"
)

var tagsCmd = &cobra.Command{
	Use:   "tags [tag]",
	Short: "List component tags, or check one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			if !tags.Valid(args[0]) {
				return fmt.Errorf("unknown tag %q", args[0])
			}
			fmt.Fprintf(out, "%s\n", paint(colorGreen, "#"+args[0]))
			return nil
		}
		for _, t := range tags.All() {
			fmt.Fprintf(out, "%s\n", paint(colorGreen, "#"+t))
		}
		return nil
	},
}
