package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	createAt    string
	createCount int
	createSet   []string
)

var createCmd = &cobra.Command{
	Use:   "create <builder> [name]",
	Short: "Build a component and print its tree",
	Long: "Builds a component with a registered builder in a fresh kernel and prints the resulting tree.\n" +
		"Without a name, one is generated from the builder name (Mesh_0, Mesh_1, ...).",
	Args: cobra.RangeArgs(1, 2),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createAt, "at", "", "Parent path under Root")
	createCmd.Flags().IntVarP(&createCount, "count", "n", 1, "Number of instances (generated names only)")
	createCmd.Flags().StringArrayVar(&createSet, "set", nil, "Option key=value applied to each instance (repeatable)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 2 {
		name = args[1]
	}
	if createCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	if createCount > 1 && name != "" {
		return fmt.Errorf("--count needs a generated name; drop the name argument")
	}

	options, err := parseOptions(createSet)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	k, err := openKernel(ctx, false)
	if err != nil {
		return err
	}
	defer k.Stop(ctx)

	out := cmd.OutOrStdout()
	for i := 0; i < createCount; i++ {
		c, err := k.CreateAt(ctx, createAt, args[0], name)
		if err != nil {
			return err
		}
		for _, o := range options {
			if err := k.Set(c.URI(), o[0], o[1]); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "%s %s\n", paint(colorBold, "▸ created"), c.URI())
		fmt.Fprint(out, formatTree(c))
	}
	return nil
}

// parseOptions splits --set values at the first '='.
func parseOptions(raw []string) ([][2]string, error) {
	out := make([][2]string, 0, len(raw))
	for _, r := range raw {
		key, value, ok := strings.Cut(r, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: want key=value", r)
		}
		out = append(out, [2]string{key, value})
	}
	return out, nil
}
