package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/cfk/internal/adapters/dynlib"
	"github.com/corey/cfk/internal/domain/library"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins [name]",
	Short: "List plugin libraries in the search paths",
	Long: "Lists shared libraries named " + dynlib.FilePrefix + "<name>" + dynlib.LibExtension() + " found in the plugin paths.\n" +
		"With a name, shows the file and C symbols the loader expects for it.",
	Args: cobra.MaximumNArgs(1),
	RunE: runPlugins,
}

func runPlugins(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadSettings()
	if err != nil {
		return err
	}
	loader := dynlib.NewLoader(cfg.PluginPaths)
	defer loader.Close()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		name := args[0]
		if !library.ValidName(name) {
			return fmt.Errorf("invalid library name %q", name)
		}
		path := loader.Path(name)
		found := paint(colorYellow, "✗ not found")
		if path != "" {
			found = paint(colorGreen, "✓ "+path)
		}
		fmt.Fprintf(out, "%s\n", paint(colorBold, "▸ plugin "+name))
		fmt.Fprintf(out, "  File:       %s\n", dynlib.LibFileName(name))
		fmt.Fprintf(out, "  Location:   %s\n", found)
		fmt.Fprintf(out, "  Initiate:   int %s(void)\n", dynlib.SymbolName(name, "initiate"))
		fmt.Fprintf(out, "  Terminate:  int %s(void)\n", dynlib.SymbolName(name, "terminate"))
		fmt.Fprintf(out, "  Describe:   const char *%s(void)\n", dynlib.SymbolName(name, "description"))
		return nil
	}

	installed := loader.Installed()
	fmt.Fprintf(out, "%s\n", paint(colorBold, fmt.Sprintf("▸ %d plugins", len(installed))))
	for _, name := range installed {
		fmt.Fprintf(out, "  %s  %s\n", paint(colorCyan, name), paint(colorGray, loader.Path(name)))
	}
	if len(installed) == 0 {
		for _, dir := range loader.SearchPaths() {
			fmt.Fprintf(out, "  %s\n", paint(colorGray, "searched "+dir))
		}
	}
	return nil
}
