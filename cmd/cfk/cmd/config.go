package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/corey/cfk/internal/app"
	"github.com/corey/cfk/internal/config"
)

var configTOML bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the resolved configuration (defaults, cfk.toml, CFK_* environment) and watcher status.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configTOML, "toml", false, "Print as cfk.toml")
}

func runConfig(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadSettings()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if configTOML {
		return toml.NewEncoder(out).Encode(fileView(root, cfg))
	}

	file := filepath.Join(root, config.FileName)
	fileStatus := paint(colorGray, "(not present, using defaults)")
	if _, err := os.Stat(file); err == nil {
		fileStatus = paint(colorGreen, "✓")
	}

	paths := app.NewPaths(root)
	watcher := paint(colorYellow, "✗ not running")
	if pid := readPID(paths.PIDFile); pid > 0 && processAlive(pid) {
		watcher = paint(colorGreen, fmt.Sprintf("✓ running (pid %d)", pid))
	}

	db := cfg.DBPath
	if db == "" {
		db = paint(colorGray, "disabled")
	}
	autoInit := "no"
	if cfg.AutoInitiate {
		autoInit = "yes"
	}

	fmt.Fprintf(out, "%s\n", paint(colorBold, "▸ cfk config"))
	fmt.Fprintf(out, "  Root:          %s\n", root)
	fmt.Fprintf(out, "  File:          %s %s\n", file, fileStatus)
	fmt.Fprintf(out, "  Profile:       %s\n", cfg.Profile)
	fmt.Fprintf(out, "  Journal:       %s\n", db)
	fmt.Fprintf(out, "  Plugin paths:  %s\n", strings.Join(cfg.PluginPaths, ", "))
	fmt.Fprintf(out, "  Autoload:      %s\n", strings.Join(cfg.Autoload, ", "))
	fmt.Fprintf(out, "  Auto-initiate: %s\n", autoInit)
	fmt.Fprintf(out, "  Log level:     %s\n", cfg.LogLevel)
	fmt.Fprintf(out, "  Watcher:       %s\n", watcher)
	return nil
}

// tomlView is cfk.toml as written back out; paths are made relative to
// the project root where possible.
type tomlView struct {
	Profile      string   `toml:"profile"`
	DBPath       string   `toml:"db_path"`
	PluginPaths  []string `toml:"plugin_paths"`
	Autoload     []string `toml:"autoload"`
	AutoInitiate bool     `toml:"auto_initiate"`
	WatchPlugins bool     `toml:"watch_plugins"`
	LogLevel     string   `toml:"log_level"`
}

func fileView(root string, cfg config.Config) tomlView {
	rel := func(p string) string {
		if r, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(r, "..") {
			return r
		}
		return p
	}
	v := tomlView{
		Profile:      cfg.Profile,
		DBPath:       rel(cfg.DBPath),
		Autoload:     cfg.Autoload,
		AutoInitiate: cfg.AutoInitiate,
		WatchPlugins: cfg.WatchPlugins,
		LogLevel:     cfg.LogLevel,
	}
	if cfg.DBPath == "" {
		v.DBPath = ""
	}
	for _, p := range cfg.PluginPaths {
		v.PluginPaths = append(v.PluginPaths, rel(p))
	}
	return v
}
