package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/corey/cfk/internal/app"
	"github.com/corey/cfk/internal/config"
	"github.com/corey/cfk/internal/logging"
)

var (
	rootFlag    string
	verboseFlag bool
	noColorFlag bool
	colorFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "cfk",
	Short:         "cfk — component kernel for plugin-based solvers",
	Long:          "Registers libraries and component builders, loads plugins, and builds component trees.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		on, err := colorMode(colorFlag, noColorFlag, isTerminal(os.Stdout))
		if err != nil {
			return err
		}
		useColor = on
		return nil
	},
}

// projectRoot returns --root, or the working directory.
func projectRoot() (string, error) {
	if rootFlag != "" {
		return rootFlag, nil
	}
	return os.Getwd()
}

// loadSettings resolves cfk.toml and CFK_* for the project root.
func loadSettings() (string, config.Config, error) {
	root, err := projectRoot()
	if err != nil {
		return "", config.Config{}, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return "", config.Config{}, err
	}
	return root, cfg, nil
}

// configureLogging installs the process logger read by logging.L():
// CFK_LOG_* first, then log_level from the configuration, then --verbose.
// A non-nil out replaces stderr.
func configureLogging(cfg config.Config, out io.Writer) zerolog.Logger {
	lc := logging.DefaultConfig(logging.ProfileRuntime)
	if out != nil {
		lc.Out = out
	}
	envErr := logging.ApplyEnv(&lc, nil)
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		lc.Level = lvl
	}
	if verboseFlag {
		lc.Level = zerolog.DebugLevel
	}
	if !useColor {
		lc.NoColor = true
	}
	log := logging.ConfigureWith(lc)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("ignoring malformed log settings")
	}
	return log
}

// openKernel builds a kernel for one command. Short-lived commands run
// without the journal so they never contend with a running watcher for the
// database lock.
func openKernel(ctx context.Context, journal bool) (*app.Kernel, error) {
	root, cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if !journal {
		cfg.DBPath = ""
	}
	configureLogging(cfg, nil)
	return startKernel(ctx, root, cfg)
}

// startKernel logs through logging.L(); call configureLogging first.
func startKernel(ctx context.Context, root string, cfg config.Config) (*app.Kernel, error) {
	k, err := app.New(ctx, app.Config{Config: cfg})
	if err != nil {
		if isDBLockError(err) {
			return nil, fmt.Errorf("%s", diagnoseDBLock(root))
		}
		return nil, err
	}
	return k, nil
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", paint(colorRed, "error: "+err.Error()))
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlag, "root", "", "Project root (default: working directory)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging")
	pf.StringVar(&colorFlag, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&noColorFlag, "no-color", false, "Disable color output")

	rootCmd.AddCommand(libsCmd)
	rootCmd.AddCommand(buildersCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(commCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pluginsCmd)
}
