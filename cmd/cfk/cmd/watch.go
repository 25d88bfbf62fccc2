package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/cfk/internal/app"
)

var watchLogFile bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the kernel and register plugins as they appear",
	Long: "Starts a long-running kernel with the journal enabled and watches the plugin search paths.\n" +
		"New plugin libraries are registered, and initiated when on the autoload list. Stop with Ctrl-C.",
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchLogFile, "log-file", true, "Also write logs to .cfk/log/kernel.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadSettings()
	if err != nil {
		return err
	}
	cfg.WatchPlugins = true

	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	if pid := readPID(paths.PIDFile); pid > 0 && processAlive(pid) {
		return fmt.Errorf("watcher already running (pid %d)", pid)
	}
	paths.CleanEphemeral()

	var out io.Writer = os.Stderr
	if watchLogFile {
		f, err := os.OpenFile(paths.KernelLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = io.MultiWriter(os.Stderr, f)
	}
	configureLogging(cfg, out)

	// Catch signals before the pid file announces us.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx := cmd.Context()
	k, err := startKernel(ctx, root, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		_ = k.Stop(ctx)
		return err
	}
	defer paths.CleanEphemeral()

	if err := k.Start(ctx); err != nil {
		_ = k.Stop(ctx)
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %d libraries, watching %d directories\n",
		paint(colorBold, "▸ kernel running:"), k.Libraries.Len(), len(cfg.PluginPaths))
	for _, dir := range cfg.PluginPaths {
		fmt.Fprintf(w, "  %s\n", paint(colorCyan, dir))
	}

	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	fmt.Fprintf(w, "\n%s\n", paint(colorBold, "▸ shutting down..."))
	return k.Stop(ctx)
}
