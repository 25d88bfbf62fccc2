package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .cfk/ project directory.
// All fields are pre-computed strings.
type Paths struct {
	Root string // .cfk/
	DB   string // .cfk/cfk.db

	LogDir    string // .cfk/log/
	KernelLog string // .cfk/log/kernel.log

	RunDir  string // .cfk/run/
	PIDFile string // .cfk/run/watch.pid

	PluginsDir string // .cfk/plugins/
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".cfk")
	return &Paths{
		Root: root,
		DB:   filepath.Join(root, "cfk.db"),

		LogDir:    filepath.Join(root, "log"),
		KernelLog: filepath.Join(root, "log", "kernel.log"),

		RunDir:  filepath.Join(root, "run"),
		PIDFile: filepath.Join(root, "run", "watch.pid"),

		PluginsDir: filepath.Join(root, "plugins"),
	}
}

// EnsureDirs creates all subdirectories under .cfk/. Idempotent.
func (p *Paths) EnsureDirs() error {
	dirs := []string{
		p.Root,
		p.LogDir,
		p.RunDir,
		p.PluginsDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files (the watch PID file).
// Called on clean shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
}
