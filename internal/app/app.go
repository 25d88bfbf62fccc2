// Package app wires the registries, adapters and builtin libraries into a
// kernel with an explicit startup sequence: create, start, stop.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/corey/cfk/internal/adapters/bbolt"
	"github.com/corey/cfk/internal/adapters/dynlib"
	"github.com/corey/cfk/internal/config"
	"github.com/corey/cfk/internal/domain/builder"
	"github.com/corey/cfk/internal/domain/comm"
	"github.com/corey/cfk/internal/domain/component"
	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/domain/naming"
	"github.com/corey/cfk/internal/errs"
	"github.com/corey/cfk/internal/logging"
	"github.com/corey/cfk/internal/ports"
)

// Config holds initialization parameters for the Kernel. Adapters left nil
// are created from the settings; tests inject their own.
type Config struct {
	config.Config

	Logger  *zerolog.Logger     // default: logging.L()
	Comm    comm.Communicator   // default: comm.FromEnv()
	Journal ports.Journal       // default: bbolt at DBPath ("" disables)
	Loader  ports.PluginLoader  // default: dynlib over PluginPaths
	Watcher ports.PluginWatcher // default: fsnotify, only when WatchPlugins
}

// Kernel owns everything a running process needs to build components.
type Kernel struct {
	Libraries *library.Registry
	Builders  *builder.Registry
	Names     *naming.Pool
	Comm      comm.Communicator

	cfg     Config
	log     zerolog.Logger
	journal ports.Journal
	closers []func() error // adapters the kernel opened itself, closed in reverse
	loader  ports.PluginLoader
	watcher ports.PluginWatcher

	treeMu sync.Mutex // serializes tree mutation under Root
	libMu  sync.Mutex // serializes the library mirror under Root/libraries
	root   *component.Group
	libDir *component.Group

	mu      sync.Mutex
	ctx     context.Context // lifetime of the watcher callbacks
	cancel  context.CancelFunc
	started bool
	stopped bool
}

// New registers the given modules (CoreModules when none are passed),
// discovers dynamic plugins and initiates the autoload list. On error every
// adapter New opened is closed again.
func New(ctx context.Context, cfg Config, modules ...Module) (*Kernel, error) {
	if err := config.Validate(cfg.Config); err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		modules = CoreModules()
	}

	k := &Kernel{
		Libraries: library.NewRegistry(),
		Names:     naming.NewPool(),
		cfg:       cfg,
	}
	k.Builders = builder.NewRegistry(k.Libraries)
	k.Builders.AutoInitiate = cfg.AutoInitiate
	if cfg.Logger != nil {
		k.log = *cfg.Logger
	} else {
		k.log = *logging.L()
	}
	k.log = k.log.With().Str("profile", cfg.Profile).Logger()
	k.initTree()

	if err := k.open(cfg); err != nil {
		k.close()
		return nil, err
	}
	k.Libraries.OnEvent(k.mirror)
	k.Libraries.OnEvent(k.record)
	k.Libraries.OnEvent(k.logEvent)

	for _, m := range modules {
		if err := k.registerModule(m); err != nil {
			k.close()
			return nil, fmt.Errorf("register builtin: %w", err)
		}
	}
	k.discover()

	if err := k.autoload(ctx); err != nil {
		_ = k.Libraries.TerminateAll(ctx)
		k.close()
		return nil, err
	}
	return k, nil
}

// open resolves the communicator, journal and loader.
func (k *Kernel) open(cfg Config) error {
	k.Comm = cfg.Comm
	if k.Comm == nil {
		c, err := comm.FromEnv()
		if err != nil {
			return err
		}
		k.Comm = c
	}

	k.journal = cfg.Journal
	if k.journal == nil && cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return errs.Wrap(errs.FileSystem, err, "journal directory")
		}
		store, err := bbolt.NewStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		k.journal = store
		k.closers = append(k.closers, store.Close)
	}

	k.loader = cfg.Loader
	if k.loader == nil {
		l := dynlib.NewLoader(cfg.PluginPaths)
		k.loader = l
		k.closers = append(k.closers, func() error { l.Close(); return nil })
	}
	return nil
}

// discover registers every installed plugin not shadowed by a builtin.
// A plugin that fails to load is logged and skipped.
func (k *Kernel) discover() {
	for _, name := range k.loader.Installed() {
		if k.Libraries.Has(name) {
			k.log.Warn().Str("library", name).Msg("plugin shadowed by registered library")
			continue
		}
		h, err := k.loader.Load(name)
		if err != nil {
			k.log.Warn().Err(err).Str("library", name).Msg("plugin load failed")
			continue
		}
		if err := k.Libraries.Register(h); err != nil {
			k.log.Warn().Err(err).Str("library", name).Msg("plugin register failed")
		}
	}
}

func (k *Kernel) autoload(ctx context.Context) error {
	if k.cfg.AutoloadAll() {
		return k.Libraries.InitiateAll(ctx)
	}
	for _, name := range k.cfg.Autoload {
		if err := k.Libraries.Initiate(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (k *Kernel) wantsAutoload(name string) bool {
	if k.cfg.AutoloadAll() {
		return true
	}
	for _, n := range k.cfg.Autoload {
		if n == name {
			return true
		}
	}
	return false
}

// Start begins watching plugin directories when configured to. The context
// bounds the hooks of plugins initiated from watcher events.
func (k *Kernel) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped {
		return errs.New(errs.SetupError, "kernel stopped")
	}
	if k.started {
		return nil
	}
	k.ctx, k.cancel = context.WithCancel(ctx)
	k.started = true

	if !k.cfg.WatchPlugins {
		return nil
	}
	k.watcher = k.cfg.Watcher
	if k.watcher == nil {
		w, err := newPluginWatcher(k.loader)
		if err != nil {
			return fmt.Errorf("plugin watcher: %w", err)
		}
		k.watcher = w
	}
	if err := k.watcher.Watch(k.cfg.PluginPaths, k.onPlugin); err != nil {
		k.watcher = nil
		return fmt.Errorf("watch plugins: %w", err)
	}
	k.log.Info().Strs("dirs", k.cfg.PluginPaths).Msg("watching plugin directories")
	return nil
}

// Stop stops the watcher, terminates initiated libraries in reverse order
// and closes the adapters. Safe to call more than once.
func (k *Kernel) Stop(ctx context.Context) error {
	k.mu.Lock()
	if k.stopped {
		k.mu.Unlock()
		return nil
	}
	k.stopped = true
	w := k.watcher
	cancel := k.cancel
	k.mu.Unlock()

	var errList []error
	if w != nil {
		if err := w.Stop(); err != nil {
			errList = append(errList, err)
		}
	}
	if cancel != nil {
		cancel()
	}
	if err := k.Libraries.TerminateAll(ctx); err != nil {
		errList = append(errList, err)
	}
	if err := k.close(); err != nil {
		errList = append(errList, err)
	}
	return errors.Join(errList...)
}

func (k *Kernel) close() error {
	var errList []error
	for i := len(k.closers) - 1; i >= 0; i-- {
		if err := k.closers[i](); err != nil {
			errList = append(errList, err)
		}
	}
	k.closers = nil
	return errors.Join(errList...)
}

// Profile returns the journal namespace this kernel writes to.
func (k *Kernel) Profile() string { return k.cfg.Profile }

// Config returns the settings the kernel was built with.
func (k *Kernel) Config() config.Config { return k.cfg.Config }

// History returns up to limit journal entries for this profile, newest first.
// Without a journal it returns nil.
func (k *Kernel) History(limit int) ([]ports.JournalEntry, error) {
	if k.journal == nil {
		return nil, nil
	}
	return k.journal.Entries(k.cfg.Profile, limit)
}

// Loader exposes the plugin loader.
func (k *Kernel) Loader() ports.PluginLoader { return k.loader }
