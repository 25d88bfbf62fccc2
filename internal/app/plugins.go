package app

import (
	"github.com/corey/cfk/internal/adapters/dynlib"
	fsw "github.com/corey/cfk/internal/adapters/fsnotify"
	"github.com/corey/cfk/internal/ports"
)

func newPluginWatcher(loader ports.PluginLoader) (*fsw.Watcher, error) {
	return fsw.NewWatcher(dynlib.LibExtension(), func(path string) bool {
		_, ok := loader.NameFromPath(path)
		return ok
	})
}

// onPlugin registers a plugin that appeared in a watched directory and
// initiates it when it is on the autoload list. Shared libraries cannot be
// unloaded safely, so a removed file only logs; the library stays registered
// until the process exits.
func (k *Kernel) onPlugin(ev ports.PluginEvent) {
	name, ok := k.loader.NameFromPath(ev.Path)
	if !ok {
		return
	}
	log := k.log.With().Str("library", name).Str("path", ev.Path).Logger()

	if ev.Removed {
		if k.Libraries.Has(name) {
			log.Warn().Msg("plugin file removed; library stays loaded until restart")
		}
		return
	}
	if k.Libraries.Has(name) {
		log.Debug().Msg("plugin already registered")
		return
	}

	h, err := k.loader.LoadPath(ev.Path)
	if err != nil {
		log.Warn().Err(err).Msg("plugin load failed")
		return
	}
	if err := k.Libraries.Register(h); err != nil {
		log.Warn().Err(err).Msg("plugin register failed")
		return
	}
	log.Info().Msg("plugin registered")

	if !k.wantsAutoload(name) {
		return
	}
	k.mu.Lock()
	ctx := k.ctx
	k.mu.Unlock()
	if err := k.Libraries.Initiate(ctx, name); err != nil {
		log.Warn().Err(err).Msg("plugin initiate failed")
	}
}
