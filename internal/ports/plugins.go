package ports

// PluginEvent describes a shared library appearing in or leaving a plugin directory.
type PluginEvent struct {
	Path    string
	Removed bool
}

// PluginWatcher monitors plugin directories for shared libraries.
// The adapter (fsnotify) must filter out anything that is not a shared library
// for the current platform before invoking onEvent. Only one Watch call should
// be active at a time.
type PluginWatcher interface {
	// Watch starts monitoring dirs (non-recursively). onEvent may be invoked
	// from any goroutine. Directories that do not exist are skipped; an error
	// is returned only if no directory could be watched.
	Watch(dirs []string, onEvent func(PluginEvent)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onEvent calls will fire. Safe to call multiple times.
	Stop() error
}
