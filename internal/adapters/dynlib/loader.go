// Package dynlib implements ports.PluginLoader with purego: plugin libraries
// are plain shared libraries (.so on Linux, .dylib on macOS) opened without cgo.
//
// A plugin for library cf3.mesh.gmsh ships as libcfk_cf3.mesh.gmsh.so and
// exports C functions named after the library with dots replaced by
// underscores:
//
//	int         cfk_cf3_mesh_gmsh_initiate(void);   // optional, 0 = success
//	int         cfk_cf3_mesh_gmsh_terminate(void);  // optional, 0 = success
//	const char *cfk_cf3_mesh_gmsh_description(void); // optional
package dynlib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/errs"
)

// FilePrefix starts every plugin shared library file name.
const FilePrefix = "libcfk_"

// Loader opens plugin shared libraries from ordered search paths and caches
// the resulting handles by library name.
type Loader struct {
	searchPaths []string
	mu          sync.Mutex
	loaded      map[string]*library.Handle
	handles     []uintptr
}

// NewLoader creates a loader that searches the given paths for plugins.
// Paths are searched in order; first match wins.
func NewLoader(searchPaths []string) *Loader {
	return &Loader{
		searchPaths: searchPaths,
		loaded:      make(map[string]*library.Handle),
	}
}

// LibExtension returns the shared library extension for the current platform.
func LibExtension() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// LibFileName returns the shared library file name for a library.
func LibFileName(name string) string {
	return FilePrefix + name + LibExtension()
}

// SymbolName returns the exported C symbol for a library hook, e.g.
// SymbolName("cf3.mesh", "initiate") == "cfk_cf3_mesh_initiate".
func SymbolName(name, hook string) string {
	return "cfk_" + strings.ReplaceAll(name, ".", "_") + "_" + hook
}

// NameFromPath derives the library name from a plugin file path.
func (l *Loader) NameFromPath(path string) (string, bool) {
	return nameFromPath(path)
}

func nameFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	ext := LibExtension()
	if !strings.HasPrefix(base, FilePrefix) || !strings.HasSuffix(base, ext) {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(base, FilePrefix), ext)
	if !library.ValidName(name) {
		return "", false
	}
	return name, true
}

// Path returns the path of the shared library for a library name, or "" if not found.
func (l *Loader) Path(name string) string {
	file := LibFileName(name)
	for _, dir := range l.searchPaths {
		candidate := filepath.Join(dir, file)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load opens the plugin for name from the search paths.
func (l *Loader) Load(name string) (*library.Handle, error) {
	if !library.ValidName(name) {
		return nil, errs.New(errs.BadValue, "invalid library name %q", name)
	}
	l.mu.Lock()
	if cached, ok := l.loaded[name]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	path := l.Path(name)
	if path == "" {
		return nil, errs.New(errs.FileSystem, "plugin %q: %s not found in search paths", name, LibFileName(name))
	}
	return l.open(name, path)
}

// LoadPath opens a plugin by file path.
func (l *Loader) LoadPath(path string) (*library.Handle, error) {
	name, ok := nameFromPath(path)
	if !ok {
		return nil, errs.New(errs.BadValue, "%s is not a plugin library", path)
	}
	l.mu.Lock()
	if cached, ok := l.loaded[name]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()
	return l.open(name, path)
}

func (l *Loader) open(name, path string) (*library.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.loaded[name]; ok {
		return cached, nil
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, errs.Wrap(errs.FileSystem, err, "plugin %q: dlopen %s", name, path)
	}
	l.handles = append(l.handles, handle)

	opts := []library.Option{
		library.WithDynamicPath(path),
		library.WithHooks(library.Hooks{
			Initiate:  hook(handle, name, "initiate"),
			Terminate: hook(handle, name, "terminate"),
		}),
	}
	if sym, err := purego.Dlsym(handle, SymbolName(name, "description")); err == nil && sym != 0 {
		var describe func() string
		purego.RegisterFunc(&describe, sym)
		opts = append(opts, library.WithDescription(describe()))
	}

	h := library.NewHandle(name, opts...)
	l.loaded[name] = h
	return h, nil
}

// hook binds an optional int(void) export; a missing symbol yields a nil hook.
func hook(handle uintptr, name, which string) func(context.Context) error {
	symName := SymbolName(name, which)
	sym, err := purego.Dlsym(handle, symName)
	if err != nil || sym == 0 {
		return nil
	}
	var fn func() int32
	purego.RegisterFunc(&fn, sym)
	return func(context.Context) error {
		if rc := fn(); rc != 0 {
			return fmt.Errorf("%s returned %d", symName, rc)
		}
		return nil
	}
}

// Installed returns library names found as plugins in the search paths.
func (l *Loader) Installed() []string {
	ext := LibExtension()
	seen := make(map[string]bool)
	var names []string
	for _, dir := range l.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
				continue
			}
			name, ok := nameFromPath(e.Name())
			if ok && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Close releases all dlopen handles. Handles returned earlier must not be
// initiated or terminated afterwards.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, h := range l.handles {
		_ = purego.Dlclose(h)
	}
	l.handles = nil
	l.loaded = make(map[string]*library.Handle)
}

// SearchPaths returns the configured search paths.
func (l *Loader) SearchPaths() []string {
	return l.searchPaths
}
