package ports

import "github.com/corey/cfk/internal/domain/library"

// PluginLoader turns shared libraries on disk into library handles.
// The concrete implementation (purego) lives in internal/adapters/dynlib.
// When nil, the kernel runs with builtin libraries only.
type PluginLoader interface {
	// Load opens the shared library for the named plugin library and returns a
	// handle whose hooks call into it. Subsequent calls for the same name
	// return the cached handle.
	Load(name string) (*library.Handle, error)

	// LoadPath opens a shared library by file path; the library name is
	// derived from the file name.
	LoadPath(path string) (*library.Handle, error)

	// Installed returns names of plugin libraries found in the search paths.
	Installed() []string

	// NameFromPath derives a library name from a shared library file path,
	// reporting false for files that are not plugin libraries.
	NameFromPath(path string) (string, bool)

	// Close drops all opened handles.
	Close()
}
