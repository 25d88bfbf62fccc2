package app

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/cfk/internal/adapters/dynlib"
	"github.com/corey/cfk/internal/domain/library"
)

// compilePlugin builds a shared library for name from C source into dir,
// skipping the test when no C compiler is available.
func compilePlugin(t *testing.T, dir, name, source string) string {
	t.Helper()
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("dlopen only on unix")
	}
	var cc string
	for _, c := range []string{"cc", "gcc", "clang"} {
		if p, err := exec.LookPath(c); err == nil {
			cc = p
			break
		}
	}
	if cc == "" {
		t.Skip("no C compiler on PATH")
	}
	src := filepath.Join(t.TempDir(), "plugin.c")
	require.NoError(t, os.WriteFile(src, []byte(source), 0644))
	out := filepath.Join(dir, dynlib.LibFileName(name))
	if b, err := exec.Command(cc, "-shared", "-fPIC", "-o", out, src).CombinedOutput(); err != nil {
		t.Skipf("compiling %s: %v\n%s", name, err, b)
	}
	return out
}

func TestNew_DiscoversSharedLibraryPlugin(t *testing.T) {
	dir := t.TempDir()
	path := compilePlugin(t, dir, "cf3.gmsh", `
int cfk_cf3_gmsh_initiate(void) { return 0; }
int cfk_cf3_gmsh_terminate(void) { return 0; }
const char *cfk_cf3_gmsh_description(void) { return "gmsh reader"; }
`)

	cfg := testConfig(t)
	cfg.Loader = nil
	cfg.PluginPaths = []string{dir}
	cfg.Autoload = []string{"cf3.gmsh"}
	k := newKernel(t, cfg)

	_, isDynlib := k.Loader().(*dynlib.Loader)
	assert.True(t, isDynlib)

	lib, ok := k.Libraries.Get("cf3.gmsh")
	require.True(t, ok)
	assert.Equal(t, library.ScopeDynamic, lib.Scope())
	assert.Equal(t, path, lib.Path())
	assert.Equal(t, "gmsh reader", lib.Description())
	assert.Equal(t, library.StateInitiated, lib.State())

	node, err := k.Resolve("libraries/cf3.gmsh")
	require.NoError(t, err)
	scope, _ := node.Property("scope")
	assert.Equal(t, "dynamic", scope)

	require.NoError(t, k.Stop(context.Background()))
	assert.Equal(t, library.StateTerminated, lib.State())
}
