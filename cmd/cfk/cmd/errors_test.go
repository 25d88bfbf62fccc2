package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/corey/cfk/internal/app"
)

func TestIsDBLockError(t *testing.T) {
	assert.False(t, isDBLockError(nil))
	assert.False(t, isDBLockError(errors.New("permission denied")))
	assert.True(t, isDBLockError(fmt.Errorf("open journal: %w", bolt.ErrTimeout)))
	assert.True(t, isDBLockError(errors.New("bbolt open: timeout")))
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watch.pid")
	assert.Equal(t, 0, readPID(path))

	require.NoError(t, os.WriteFile(path, []byte("1234\n"), 0644))
	assert.Equal(t, 1234, readPID(path))

	require.NoError(t, os.WriteFile(path, []byte("nope"), 0644))
	assert.Equal(t, 0, readPID(path))
}

func TestDiagnoseDBLock(t *testing.T) {
	root := t.TempDir()
	paths := app.NewPaths(root)

	assert.Contains(t, diagnoseDBLock(root), "locked by another process")

	require.NoError(t, paths.EnsureDirs())
	pid := os.Getpid()
	require.NoError(t, os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(pid)), 0644))
	assert.Contains(t, diagnoseDBLock(root), fmt.Sprintf("running watcher (pid %d)", pid))
}
