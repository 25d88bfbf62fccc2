package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default("/proj")
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, filepath.Join("/proj", ".cfk", "cfk.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("/proj", ".cfk", "plugins"), cfg.PluginPaths[0])
	assert.True(t, cfg.AutoloadAll())
	assert.False(t, cfg.AutoInitiate)
}

func TestLoadWith_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadWith(dir, filepath.Join(dir, FileName), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Default(dir), cfg)
}

func TestLoadWith_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
profile = "cavity"
db_path = "state/journal.db"
plugin_paths = ["plugins", "/opt/cfk/plugins"]
autoload = ["cf3.common", " cf3.mesh "]
auto_initiate = true
log_level = "debug"
`)
	cfg, err := LoadWith(dir, path, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "cavity", cfg.Profile)
	assert.Equal(t, filepath.Join(dir, "state", "journal.db"), cfg.DBPath)
	assert.Equal(t, []string{filepath.Join(dir, "plugins"), "/opt/cfk/plugins"}, cfg.PluginPaths)
	assert.Equal(t, []string{"cf3.common", "cf3.mesh"}, cfg.Autoload)
	assert.False(t, cfg.AutoloadAll())
	assert.True(t, cfg.AutoInitiate)
	assert.False(t, cfg.WatchPlugins) // not defined, default kept
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadWith_EmptyDBPathDisablesJournal(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `db_path = ""`)
	cfg, err := LoadWith(dir, path, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "", cfg.DBPath)
}

func TestLoadWith_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
profile = "cavity"
watch_plugins = false
`)
	cfg, err := LoadWith(dir, path, map[string]string{
		"CFK_PROFILE":       "channel",
		"CFK_PLUGIN_PATH":   "/a:/b",
		"CFK_AUTOLOAD":      "cf3.mesh, cf3.physics",
		"CFK_WATCH_PLUGINS": "true",
		"CFK_AUTO_INITIATE": "true",
		"CFK_DB_PATH":       "/tmp/j.db",
		"CFK_LOG_LEVEL":     "warn",
	})
	require.NoError(t, err)
	assert.Equal(t, "channel", cfg.Profile)
	assert.Equal(t, []string{"/a", "/b"}, cfg.PluginPaths)
	assert.Equal(t, []string{"cf3.mesh", "cf3.physics"}, cfg.Autoload)
	assert.True(t, cfg.WatchPlugins)
	assert.True(t, cfg.AutoInitiate)
	assert.Equal(t, "/tmp/j.db", cfg.DBPath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadWith_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadWith(dir, writeConfig(t, dir, `profile = `), map[string]string{})
	assert.ErrorContains(t, err, "config parse failed")

	_, err = LoadWith(dir, writeConfig(t, dir, `colour = "blue"`), map[string]string{})
	assert.ErrorContains(t, err, `unknown key "colour"`)

	_, err = LoadWith(dir, writeConfig(t, dir, `autoload = ["Mesh"]`), map[string]string{})
	assert.ErrorContains(t, err, "invalid library name")

	_, err = LoadWith(dir, writeConfig(t, dir, `profile = ""`), map[string]string{})
	assert.ErrorContains(t, err, "profile must not be empty")

	_, err = LoadWith(dir, filepath.Join(dir, "absent.toml"), map[string]string{"CFK_AUTO_INITIATE": "maybe"})
	assert.ErrorContains(t, err, "parse env")
}
