// Package config loads kernel settings from cfk.toml with CFK_* environment
// overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/corey/cfk/internal/domain/library"
)

// FileName is the config file looked up in the project directory.
const FileName = "cfk.toml"

// Config is the resolved kernel configuration.
type Config struct {
	Profile      string   // journal namespace
	DBPath       string   // bbolt journal; "" disables the journal
	PluginPaths  []string // shared library search paths, in priority order
	Autoload     []string // libraries initiated at startup; "*" means all
	AutoInitiate bool     // initiate a builder's library on first use
	WatchPlugins bool     // register plugins that appear while running
	LogLevel     string
}

// fileConfig is the cfk.toml key mapping.
type fileConfig struct {
	Profile      string   `toml:"profile"`
	DBPath       string   `toml:"db_path"`
	PluginPaths  []string `toml:"plugin_paths"`
	Autoload     []string `toml:"autoload"`
	AutoInitiate bool     `toml:"auto_initiate"`
	WatchPlugins bool     `toml:"watch_plugins"`
	LogLevel     string   `toml:"log_level"`
}

// envConfig holds the CFK_* overrides; nil pointers are unset.
type envConfig struct {
	Profile      *string  `env:"CFK_PROFILE"`
	DBPath       *string  `env:"CFK_DB_PATH"`
	PluginPaths  []string `env:"CFK_PLUGIN_PATH" envSeparator:":"`
	Autoload     []string `env:"CFK_AUTOLOAD" envSeparator:","`
	AutoInitiate *bool    `env:"CFK_AUTO_INITIATE"`
	WatchPlugins *bool    `env:"CFK_WATCH_PLUGINS"`
	LogLevel     *string  `env:"CFK_LOG_LEVEL"`
}

// Default returns the configuration used when no file exists.
func Default(projectRoot string) Config {
	cfg := Config{
		Profile:      "default",
		DBPath:       filepath.Join(projectRoot, ".cfk", "cfk.db"),
		PluginPaths:  []string{filepath.Join(projectRoot, ".cfk", "plugins")},
		Autoload:     []string{"*"},
		AutoInitiate: false,
		WatchPlugins: false,
		LogLevel:     "info",
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.PluginPaths = append(cfg.PluginPaths, filepath.Join(home, ".cfk", "plugins"))
	}
	return cfg
}

// Load resolves configuration for projectRoot: defaults, then
// <projectRoot>/cfk.toml if present, then the process environment.
func Load(projectRoot string) (Config, error) {
	return LoadWith(projectRoot, filepath.Join(projectRoot, FileName), nil)
}

// LoadWith is Load with an explicit config path and environment. A missing
// file is not an error; environ replaces the process environment when non-nil.
func LoadWith(projectRoot, path string, environ map[string]string) (Config, error) {
	cfg := Default(projectRoot)
	if _, err := os.Stat(path); err == nil {
		if err := overlayFile(&cfg, projectRoot, path); err != nil {
			return Config{}, err
		}
	}
	if err := overlayEnv(&cfg, environ); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, projectRoot, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("profile") {
		cfg.Profile = strings.TrimSpace(raw.Profile)
	}
	if meta.IsDefined("db_path") {
		cfg.DBPath = resolve(projectRoot, raw.DBPath)
	}
	if meta.IsDefined("plugin_paths") {
		cfg.PluginPaths = cfg.PluginPaths[:0]
		for _, p := range raw.PluginPaths {
			cfg.PluginPaths = append(cfg.PluginPaths, resolve(projectRoot, p))
		}
	}
	if meta.IsDefined("autoload") {
		cfg.Autoload = trimAll(raw.Autoload)
	}
	if meta.IsDefined("auto_initiate") {
		cfg.AutoInitiate = raw.AutoInitiate
	}
	if meta.IsDefined("watch_plugins") {
		cfg.WatchPlugins = raw.WatchPlugins
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	return nil
}

func overlayEnv(cfg *Config, environ map[string]string) error {
	var e envConfig
	if err := env.ParseWithOptions(&e, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if e.Profile != nil {
		cfg.Profile = strings.TrimSpace(*e.Profile)
	}
	if e.DBPath != nil {
		cfg.DBPath = strings.TrimSpace(*e.DBPath)
	}
	if len(e.PluginPaths) > 0 {
		cfg.PluginPaths = trimAll(e.PluginPaths)
	}
	if len(e.Autoload) > 0 {
		cfg.Autoload = trimAll(e.Autoload)
	}
	if e.AutoInitiate != nil {
		cfg.AutoInitiate = *e.AutoInitiate
	}
	if e.WatchPlugins != nil {
		cfg.WatchPlugins = *e.WatchPlugins
	}
	if e.LogLevel != nil {
		cfg.LogLevel = strings.TrimSpace(*e.LogLevel)
	}
	return nil
}

// Validate checks cross-field rules.
func Validate(cfg Config) error {
	if cfg.Profile == "" {
		return fmt.Errorf("profile must not be empty")
	}
	for _, name := range cfg.Autoload {
		if name == "*" {
			continue
		}
		if !library.ValidName(name) {
			return fmt.Errorf("autoload: invalid library name %q", name)
		}
	}
	return nil
}

// AutoloadAll reports whether every registered library is initiated at startup.
func (c Config) AutoloadAll() bool {
	for _, name := range c.Autoload {
		if name == "*" {
			return true
		}
	}
	return false
}

func resolve(root, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return filepath.Join(root, p)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
