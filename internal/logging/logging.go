// Package logging configures the zerolog logger shared by the kernel and CLI.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "CFK_LOG_LEVEL"
	EnvLogTimestamp = "CFK_LOG_TIMESTAMP"
	EnvLogNoColor   = "CFK_LOG_NOCOLOR"
	EnvLogFormat    = "CFK_LOG_FORMAT"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config selects level and output shape.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	JSON      bool
	Out       io.Writer
}

// overrides mirrors the CFK_LOG_* variables; empty means unset.
type overrides struct {
	Level     string `env:"CFK_LOG_LEVEL"`
	Timestamp string `env:"CFK_LOG_TIMESTAMP"`
	NoColor   string `env:"CFK_LOG_NOCOLOR"`
	Format    string `env:"CFK_LOG_FORMAT"`
}

var (
	configureOnce sync.Once
	logger        = zerolog.Nop()
)

func ConfigureTests() zerolog.Logger { return Configure(ProfileTest) }

// Configure installs the profile's defaults, overlaid with CFK_LOG_*, as the
// process logger. Only the first Configure or ConfigureWith call installs;
// later calls return the installed logger.
func Configure(profile Profile) zerolog.Logger {
	cfg := DefaultConfig(profile)
	envErr := ApplyEnv(&cfg, nil)
	l, installed := install(cfg)
	if installed && envErr != nil {
		l.Warn().Err(envErr).Msg("ignoring malformed log settings")
	}
	return l
}

// ConfigureWith installs a fully resolved cfg as the process logger.
func ConfigureWith(cfg Config) zerolog.Logger {
	l, _ := install(cfg)
	return l
}

func install(cfg Config) (zerolog.Logger, bool) {
	installed := false
	configureOnce.Do(func() {
		logger = New(cfg)
		installed = true
	})
	return logger, installed
}

// L returns the configured logger, or a no-op logger before Configure.
func L() *zerolog.Logger {
	return &logger
}

func DefaultConfig(profile Profile) Config {
	cfg := Config{Out: os.Stderr}
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
		cfg.Timestamp = false
		cfg.NoColor = true
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

// ApplyEnv overlays CFK_LOG_* values onto cfg. environ replaces the process
// environment when non-nil. Each variable is applied on its own: a malformed
// value is skipped and reported in the returned error, the rest still apply.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	var o overrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ}); err != nil {
		return err
	}
	var errList []error
	if o.Level != "" {
		if lvl, ok := ParseLevel(o.Level); ok {
			cfg.Level = lvl
		} else {
			errList = append(errList, fmt.Errorf("%s: unknown level %q", EnvLogLevel, o.Level))
		}
	}
	if o.Timestamp != "" {
		if v, err := strconv.ParseBool(o.Timestamp); err == nil {
			cfg.Timestamp = v
		} else {
			errList = append(errList, fmt.Errorf("%s: %w", EnvLogTimestamp, err))
		}
	}
	if o.NoColor != "" {
		if v, err := strconv.ParseBool(o.NoColor); err == nil {
			cfg.NoColor = v
		} else {
			errList = append(errList, fmt.Errorf("%s: %w", EnvLogNoColor, err))
		}
	}
	switch strings.ToLower(strings.TrimSpace(o.Format)) {
	case "":
	case "json":
		cfg.JSON = true
	case "console", "text":
		cfg.JSON = false
	default:
		errList = append(errList, fmt.Errorf("%s: unknown format %q", EnvLogFormat, o.Format))
	}
	return errors.Join(errList...)
}

// New builds a logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    cfg.NoColor,
			TimeFormat: time.TimeOnly,
			PartsExclude: func() []string {
				if cfg.Timestamp {
					return nil
				}
				return []string{zerolog.TimestampFieldName}
			}(),
		}
	}
	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
