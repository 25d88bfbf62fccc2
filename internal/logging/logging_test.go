package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw   string
		level zerolog.Level
		ok    bool
	}{
		{"", zerolog.InfoLevel, false},
		{"trace", zerolog.TraceLevel, true},
		{" DEBUG ", zerolog.DebugLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			lvl, ok := ParseLevel(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.level, lvl)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	rt := DefaultConfig(ProfileRuntime)
	assert.Equal(t, zerolog.InfoLevel, rt.Level)
	assert.True(t, rt.Timestamp)

	tc := DefaultConfig(ProfileTest)
	assert.Equal(t, zerolog.DebugLevel, tc.Level)
	assert.False(t, tc.Timestamp)
	assert.True(t, tc.NoColor)
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig(ProfileRuntime)
	err := ApplyEnv(&cfg, map[string]string{
		EnvLogLevel:     "debug",
		EnvLogTimestamp: "false",
		EnvLogNoColor:   "true",
		EnvLogFormat:    "json",
	})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.JSON)
}

func TestApplyEnv_UnsetKeepsDefaults(t *testing.T) {
	cfg := DefaultConfig(ProfileRuntime)
	require.NoError(t, ApplyEnv(&cfg, map[string]string{}))
	assert.Equal(t, zerolog.InfoLevel, cfg.Level)
	assert.True(t, cfg.Timestamp)
	assert.False(t, cfg.JSON)
}

func TestApplyEnv_MalformedValueKeepsTheRest(t *testing.T) {
	cfg := DefaultConfig(ProfileRuntime)
	err := ApplyEnv(&cfg, map[string]string{
		EnvLogLevel:     "debug",
		EnvLogTimestamp: "maybe",
		EnvLogNoColor:   "true",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvLogTimestamp)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.True(t, cfg.Timestamp)
	assert.True(t, cfg.NoColor)

	cfg = DefaultConfig(ProfileRuntime)
	err = ApplyEnv(&cfg, map[string]string{EnvLogLevel: "bogus", EnvLogFormat: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvLogLevel)
	assert.Contains(t, err.Error(), EnvLogFormat)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level)
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.InfoLevel, JSON: true, Out: &buf})

	log.Debug().Msg("hidden")
	log.Info().Str("library", "cf3.mesh").Msg("initiated")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "cf3.mesh", rec["library"])
	assert.Equal(t, "initiated", rec["message"])
	assert.NotContains(t, rec, "time")
}

func TestNew_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.DebugLevel, NoColor: true, Out: &buf})
	log.Debug().Str("library", "cf3.mesh").Msg("registered")
	assert.Contains(t, buf.String(), "registered")
	assert.Contains(t, buf.String(), "library=cf3.mesh")
}

func TestConfigureWith_FirstCallInstalls(t *testing.T) {
	assert.NotPanics(t, func() { L().Info().Msg("dropped") })

	var first, second bytes.Buffer
	ConfigureWith(Config{Level: zerolog.InfoLevel, JSON: true, Out: &first})
	ConfigureWith(Config{Level: zerolog.InfoLevel, JSON: true, Out: &second})
	ConfigureTests()

	L().Info().Msg("kept")
	assert.Contains(t, first.String(), "kept")
	assert.Empty(t, second.String())
}
