package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, FormatConsole, cfg.Format)
	require.NoError(t, cfg.Validate())

	cfg = Config{Level: "DEBUG", Format: "JSON"}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	bad := Config{Level: "loud", Format: FormatJSON}
	require.Error(t, bad.Validate())
	bad = Config{Level: "info", Format: "xml"}
	require.Error(t, bad.Validate())
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: FormatJSON}, &buf)
	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: FormatConsole, NoColor: true}, &buf)
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "INF")
	assert.Contains(t, buf.String(), "hello")
}
