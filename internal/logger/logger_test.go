package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dbsmedya/idseek/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"unknown", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := parseLevel(tt.input)
			if level.String() != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level.String(), tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		cfg  *config.LoggingConfig
	}{
		{name: "json stdout", cfg: &config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{name: "text stderr", cfg: &config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
		{name: "default output", cfg: &config.LoggingConfig{}},
		{name: "file output", cfg: &config.LoggingConfig{Level: "warn", Format: "json", Output: filepath.Join(tmpDir, "idseek.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, logger)
			_ = logger.Sync()
		})
	}
}

func TestNew_FileOutputWritesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idseek.log")
	logger, err := New(&config.LoggingConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.WithTable("meter_sample").Infow("search complete", "id", 42)
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"table":"meter_sample"`), line)
	assert.True(t, strings.Contains(line, `"id":42`), line)
}

func TestNew_UnwritableFile(t *testing.T) {
	_, err := New(&config.LoggingConfig{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestNewDefaultAndNop(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	logger.Debug("not shown at info level")

	nop := NewNop()
	nop.Error("discarded")
	assert.NoError(t, nop.Sync())
}

func TestContextHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.WithTable("device_events").
		WithPolicy("rightmost").
		WithFields(map[string]interface{}{"target": int64(1725753600)}).
		Warn("table is empty")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "device_events", ctx["table"])
	assert.Equal(t, "rightmost", ctx["policy"])
	assert.Equal(t, int64(1725753600), ctx["target"])
}
