package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `source:
  host: 127.0.0.1
  port: 3306
  user: reader
  password: test
  database: logs

search:
  policy: leftmost

tables:
  events:
    table: device_events
  logins:
    table: audit.login_log
    id_column: log_id
    time_column: logged_at
    policy: rightmost
    gap_strategy: nearest_below
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "idseek.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestListTablesCommandStructure(t *testing.T) {
	assert.Equal(t, "list-tables", listTablesCmd.Use)
	assert.NotEmpty(t, listTablesCmd.Short)
	assert.NotEmpty(t, listTablesCmd.Long)
	assert.NotNil(t, listTablesCmd.RunE)
}

func TestRunListTables(t *testing.T) {
	resetFlags(t)
	policy, gapStrategy = "", ""

	tests := []struct {
		name       string
		configFile string
		wantErr    bool
		want       []string
	}{
		{
			name:       "valid config with tables",
			configFile: writeConfig(t, testConfigYAML),
			want: []string{
				"events  device_events",
				"logins  audit.login_log  log_id",
				"logged_at",
				"rightmost",
				"nearest_below",
				"Total: 2 table(s)",
			},
		},
		{
			name: "no tables",
			configFile: writeConfig(t, `source:
  host: 127.0.0.1
  user: reader
  database: logs
`),
			want: []string{"No tables defined"},
		},
		{
			name:       "nonexistent config",
			configFile: "nonexistent-config.yaml",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgFile = tt.configFile

			var buf bytes.Buffer
			listTablesCmd.SetOut(&buf)
			listTablesCmd.SetErr(&buf)

			err := runListTables(listTablesCmd, []string{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestLoadConfig_AppliesOverrides(t *testing.T) {
	resetFlags(t)
	cfgFile = writeConfig(t, testConfigYAML)
	logLevel, logFormat, policy, gapStrategy, timezone = "debug", "json", "rightmost", "nearest_below", "Europe/Istanbul"

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "rightmost", cfg.Search.Policy)
	assert.Equal(t, "nearest_below", cfg.Search.GapStrategy)
	assert.Equal(t, "Europe/Istanbul", cfg.Search.Timezone)
}

func TestLoadConfig_Invalid(t *testing.T) {
	resetFlags(t)
	cfgFile = writeConfig(t, testConfigYAML)
	logLevel, logFormat, policy, gapStrategy, timezone = "", "", "middle", "", ""

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.policy")
}
