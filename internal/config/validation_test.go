package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Source.Host = "localhost"
	cfg.Source.User = "root"
	cfg.Source.Database = "sma"
	return cfg
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)
	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	return fields
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Source(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.Port = 70000
	cfg.Source.TLS = "sometimes"
	cfg.Source.MaxConnections = -1

	fields := validationFields(t, cfg.Validate())
	assert.Contains(t, fields, "source.host")
	assert.Contains(t, fields, "source.port")
	assert.Contains(t, fields, "source.user")
	assert.Contains(t, fields, "source.database")
	assert.Contains(t, fields, "source.tls")
	assert.Contains(t, fields, "source.max_connections")
}

func TestValidate_Replica(t *testing.T) {
	cfg := validConfig()
	cfg.Replica.Enabled = true
	cfg.Replica.LagThreshold = -1

	fields := validationFields(t, cfg.Validate())
	assert.Contains(t, fields, "replica.host")
	assert.Contains(t, fields, "replica.user")
	assert.Contains(t, fields, "replica.lag_threshold")

	// Disabled replicas are not validated.
	cfg.Replica.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestValidate_SSH(t *testing.T) {
	cfg := validConfig()
	cfg.SSH.Enabled = true

	fields := validationFields(t, cfg.Validate())
	assert.Contains(t, fields, "ssh.host")
	assert.Contains(t, fields, "ssh.user")
	assert.Contains(t, fields, "ssh")

	cfg.SSH.Host = "bastion"
	cfg.SSH.User = "deploy"
	cfg.SSH.KeyFile = "/tmp/key"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Tables(t *testing.T) {
	cfg := validConfig()
	cfg.Tables = map[string]TableConfig{
		"ok":         {Table: "sma.meter_sample"},
		"bad-name":   {},
		"bad_column": {IDColumn: "id;", TimeColumn: "created at"},
		"bad_policy": {Policy: "middle", GapStrategy: "guess"},
	}

	fields := validationFields(t, cfg.Validate())
	assert.Contains(t, fields, "tables.bad-name.table")
	assert.Contains(t, fields, "tables.bad_column.id_column")
	assert.Contains(t, fields, "tables.bad_column.time_column")
	assert.Contains(t, fields, "tables.bad_policy.policy")
	assert.Contains(t, fields, "tables.bad_policy.gap_strategy")
	for _, f := range fields {
		assert.False(t, strings.HasPrefix(f, "tables.ok."), "unexpected error on %s", f)
	}
}

func TestValidate_Search(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Policy = "closest"
	cfg.Search.GapStrategy = "skip"
	cfg.Search.Timezone = "Mars/Olympus_Mons"
	cfg.Search.ProbesPerSecond = -1
	cfg.Search.Concurrency = -2

	fields := validationFields(t, cfg.Validate())
	assert.Contains(t, fields, "search.policy")
	assert.Contains(t, fields, "search.gap_strategy")
	assert.Contains(t, fields, "search.timezone")
	assert.Contains(t, fields, "search.probes_per_second")
	assert.Contains(t, fields, "search.concurrency")
}

func TestValidate_RetryAndLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Retry.MaxAttempts = -1
	cfg.Retry.BackoffSeconds = -0.1
	cfg.Logging.Level = "trace"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	fields := validationFields(t, err)
	assert.Contains(t, fields, "retry.max_attempts")
	assert.Contains(t, fields, "retry.backoff_seconds")
	assert.Contains(t, fields, "logging.level")
	assert.Contains(t, fields, "logging.format")
	assert.Contains(t, err.Error(), "validation failed:")
}

func TestValidationErrors_Empty(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "", errs.Error())

	single := ValidationError{Field: "a.b", Message: "broken"}
	assert.Equal(t, "a.b: broken", single.Error())
}
