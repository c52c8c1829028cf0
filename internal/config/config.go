// Package config provides configuration structures and loading for idseek.
package config

// Config represents the complete application configuration.
type Config struct {
	Source  DatabaseConfig         `yaml:"source" mapstructure:"source"`
	Replica ReplicaConfig          `yaml:"replica" mapstructure:"replica"`
	SSH     SSHConfig              `yaml:"ssh" mapstructure:"ssh"`
	Tables  map[string]TableConfig `yaml:"tables" mapstructure:"tables"`
	Search  SearchConfig           `yaml:"search" mapstructure:"search"`
	Retry   RetryConfig            `yaml:"retry" mapstructure:"retry"`
	Logging LoggingConfig          `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// ReplicaConfig points searches at a read replica instead of the source.
type ReplicaConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	User         string `yaml:"user" mapstructure:"user"`
	Password     string `yaml:"password" mapstructure:"password"`
	LagThreshold int    `yaml:"lag_threshold" mapstructure:"lag_threshold"` // seconds
	FailOnLag    bool   `yaml:"fail_on_lag" mapstructure:"fail_on_lag"`
}

// SSHConfig describes an SSH jump host the MySQL connections are tunnelled through.
type SSHConfig struct {
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	Host           string `yaml:"host" mapstructure:"host"`
	Port           int    `yaml:"port" mapstructure:"port"`
	User           string `yaml:"user" mapstructure:"user"`
	Password       string `yaml:"password" mapstructure:"password"`
	KeyFile        string `yaml:"key_file" mapstructure:"key_file"`
	KnownHostsFile string `yaml:"known_hosts_file" mapstructure:"known_hosts_file"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// TableConfig maps a logical name to a table and its key/time columns.
type TableConfig struct {
	Table       string `yaml:"table" mapstructure:"table"`
	IDColumn    string `yaml:"id_column" mapstructure:"id_column"`
	TimeColumn  string `yaml:"time_column" mapstructure:"time_column"`
	Policy      string `yaml:"policy" mapstructure:"policy"`
	GapStrategy string `yaml:"gap_strategy" mapstructure:"gap_strategy"`
}

// SearchConfig represents search behaviour settings.
type SearchConfig struct {
	Policy             string  `yaml:"policy" mapstructure:"policy"`             // leftmost or rightmost
	GapStrategy        string  `yaml:"gap_strategy" mapstructure:"gap_strategy"` // strict or nearest_below
	Timezone           string  `yaml:"timezone" mapstructure:"timezone"`         // zone for timestamps without offset
	ConsistentSnapshot bool    `yaml:"consistent_snapshot" mapstructure:"consistent_snapshot"`
	ProbesPerSecond    float64 `yaml:"probes_per_second" mapstructure:"probes_per_second"` // 0 = unlimited
	Concurrency        int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// RetryConfig controls retries of a whole search after a store failure.
type RetryConfig struct {
	MaxAttempts    int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffSeconds float64 `yaml:"backoff_seconds" mapstructure:"backoff_seconds"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Replica: ReplicaConfig{
			Enabled:      false,
			Port:         3306,
			LagThreshold: 10,
		},
		SSH: SSHConfig{
			Enabled:        false,
			Port:           22,
			TimeoutSeconds: 10,
		},
		Search: SearchConfig{
			Policy:             "leftmost",
			GapStrategy:        "strict",
			Timezone:           "UTC",
			ConsistentSnapshot: false,
			ProbesPerSecond:    0,
			Concurrency:        4,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			BackoffSeconds: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ResolvedTable is a table entry with defaults and global search settings applied.
type ResolvedTable struct {
	Name        string
	Table       string
	IDColumn    string
	TimeColumn  string
	Policy      string
	GapStrategy string
}

// ResolveTable looks name up in the tables section. Unknown names are treated
// as raw table names with default columns.
func (c *Config) ResolveTable(name string) ResolvedTable {
	rt := ResolvedTable{
		Name:        name,
		Table:       name,
		IDColumn:    "id",
		TimeColumn:  "create_time",
		Policy:      c.Search.Policy,
		GapStrategy: c.Search.GapStrategy,
	}

	tc, ok := c.Tables[name]
	if !ok {
		return rt
	}
	if tc.Table != "" {
		rt.Table = tc.Table
	}
	if tc.IDColumn != "" {
		rt.IDColumn = tc.IDColumn
	}
	if tc.TimeColumn != "" {
		rt.TimeColumn = tc.TimeColumn
	}
	if tc.Policy != "" {
		rt.Policy = tc.Policy
	}
	if tc.GapStrategy != "" {
		rt.GapStrategy = tc.GapStrategy
	}
	return rt
}
