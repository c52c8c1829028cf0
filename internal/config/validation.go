package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dbsmedya/idseek/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

var (
	validPolicies      = map[string]bool{"leftmost": true, "rightmost": true, "left": true, "right": true, "": true}
	validGapStrategies = map[string]bool{"strict": true, "nearest_below": true, "nearest-below": true, "": true}
)

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateDatabase("source", &c.Source)...)

	if c.Replica.Enabled {
		errors = append(errors, c.validateReplica()...)
	}
	if c.SSH.Enabled {
		errors = append(errors, c.validateSSH()...)
	}

	for name, tc := range c.Tables {
		errors = append(errors, c.validateTable(name, &tc)...)
	}

	errors = append(errors, c.validateSearch()...)
	errors = append(errors, c.validateRetry()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	if db.Host == "" {
		errors = append(errors, ValidationError{Field: prefix + ".host", Message: "host is required"})
	}
	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{Field: prefix + ".port", Message: "port must be between 1 and 65535"})
	}
	if db.User == "" {
		errors = append(errors, ValidationError{Field: prefix + ".user", Message: "user is required"})
	}
	if db.Database == "" {
		errors = append(errors, ValidationError{Field: prefix + ".database", Message: "database name is required"})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}
	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{Field: prefix + ".max_connections", Message: "max_connections cannot be negative"})
	}
	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{Field: prefix + ".max_idle_connections", Message: "max_idle_connections cannot be negative"})
	}

	return errors
}

func (c *Config) validateReplica() ValidationErrors {
	var errors ValidationErrors

	if c.Replica.Host == "" {
		errors = append(errors, ValidationError{Field: "replica.host", Message: "host is required when replica is enabled"})
	}
	if c.Replica.Port <= 0 || c.Replica.Port > 65535 {
		errors = append(errors, ValidationError{Field: "replica.port", Message: "port must be between 1 and 65535"})
	}
	if c.Replica.User == "" {
		errors = append(errors, ValidationError{Field: "replica.user", Message: "user is required when replica is enabled"})
	}
	if c.Replica.LagThreshold < 0 {
		errors = append(errors, ValidationError{Field: "replica.lag_threshold", Message: "lag_threshold cannot be negative"})
	}

	return errors
}

func (c *Config) validateSSH() ValidationErrors {
	var errors ValidationErrors

	if c.SSH.Host == "" {
		errors = append(errors, ValidationError{Field: "ssh.host", Message: "host is required when ssh is enabled"})
	}
	if c.SSH.Port <= 0 || c.SSH.Port > 65535 {
		errors = append(errors, ValidationError{Field: "ssh.port", Message: "port must be between 1 and 65535"})
	}
	if c.SSH.User == "" {
		errors = append(errors, ValidationError{Field: "ssh.user", Message: "user is required when ssh is enabled"})
	}
	if c.SSH.Password == "" && c.SSH.KeyFile == "" {
		errors = append(errors, ValidationError{Field: "ssh", Message: "either password or key_file is required"})
	}
	if c.SSH.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{Field: "ssh.timeout_seconds", Message: "timeout_seconds cannot be negative"})
	}

	return errors
}

func (c *Config) validateTable(name string, tc *TableConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("tables.%s", name)

	table := tc.Table
	if table == "" {
		table = name
	}
	if !sqlutil.IsValidTableName(table) {
		errors = append(errors, ValidationError{Field: prefix + ".table", Message: fmt.Sprintf("invalid table name %q", table)})
	}
	if tc.IDColumn != "" && !sqlutil.IsValidIdentifier(tc.IDColumn) {
		errors = append(errors, ValidationError{Field: prefix + ".id_column", Message: fmt.Sprintf("invalid column name %q", tc.IDColumn)})
	}
	if tc.TimeColumn != "" && !sqlutil.IsValidIdentifier(tc.TimeColumn) {
		errors = append(errors, ValidationError{Field: prefix + ".time_column", Message: fmt.Sprintf("invalid column name %q", tc.TimeColumn)})
	}
	if !validPolicies[tc.Policy] {
		errors = append(errors, ValidationError{Field: prefix + ".policy", Message: "policy must be 'leftmost' or 'rightmost'"})
	}
	if !validGapStrategies[tc.GapStrategy] {
		errors = append(errors, ValidationError{Field: prefix + ".gap_strategy", Message: "gap_strategy must be 'strict' or 'nearest_below'"})
	}

	return errors
}

func (c *Config) validateSearch() ValidationErrors {
	var errors ValidationErrors

	if !validPolicies[c.Search.Policy] {
		errors = append(errors, ValidationError{Field: "search.policy", Message: "policy must be 'leftmost' or 'rightmost'"})
	}
	if !validGapStrategies[c.Search.GapStrategy] {
		errors = append(errors, ValidationError{Field: "search.gap_strategy", Message: "gap_strategy must be 'strict' or 'nearest_below'"})
	}
	if c.Search.Timezone != "" && !strings.EqualFold(c.Search.Timezone, "UTC") {
		if _, err := time.LoadLocation(c.Search.Timezone); err != nil {
			errors = append(errors, ValidationError{Field: "search.timezone", Message: fmt.Sprintf("unknown timezone %q", c.Search.Timezone)})
		}
	}
	if c.Search.ProbesPerSecond < 0 {
		errors = append(errors, ValidationError{Field: "search.probes_per_second", Message: "probes_per_second cannot be negative"})
	}
	if c.Search.Concurrency < 0 {
		errors = append(errors, ValidationError{Field: "search.concurrency", Message: "concurrency cannot be negative"})
	}

	return errors
}

func (c *Config) validateRetry() ValidationErrors {
	var errors ValidationErrors

	if c.Retry.MaxAttempts < 0 {
		errors = append(errors, ValidationError{Field: "retry.max_attempts", Message: "max_attempts cannot be negative"})
	}
	if c.Retry.BackoffSeconds < 0 {
		errors = append(errors, ValidationError{Field: "retry.backoff_seconds", Message: "backoff_seconds cannot be negative"})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
