// Package database provides MySQL connection management for idseek.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/dbsmedya/idseek/internal/config"
	"github.com/dbsmedya/idseek/internal/logger"
)

// Manager handles database connections for the source and the optional replica.
type Manager struct {
	Source  *sql.DB
	Replica *sql.DB
	config  *config.Config
	logger  *logger.Logger
	tunnel  *Tunnel
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.Config, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Manager{
		config: cfg,
		logger: log,
	}
}

// Connect opens the SSH tunnel when configured, then the source and, if
// enabled, the replica.
func (m *Manager) Connect(ctx context.Context) error {
	network := "tcp"
	if m.config.SSH.Enabled {
		tunnel, err := OpenTunnel(&m.config.SSH, m.logger)
		if err != nil {
			return fmt.Errorf("failed to open ssh tunnel: %w", err)
		}
		m.tunnel = tunnel
		network = tunnel.Network()
	}

	var err error
	m.Source, err = m.connectWithRetry(ctx, "source", &m.config.Source, network)
	if err != nil {
		m.closeTunnel()
		return fmt.Errorf("failed to connect to source database: %w", err)
	}

	if m.config.Replica.Enabled {
		replicaCfg := &config.DatabaseConfig{
			Host:               m.config.Replica.Host,
			Port:               m.config.Replica.Port,
			User:               m.config.Replica.User,
			Password:           m.config.Replica.Password,
			Database:           m.config.Source.Database,
			TLS:                m.config.Source.TLS,
			MaxConnections:     m.config.Source.MaxConnections,
			MaxIdleConnections: m.config.Source.MaxIdleConnections,
		}
		m.Replica, err = m.connectWithRetry(ctx, "replica", replicaCfg, network)
		if err != nil {
			m.Source.Close()
			m.closeTunnel()
			return fmt.Errorf("failed to connect to replica database: %w", err)
		}
	}

	return nil
}

// SearchDB returns the pool searches should read from: the replica when
// enabled, otherwise the source.
func (m *Manager) SearchDB() *sql.DB {
	if m.Replica != nil {
		return m.Replica
	}
	return m.Source
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context, name string, cfg *config.DatabaseConfig, network string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = m.connect(cfg, network)
		if err == nil {
			// Verify connection
			if pingErr := db.PingContext(ctx); pingErr == nil {
				m.logger.Debugf("Connected to %s database %s:%d", name, cfg.Host, cfg.Port)
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			m.logger.Warnf("Connection to %s database failed: %v, retrying in %s", name, err, backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

// connect creates a database connection.
func (m *Manager) connect(cfg *config.DatabaseConfig, network string) (*sql.DB, error) {
	db, err := sql.Open("mysql", BuildDSN(cfg, network))
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// BuildDSN constructs a MySQL DSN from configuration. An empty network means tcp.
func BuildDSN(cfg *config.DatabaseConfig, network string) string {
	if network == "" {
		network = "tcp"
	}

	// Format: user:password@network(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@%s(%s:%d)/",
		cfg.User,
		cfg.Password,
		network,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	// Timestamps are compared as epoch seconds computed by the server, so the
	// connection location only affects DATETIME values scanned directly.
	params := "?parseTime=true&loc=UTC"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes all database connections and the tunnel gracefully.
func (m *Manager) Close() error {
	var errs []error

	if m.Replica != nil {
		if err := m.Replica.Close(); err != nil {
			errs = append(errs, fmt.Errorf("replica close: %w", err))
		}
	}

	if m.Source != nil {
		if err := m.Source.Close(); err != nil {
			errs = append(errs, fmt.Errorf("source close: %w", err))
		}
	}

	if m.tunnel != nil {
		if err := m.tunnel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ssh tunnel close: %w", err))
		}
		m.tunnel = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing connections: %v", errs)
	}
	return nil
}

func (m *Manager) closeTunnel() {
	if m.tunnel == nil {
		return
	}
	if err := m.tunnel.Close(); err != nil {
		m.logger.Warnf("Failed to close ssh tunnel: %v", err)
	}
	m.tunnel = nil
}

// Ping verifies all connections are alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.Source != nil {
		if err := m.Source.PingContext(ctx); err != nil {
			return fmt.Errorf("source ping failed: %w", err)
		}
	}

	if m.Replica != nil {
		if err := m.Replica.PingContext(ctx); err != nil {
			return fmt.Errorf("replica ping failed: %w", err)
		}
	}

	return nil
}
