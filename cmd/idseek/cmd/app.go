package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/idseek/internal/config"
	"github.com/dbsmedya/idseek/internal/database"
	"github.com/dbsmedya/idseek/internal/finder"
	"github.com/dbsmedya/idseek/internal/logger"
	"github.com/dbsmedya/idseek/internal/store"
	"github.com/dbsmedya/idseek/internal/store/mysqlstore"
	"github.com/dbsmedya/idseek/internal/timecodec"
)

// app bundles what a search command needs once configuration is loaded.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.Manager
	store store.RecordStore
}

// loadConfig reads the config file, applies flag overrides and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	o := GetCLIOverrides()
	cfg.ApplyOverrides(o.LogLevel, o.LogFormat, o.Policy, o.GapStrategy, o.Timezone)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp connects to MySQL with a loaded configuration and checks replica lag.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dbManager := database.NewManager(cfg, log)
	if err := dbManager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to databases: %w", err)
	}
	if err := dbManager.CheckReplicaLag(ctx); err != nil {
		dbManager.Close()
		return nil, err
	}

	rs := mysqlstore.New(dbManager.SearchDB(), mysqlstore.Options{
		ConsistentSnapshot: cfg.Search.ConsistentSnapshot,
		ProbesPerSecond:    cfg.Search.ProbesPerSecond,
	}, log)

	return &app{cfg: cfg, log: log, db: dbManager, store: rs}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warnf("Failed to close database connections: %v", err)
	}
	_ = a.log.Sync()
}

// searchPlan is one table resolved into search parameters.
type searchPlan struct {
	table    store.Table
	policy   finder.Policy
	searcher finder.Searcher
}

// plan resolves a configured (or raw) table name. The --policy flag wins over
// a per-table policy from the config file.
func plan(cfg *config.Config, rs store.RecordStore, log *logger.Logger, name string) (*searchPlan, error) {
	rt := cfg.ResolveTable(name)
	if o := GetCLIOverrides(); o.Policy != "" {
		rt.Policy = o.Policy
	}
	if o := GetCLIOverrides(); o.GapStrategy != "" {
		rt.GapStrategy = o.GapStrategy
	}

	p, err := finder.ParsePolicy(rt.Policy)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	gap, err := finder.ParseGapStrategy(rt.GapStrategy)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}

	f := finder.NewFinder(rs, gap, log)
	backoff := time.Duration(cfg.Retry.BackoffSeconds * float64(time.Second))

	return &searchPlan{
		table:    store.Table{Name: rt.Table, IDColumn: rt.IDColumn, TimeColumn: rt.TimeColumn},
		policy:   p,
		searcher: finder.NewRetrier(f, cfg.Retry.MaxAttempts, backoff, log),
	}, nil
}

// parseTarget parses a command-line timestamp, interpreting one without an
// offset in the configured zone.
func parseTarget(cfg *config.Config, s string) (time.Time, error) {
	loc, err := timecodec.LoadLocation(cfg.Search.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	return timecodec.Parse(s, loc)
}
