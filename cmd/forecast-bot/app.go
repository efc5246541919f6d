package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forecast-bot/internal/catalog"
	"forecast-bot/internal/common/config"
	"forecast-bot/internal/common/database"
	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/facts"
	"forecast-bot/internal/report"
)

// app holds the read path shared by every command.
type app struct {
	cfg       *config.Config
	zapLog    *zap.Logger
	log       logger.Logger
	resolver  *catalog.Resolver
	assembler *report.Assembler
	closers   []func() error
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// newApp connects the configured backends. Connection attempts are retried
// with backoff; the catalog and facts reads themselves are not.
func newApp(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, retries int) (*app, error) {
	a := &app{cfg: cfg, zapLog: zapLog, log: logger.NewZapAdapter(zapLog)}

	var store catalog.Store = catalog.NewFSStore(afero.NewOsFs(), cfg.Catalog.Root)

	if cfg.Database.Redis.Enabled {
		var redis *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, retries, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, redis.Close)
		store = catalog.NewCachedStore(store, redis.Client, cfg.Database.Redis.TTL(), a.log)
		zapLog.Info("Redis table cache enabled", zap.Duration("ttl", cfg.Database.Redis.TTL()))
	}

	var source facts.Source
	switch cfg.Facts.Backend {
	case config.FactsBackendPostgres:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, retries, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		source = facts.NewPostgresSource(pg.DB, a.log)
		zapLog.Info("PostgreSQL facts backend connected")
	default:
		source = facts.NewWorkbookSource(store, cfg.Catalog.FactsFile)
	}

	a.resolver = catalog.NewResolver(store, a.log)
	a.assembler = report.NewAssembler(
		a.resolver,
		facts.NewMatcher(source, a.log),
		facts.NewLocale(cfg.Locale.DecimalSeparator),
		a.log,
	)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.zapLog.Warn("Close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

// locate resolves names given on the command line into a catalog location.
func (a *app) locate(ctx context.Context, authorName, year, document, scenario, group string) (catalog.Location, error) {
	author, ok := catalog.ParseAuthor(authorName)
	if !ok {
		return catalog.Location{}, fmt.Errorf("unknown author %q", authorName)
	}
	doc, ok, err := a.resolver.FindDocument(ctx, author, year, document)
	if err != nil {
		return catalog.Location{}, err
	}
	if !ok {
		return catalog.Location{}, fmt.Errorf("document %q not found for %s %s", document, author, year)
	}

	loc := catalog.Location{Author: author, Year: year, Document: doc, Scenario: catalog.NoScenario}
	if doc.Kind.HasScenarios() {
		if scenario == "" {
			return catalog.Location{}, fmt.Errorf("--scenario is required for %s", doc.Name)
		}
		loc.Scenario = scenario
	}

	groups, err := a.resolver.ListVariableGroups(ctx, loc)
	if err != nil {
		return catalog.Location{}, err
	}
	if doc.Kind.SingleTable() {
		loc.Group = groups[0]
		return loc, nil
	}
	for _, g := range groups {
		if g.Name == group {
			loc.Group = g
			return loc, nil
		}
	}
	return catalog.Location{}, fmt.Errorf("variable group %q not found in %s", group, loc.Title())
}
