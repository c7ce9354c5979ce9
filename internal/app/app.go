// Package app wires configuration into the refresh pipeline shared by the
// server and the ingest tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"grocery_feed/internal/config"
	"grocery_feed/internal/publisher"
	"grocery_feed/internal/service"
	"grocery_feed/internal/source/spreadsheet"
	"grocery_feed/internal/source/xmlfeed"
	"grocery_feed/internal/storage/postgres"
)

// Sources builds the adapters in configured merge order.
func Sources(cfg *config.Config, logger *slog.Logger) ([]service.Source, error) {
	sources := make([]service.Source, 0, len(cfg.Sources.Order))
	for _, id := range cfg.Sources.Order {
		switch id {
		case config.SourceXMLFeed:
			sources = append(sources, xmlfeed.New(xmlfeed.Config{
				URL:       cfg.Feed.URL,
				Timeout:   cfg.Feed.Timeout,
				UserAgent: cfg.Feed.UserAgent,
			}, logger))
		case config.SourceSpreadsheet:
			sources = append(sources, spreadsheet.New(spreadsheet.Config{
				Path:      cfg.Spreadsheet.Path,
				Sheet:     cfg.Spreadsheet.Sheet,
				HeaderRow: cfg.Spreadsheet.HeaderRow,
			}, logger))
		default:
			return nil, fmt.Errorf("%w: %q", config.ErrUnknownSource, id)
		}
	}
	return sources, nil
}

// Deps holds the optional side-effect dependencies of a Refresher. Fields
// stay nil when the matching feature is disabled.
type Deps struct {
	DB        *sqlx.DB
	Runs      *postgres.RunStore
	States    *postgres.SourceStateStore
	TxManager *postgres.TransactionManager
	Publisher *publisher.RabbitMQ
}

// Open connects the enabled backends. On error everything opened so far is closed.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Deps, error) {
	deps := &Deps{}

	if cfg.Database.Enabled {
		db, err := postgres.Open(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		logger.Info("connected to database", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

		deps.DB = db
		deps.Runs = postgres.NewRunStore(db)
		deps.States = postgres.NewSourceStateStore(db)
		deps.TxManager = postgres.NewTransactionManager(db)
	}

	if cfg.RabbitMQ.Enabled {
		pub, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.Publisher = pub
	}

	return deps, nil
}

// Refresher builds a Refresher over sources. Disabled dependencies are
// passed as untyped nils so the Refresher skips them.
func (d *Deps) Refresher(sources []service.Source, metrics service.Metrics, logger *slog.Logger) *service.Refresher {
	var (
		runs   service.RunStore
		states service.SourceStateStore
		tx     service.TransactionManager
		pub    service.Publisher
	)
	if d.DB != nil {
		runs, states, tx = d.Runs, d.States, d.TxManager
	}
	if d.Publisher != nil {
		pub = d.Publisher
	}
	return service.NewRefresher(sources, runs, states, tx, pub, metrics, logger)
}

func (d *Deps) Close() error {
	var errs []error
	if d.Publisher != nil {
		errs = append(errs, d.Publisher.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	return errors.Join(errs...)
}
