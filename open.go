package grouper

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/grouper/source"
)

// RosterStore is a roster provider that can also be written to. The sqlite
// and nats sources are stores; the roster import command uses them.
type RosterStore interface {
	RosterProvider

	// Import writes people in order, optionally replacing the stored roster.
	Import(ctx context.Context, people []Person, replace bool) error
}

// CloseFunc releases resources held by an opened roster source.
type CloseFunc func() error

func noopClose() error { return nil }

// OpenRosterProvider builds the roster provider selected by cfg.Roster.Source.
//
// External connections (database handle, NATS connection) are opened here
// and released by the returned CloseFunc. Failed loads are retried per
// cfg.Roster.Retry (source.Retry), and when cfg.Roster.CacheTTL is positive
// the result is wrapped in a source.Cached.
//
// Parameters:
//   - ctx: Context for opening connections
//   - cfg: Configuration (defaults are applied to a copy)
//   - logger: Logger for connection events (may be nil)
//
// Returns:
//   - RosterProvider: The configured provider
//   - CloseFunc: Releases connections; always non-nil
//   - error: ErrUnknownSource or a connection error
//
// Example:
//
//	provider, closeFn, err := grouper.OpenRosterProvider(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer closeFn()
func OpenRosterProvider(ctx context.Context, cfg Config, logger Logger) (RosterProvider, CloseFunc, error) {
	SetDefaults(&cfg)

	var (
		provider RosterProvider
		closeFn  CloseFunc = noopClose
	)

	switch cfg.Roster.Source {
	case SourceStatic:
		provider = source.NewStatic(source.DefaultRoster())
	case SourceFile:
		if cfg.Roster.File == "" {
			return nil, noopClose, fmt.Errorf("%w: roster.file is required for the file source", ErrInvalidConfig)
		}
		provider = source.NewFile(cfg.Roster.File)
	case SourceSQLite, SourceNATS:
		store, c, err := OpenRosterStore(ctx, cfg, logger)
		if err != nil {
			return nil, noopClose, err
		}
		provider, closeFn = store, c
	case SourceNotion:
		notion, err := source.NewNotion(source.NotionConfig{
			BaseURL:    cfg.Roster.Notion.BaseURL,
			DatabaseID: cfg.Roster.Notion.DatabaseID,
			SecretKey:  cfg.Roster.Notion.SecretKey,
			Version:    cfg.Roster.Notion.Version,
			HTTPClient: &http.Client{Timeout: cfg.Roster.Notion.Timeout},
		})
		if err != nil {
			return nil, noopClose, err
		}
		provider = notion
	default:
		return nil, noopClose, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Roster.Source)
	}

	if cfg.Roster.Retry.Attempts > 1 {
		provider = source.NewRetry(provider, source.RetryConfig{
			Attempts:  cfg.Roster.Retry.Attempts,
			BaseDelay: cfg.Roster.Retry.BaseDelay,
			MaxDelay:  cfg.Roster.Retry.MaxDelay,
		})
	}
	if cfg.Roster.CacheTTL > 0 {
		provider = source.NewCached(provider, cfg.Roster.CacheTTL)
	}

	return provider, closeFn, nil
}

// OpenRosterStore opens a writable roster source (sqlite or nats).
//
// Parameters:
//   - ctx: Context for opening connections and creating the schema or bucket
//   - cfg: Configuration (defaults are applied to a copy)
//   - logger: Logger for connection events (may be nil)
//
// Returns:
//   - RosterStore: The store
//   - CloseFunc: Releases connections; always non-nil
//   - error: ErrUnknownSource for read-only sources, or a connection error
func OpenRosterStore(ctx context.Context, cfg Config, logger Logger) (RosterStore, CloseFunc, error) {
	SetDefaults(&cfg)
	if logger == nil {
		logger = nopLogger()
	}

	switch cfg.Roster.Source {
	case SourceSQLite:
		db, err := source.OpenSQLite(ctx, cfg.Roster.SQLite.Path)
		if err != nil {
			return nil, noopClose, err
		}

		store, err := source.NewSQL(db, source.WithTable(cfg.Roster.SQLite.Table))
		if err == nil {
			err = store.EnsureSchema(ctx)
		}
		if err != nil {
			return nil, noopClose, errors.Join(err, db.Close())
		}

		logger.Info("opened sqlite roster", "path", cfg.Roster.SQLite.Path, "table", cfg.Roster.SQLite.Table)

		return store, db.Close, nil

	case SourceNATS:
		nc, err := nats.Connect(cfg.Roster.NATS.URL,
			nats.Name("grouper"),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					logger.Warn("nats disconnected", "error", err)
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				logger.Info("nats reconnected", "url", c.ConnectedUrl())
			}),
		)
		if err != nil {
			return nil, noopClose, fmt.Errorf("failed to connect to NATS %s: %w", cfg.Roster.NATS.URL, err)
		}

		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, noopClose, fmt.Errorf("failed to create JetStream context: %w", err)
		}

		store, err := source.OpenKV(ctx, js, cfg.Roster.NATS.Bucket)
		if err != nil {
			nc.Close()
			return nil, noopClose, err
		}

		logger.Info("opened nats roster", "url", cfg.Roster.NATS.URL, "bucket", cfg.Roster.NATS.Bucket)

		return store, func() error {
			return nc.Drain()
		}, nil

	default:
		return nil, noopClose, fmt.Errorf("%w: %q is not a writable roster source", ErrUnknownSource, cfg.Roster.Source)
	}
}
