package docstore

import (
	"context"
	"eventplanner/internal/appers"
	"eventplanner/pkg/config"
	"fmt"
)

// Open connects the configured driver and pings it. Any failure is a StartupError:
// the service must not start without a working store.
func Open(ctx context.Context, conf config.Store) (Store, error) {
	var (
		store Store
		err   error
	)

	switch conf.Driver {
	case config.DriverFirestore:
		store, err = NewFirestore(ctx, conf.Credentials, conf.ProjectID)
	case config.DriverMongo:
		store, err = NewMongo(ctx, conf.Mongo.URI, conf.Mongo.Database)
	case config.DriverPostgres:
		store, err = NewPostgres(ctx, PostgresConfig{
			ConnString:     conf.Postgres.ConnString,
			MaxConnections: conf.Postgres.MaxConnections,
			MigrationsDir:  conf.Postgres.MigrationsDir,
		})
	case config.DriverMemory:
		store = NewMemory()
	default:
		err = fmt.Errorf("unknown store driver %q", conf.Driver)
	}
	if err != nil {
		return nil, &appers.StartupError{Op: "open store", Err: err}
	}

	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, &appers.StartupError{Op: "ping store", Err: err}
	}
	return store, nil
}
