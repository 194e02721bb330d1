package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/minus34/gnaf-loader-go/settings"
)

// Connect opens the shared connection pool for a load run. Every parallel
// worker acquires its own connection from this pool and commits
// independently (autocommit), so the pool must be at least as large as the
// worker bound.
func Connect(ctx context.Context, config settings.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse connection string")
	}

	poolConfig.MaxConns = config.MaxConnections
	if poolConfig.MaxConns < int32(config.MaxWorkers) {
		poolConfig.MaxConns = int32(config.MaxWorkers)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to database")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "error connecting to database")
	}

	log.Debugf("opened database pool (%d max connections)", poolConfig.MaxConns)
	return pool, nil
}
