package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthChecker is the only thing the HTTP layer needs from the database:
// the service keeps no records, Postgres is wired in for readiness only.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type PoolOptions struct {
	URL         string
	MaxConns    int32
	MinConns    int32
	PingTimeout time.Duration
}

// Connect opens a pool sized from opts and refuses to return it until the
// first ping succeeds.
func Connect(ctx context.Context, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func poolConfig(opts PoolOptions) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		if opts.MinConns > cfg.MaxConns {
			return nil, fmt.Errorf("min conns %d exceeds max conns %d", opts.MinConns, cfg.MaxConns)
		}
		cfg.MinConns = opts.MinConns
	}
	return cfg, nil
}
