package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/fieldops/task_distributor/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pingRetries   = 5
	pingRetryWait = 5 * time.Second
)

func NewConnection(ctx context.Context, log *slog.Logger, cfg config.PostgreSQL) (*pgxpool.Pool, error) {
	connectionURL := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     cfg.DBName,
		RawQuery: "sslmode=disable",
	}

	pool, err := pgxpool.New(ctx, connectionURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pingWithRetry(ctx, log, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return pool, nil
}

func pingWithRetry(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	for attempt := 0; ; attempt++ {
		err := pool.Ping(ctx)
		if err == nil || attempt >= pingRetries {
			return err
		}

		log.Debug("database connection attempt failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", pingRetries),
			slog.String("err", err.Error()))

		select {
		case <-time.After(pingRetryWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
