package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splax/quill/pkg/config"
)

// Connect opens a pgx pool sized from the API configuration.
func Connect(ctx context.Context, cfg config.APIConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.DBPoolSize > 0 {
		poolCfg.MaxConns = cfg.MaxConns()
		poolCfg.MinConns = min(int32(min(cfg.DBPoolSize, config.MaxPoolConns)), poolCfg.MaxConns)
	}
	if cfg.DBPoolTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.DBPoolTimeout
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return pool, nil
}
