package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolcms/server/internal/config"
	"github.com/schoolcms/server/internal/domain/content"
	"github.com/schoolcms/server/internal/domain/users"
)

// Repository hands out typed repositories sharing one connection pool.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

// Content returns the CRUD repository for one managed collection.
func (r *Repository) Content(desc content.Descriptor) content.Repository {
	return &ContentRepository{pool: r.pool, desc: desc}
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{pool: r.pool}
}

func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// NewPool opens a pgx connection pool sized from config.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdle)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return pool, nil
}
