// internal/repository/postgres/db.go
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the shared handle behind the intake and archive repositories. Single
// statements go through Pool; the multi-statement archive write goes through
// BeginTx so a transcript is never stored without its header.
type DB struct {
	pool *pgxpool.Pool
}

func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// BeginTx opens a transaction for multi-statement writes.
func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.pool.Begin(ctx)
}

// Pool exposes the underlying pool for single-statement operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
