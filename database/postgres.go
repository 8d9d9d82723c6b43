package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/config"
	"github.com/SaugatGautam100/courseplex-sub001/logging"
)

var Pool *pgxpool.Pool

// InitDB connects, pings and migrates. The pool is also kept in Pool.
func InitDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	logging.Logger.Info("✅ PostgreSQL connection established",
		zap.String("host", cfg.DBHost),
		zap.String("db", cfg.DBName))

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	Pool = pool
	return pool, nil
}

func CloseDB() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
		logging.Logger.Info("🛑 PostgreSQL connection closed")
	}
}

// Migrate creates the documents table. Each row holds one top-level
// collection (users, orders, ...) as a JSONB tree.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if err := createDocumentsTable(ctx, pool); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func createDocumentsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			root       TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMP DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at);`)
	return err
}
