// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cinematicsodium/awards/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}

// OpenArchive opens the archive database for the configured driver.
func OpenArchive(driver string, cfg config.DatabaseConfig) (*sql.DB, error) {
	switch driver {
	case "postgres":
		pg, err := NewPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return pg.DB, nil
	case "sqlite":
		lite, err := NewSQLite(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return lite.DB, nil
	}
	return nil, fmt.Errorf("unsupported archive driver %q", driver)
}
