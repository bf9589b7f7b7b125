package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"magnet-wizard/internal/common/config"
)

// LeadsSchema creates the table written by the create-lead-record worker.
const LeadsSchema = `
CREATE TABLE IF NOT EXISTS magnet_leads (
    id            UUID PRIMARY KEY,
    session_id    TEXT NOT NULL,
    email         TEXT NOT NULL,
    phone         TEXT,
    trigger_text  TEXT NOT NULL,
    job_text      TEXT NOT NULL,
    pain_text     TEXT NOT NULL,
    desire_text   TEXT NOT NULL,
    template_id   TEXT NOT NULL,
    template_code TEXT NOT NULL,
    consent_given BOOLEAN NOT NULL,
    status        TEXT NOT NULL,
    submitted_at  TIMESTAMPTZ NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (email, template_id)
)`

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a PostgreSQL pool.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// EnsureSchema creates the lead table when it does not exist yet.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, LeadsSchema); err != nil {
		return fmt.Errorf("failed to create lead schema: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
