// Package postgres provides lib/pq backed implementations of the
// repository interfaces defined by the domain packages.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the postgres driver.
	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Schema is the DDL for all tables. Applied idempotently at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	date_created  TIMESTAMPTZ NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name    TEXT NOT NULL DEFAULT '',
	last_name     TEXT NOT NULL DEFAULT '',
	last_login    TIMESTAMPTZ,
	last_login_ip TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS videos (
	id           TEXT PRIMARY KEY,
	date_created TIMESTAMPTZ NOT NULL,
	user_id      TEXT NOT NULL REFERENCES users (id),
	title        TEXT NOT NULL,
	status       TEXT NOT NULL,
	file_id      TEXT
);

CREATE TABLE IF NOT EXISTS files (
	id           TEXT PRIMARY KEY,
	date_created TIMESTAMPTZ NOT NULL,
	provider     TEXT NOT NULL,
	uri          TEXT NOT NULL,
	byte_size    BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	date_created TIMESTAMPTZ NOT NULL,
	type         TEXT NOT NULL,
	resource_id  TEXT NOT NULL,
	provider     TEXT NOT NULL,
	external_id  TEXT NOT NULL,
	cost         BIGINT NOT NULL,
	settlement   TEXT NOT NULL,
	completed    BOOLEAN NOT NULL DEFAULT FALSE,
	successful   BOOLEAN NOT NULL DEFAULT FALSE,
	result       JSONB
);

CREATE INDEX IF NOT EXISTS jobs_external_id_idx ON jobs (external_id);

CREATE TABLE IF NOT EXISTS balances (
	id            BIGSERIAL PRIMARY KEY,
	date_created  TIMESTAMPTZ NOT NULL,
	user_id       TEXT NOT NULL,
	change_type   TEXT NOT NULL,
	change_reason TEXT NOT NULL,
	delta         BIGINT NOT NULL,
	foreign_id    TEXT NOT NULL DEFAULT '',
	expires_at    TIMESTAMPTZ,
	descriptor    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS balances_user_id_idx ON balances (user_id);

CREATE TABLE IF NOT EXISTS payments (
	id           TEXT PRIMARY KEY,
	date_created TIMESTAMPTZ NOT NULL,
	provider     TEXT NOT NULL,
	external_id  TEXT NOT NULL UNIQUE,
	currency     TEXT NOT NULL,
	amount       BIGINT NOT NULL
);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
