// Package database implements the game store on PostgreSQL.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables the store needs. It is idempotent and runs at
// boot; there is no migration machinery beyond it.
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	room_id    text PRIMARY KEY,
	id         uuid NOT NULL,
	config     jsonb NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game_states (
	room_id    text PRIMARY KEY REFERENCES games(room_id) ON DELETE CASCADE,
	state      jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game_cards (
	room_id text NOT NULL REFERENCES games(room_id) ON DELETE CASCADE,
	token   text NOT NULL,
	card_id text NOT NULL,
	PRIMARY KEY (room_id, token)
);
`

// Connect opens a pgx pool against dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
