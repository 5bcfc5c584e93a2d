package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ryym/uni/engine"
	"github.com/ryym/uni/internal/store"
)

// GameStore implements store.Store on a pgx pool.
type GameStore struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*GameStore)(nil)

func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

// CreateGame writes the game in a single transaction so a half-created
// game can never be observed.
func (s *GameStore) CreateGame(ctx context.Context, roomID string, cfg *engine.Config, st *engine.State, reveal map[string]string) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	stJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO games (room_id, id, config) VALUES ($1, $2, $3)
		 ON CONFLICT (room_id) DO NOTHING`,
		roomID, uuid.New(), cfgJSON)
	if err != nil {
		return fmt.Errorf("inserting game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrGameExists
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO game_states (room_id, state) VALUES ($1, $2)`,
		roomID, stJSON); err != nil {
		return fmt.Errorf("inserting state: %w", err)
	}

	rows := make([][]any, 0, len(reveal))
	for token, cardID := range reveal {
		rows = append(rows, []any{roomID, token, cardID})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"game_cards"},
		[]string{"room_id", "token", "card_id"},
		pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("inserting reveal table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing game: %w", err)
	}
	return nil
}

func (s *GameStore) LoadGame(ctx context.Context, roomID string) (*engine.Config, *engine.State, error) {
	var cfgJSON, stJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT g.config, gs.state
		 FROM games g JOIN game_states gs USING (room_id)
		 WHERE g.room_id = $1`,
		roomID).Scan(&cfgJSON, &stJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, store.ErrNoGame
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading game: %w", err)
	}

	var cfg engine.Config
	if err := json.Unmarshal(cfgJSON, &cfg); err != nil {
		return nil, nil, fmt.Errorf("decoding config: %w", err)
	}
	var st engine.State
	if err := json.Unmarshal(stJSON, &st); err != nil {
		return nil, nil, fmt.Errorf("decoding state: %w", err)
	}
	return &cfg, &st, nil
}

// WriteState replaces the room's state after checking, under a row lock,
// that the writer is the current player of the state being replaced.
func (s *GameStore) WriteState(ctx context.Context, roomID, playerID string, st *engine.State) error {
	stJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentJSON []byte
	err = tx.QueryRow(ctx,
		`SELECT state FROM game_states WHERE room_id = $1 FOR UPDATE`,
		roomID).Scan(&currentJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNoGame
	}
	if err != nil {
		return fmt.Errorf("locking state: %w", err)
	}
	var current engine.State
	if err := json.Unmarshal(currentJSON, &current); err != nil {
		return fmt.Errorf("decoding stored state: %w", err)
	}
	if current.CurrentPlayer != playerID {
		return store.ErrNotCurrentPlayer
	}

	if _, err := tx.Exec(ctx,
		`UPDATE game_states SET state = $2, updated_at = now() WHERE room_id = $1`,
		roomID, stJSON); err != nil {
		return fmt.Errorf("updating state: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	return nil
}

func (s *GameStore) Reveal(ctx context.Context, roomID, playerID string, tokens []string) (map[string]string, error) {
	if len(tokens) > store.MaxRevealBatch {
		return nil, store.ErrRevealBatchTooLarge
	}
	_, st, err := s.LoadGame(ctx, roomID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT token, card_id FROM game_cards
		 WHERE room_id = $1 AND token = ANY($2)`,
		roomID, tokens)
	if err != nil {
		return nil, fmt.Errorf("loading reveal table: %w", err)
	}
	defer rows.Close()

	table := make(map[string]string, len(tokens))
	for rows.Next() {
		var token, cardID string
		if err := rows.Scan(&token, &cardID); err != nil {
			return nil, fmt.Errorf("scanning reveal row: %w", err)
		}
		table[token] = cardID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading reveal rows: %w", err)
	}

	return store.ScopedReveal(st, playerID, tokens, table)
}

func (s *GameStore) CancelGame(ctx context.Context, roomID string) error {
	// States and cards go with the game row via ON DELETE CASCADE.
	if _, err := s.pool.Exec(ctx, `DELETE FROM games WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("deleting game: %w", err)
	}
	return nil
}
