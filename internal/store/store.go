// Package store defines the persistence contract a game room's clients
// talk to. Implementations must keep the engine's trust model: configs are
// written once, states are replaced wholesale and attributed to the current
// player, and card reveals never cross hand boundaries.
package store

import (
	"context"
	"errors"

	"github.com/ryym/uni/engine"
)

// MaxRevealBatch caps how many tokens a single Reveal call may resolve.
const MaxRevealBatch = 10

var (
	// ErrNoGame is returned when a room has no active game.
	ErrNoGame = errors.New("no active game in room")

	// ErrGameExists is returned by CreateGame when a room already has an
	// active game. Starting over requires an explicit cancel first.
	ErrGameExists = errors.New("room already has an active game")

	// ErrNotCurrentPlayer is returned by WriteState when the writer is not
	// the current player of the stored state.
	ErrNotCurrentPlayer = errors.New("writer is not the current player")

	// ErrForeignToken is returned by Reveal when a requested token is not
	// in the requesting player's own hand.
	ErrForeignToken = errors.New("token is not in your hand")

	// ErrRevealBatchTooLarge is returned by Reveal for batches over
	// MaxRevealBatch tokens.
	ErrRevealBatchTooLarge = errors.New("too many tokens in one reveal")
)

// Store is the per-room game persistence contract.
type Store interface {
	// CreateGame writes the config, the initial state and the reveal table
	// (token -> real card id) atomically. Either the whole game exists
	// afterwards or none of it does.
	CreateGame(ctx context.Context, roomID string, cfg *engine.Config, st *engine.State, reveal map[string]string) error

	// LoadGame returns the room's config and current state.
	LoadGame(ctx context.Context, roomID string) (*engine.Config, *engine.State, error)

	// WriteState replaces the room's state. The write is accepted only when
	// playerID is the current player of the state being replaced.
	WriteState(ctx context.Context, roomID, playerID string, st *engine.State) error

	// Reveal resolves up to MaxRevealBatch hand tokens to real card ids for
	// the requesting player. Tokens outside the player's current hand fail
	// with ErrForeignToken.
	Reveal(ctx context.Context, roomID, playerID string, tokens []string) (map[string]string, error)

	// CancelGame deletes the room's game. Deleting a room without a game is
	// not an error.
	CancelGame(ctx context.Context, roomID string) error
}

// Snapshot is one observation of a room's remote state, as delivered over
// the snapshot channel.
type Snapshot struct {
	// State is the room's current state, or nil when the game is gone.
	State *engine.State `json:"state"`
	// Pending is true while the observed state comes from a write that the
	// store has not yet confirmed committed.
	Pending bool `json:"pending"`
}
