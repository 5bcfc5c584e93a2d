package store

import (
	"context"
	"sync"

	"github.com/ryym/uni/engine"
)

type memGame struct {
	config *engine.Config
	state  *engine.State
	reveal map[string]string
}

// Memory is an in-process Store for tests and local development. It
// applies the same attribution and reveal-scope checks as the database
// implementation.
type Memory struct {
	mu    sync.Mutex
	games map[string]*memGame
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{games: make(map[string]*memGame)}
}

func (m *Memory) CreateGame(ctx context.Context, roomID string, cfg *engine.Config, st *engine.State, reveal map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[roomID]; ok {
		return ErrGameExists
	}
	table := make(map[string]string, len(reveal))
	for t, id := range reveal {
		table[t] = id
	}
	m.games[roomID] = &memGame{config: cfg, state: st, reveal: table}
	return nil
}

func (m *Memory) LoadGame(ctx context.Context, roomID string) (*engine.Config, *engine.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[roomID]
	if !ok {
		return nil, nil, ErrNoGame
	}
	return g.config, g.state, nil
}

func (m *Memory) WriteState(ctx context.Context, roomID, playerID string, st *engine.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[roomID]
	if !ok {
		return ErrNoGame
	}
	if g.state.CurrentPlayer != playerID {
		return ErrNotCurrentPlayer
	}
	g.state = st
	return nil
}

func (m *Memory) Reveal(ctx context.Context, roomID, playerID string, tokens []string) (map[string]string, error) {
	if len(tokens) > MaxRevealBatch {
		return nil, ErrRevealBatchTooLarge
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[roomID]
	if !ok {
		return nil, ErrNoGame
	}
	return ScopedReveal(g.state, playerID, tokens, g.reveal)
}

func (m *Memory) CancelGame(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, roomID)
	return nil
}

// ScopedReveal applies the reveal scope rule shared by implementations:
// every requested token must sit in the requesting player's current hand.
func ScopedReveal(st *engine.State, playerID string, tokens []string, table map[string]string) (map[string]string, error) {
	hand := make(map[string]struct{}, len(st.Players[playerID].Hand))
	for _, t := range st.Players[playerID].Hand {
		hand[t] = struct{}{}
	}
	cards := make(map[string]string, len(tokens))
	for _, t := range tokens {
		if _, ok := hand[t]; !ok {
			return nil, ErrForeignToken
		}
		id, ok := table[t]
		if !ok {
			return nil, ErrForeignToken
		}
		cards[t] = id
	}
	return cards, nil
}
