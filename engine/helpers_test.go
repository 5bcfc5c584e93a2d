package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testSalt = "salt-1"

// tok is the hand token of a card under the test salt.
func tok(id string) string { return CardToken(id, testSalt) }

func toks(ids ...string) []string {
	ts := make([]string, len(ids))
	for i, id := range ids {
		ts[i] = tok(id)
	}
	return ts
}

// pickCards resolves catalog cards by id, preserving order.
func pickCards(t *testing.T, ids ...string) []Card {
	t.Helper()
	cards := make([]Card, len(ids))
	for i, id := range ids {
		c, err := CardByID(id)
		require.NoError(t, err, "card %s", id)
		cards[i] = c
	}
	return cards
}

// newTestGame initializes a game from an explicit deck order. The random
// source always returns 0, so a colorless opening card seeds Red.
func newTestGame(t *testing.T, players []string, handSize int, deckIDs ...string) (*Config, *State) {
	t.Helper()
	cfg, st, err := NewGame(pickCards(t, deckIDs...), InitOptions{
		PlayerIDs: players,
		HandSize:  handSize,
		Salt:      testSalt,
		Rand:      func(n int) int { return 0 },
	})
	require.NoError(t, err)
	return cfg, st
}

func mustApply(t *testing.T, cfg *Config, st *State, action Action) *State {
	t.Helper()
	next, err := Apply(cfg, st, action)
	require.NoError(t, err)
	return next
}

func playIDs(ids ...string) Action { return PlayAction(ids, "") }
