package game

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryym/uni/engine"
	"github.com/ryym/uni/internal/store"
)

// fakeRevealer serves reveals from a fixed table and records every batch
// it is asked for.
type fakeRevealer struct {
	mu      sync.Mutex
	table   map[string]string
	batches [][]string
	err     error
}

func newFakeRevealer(t *testing.T, salt string) *fakeRevealer {
	t.Helper()
	obf, err := engine.NewObfuscator(salt)
	require.NoError(t, err)
	return &fakeRevealer{table: obf.RevealTable()}
}

func (f *fakeRevealer) Reveal(ctx context.Context, roomID, playerID string, tokens []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]string(nil), tokens...))
	if f.err != nil {
		return nil, f.err
	}
	cards := make(map[string]string, len(tokens))
	for _, token := range tokens {
		if id, ok := f.table[token]; ok {
			cards[token] = id
		}
	}
	return cards, nil
}

func (f *fakeRevealer) batchSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, len(f.batches))
	for i, b := range f.batches {
		sizes[i] = len(b)
	}
	return sizes
}

func TestHandCardMapFetchChunksLargeHands(t *testing.T) {
	const salt = "hand-salt"
	r := newFakeRevealer(t, salt)
	m := NewHandCardMap()

	// 25 tokens force three batches under the reveal cap.
	deck := engine.BuildDeck()
	hand := make([]string, 25)
	for i := range hand {
		hand[i] = engine.CardToken(deck[i].ID, salt)
	}

	require.NoError(t, m.Fetch(context.Background(), r, "room1", "a", hand))

	sizes := r.batchSizes()
	total := 0
	for _, n := range sizes {
		assert.LessOrEqual(t, n, store.MaxRevealBatch)
		total += n
	}
	assert.Equal(t, len(hand), total)
	assert.Len(t, sizes, 3)

	for i, token := range hand {
		hc, ok := m.Get(token)
		require.True(t, ok, "token %d unresolved", i)
		assert.Equal(t, CardGot, hc.Status)
		assert.Equal(t, deck[i].ID, hc.Card.ID)
	}
}

func TestHandCardMapCachesAcrossFetches(t *testing.T) {
	const salt = "hand-salt"
	r := newFakeRevealer(t, salt)
	m := NewHandCardMap()
	ctx := context.Background()

	first := []string{engine.CardToken("num-r-1-0", salt), engine.CardToken("wild-0", salt)}
	require.NoError(t, m.Fetch(ctx, r, "room1", "a", first))
	require.Len(t, r.batchSizes(), 1)

	// A grown hand only fetches the new token.
	grown := append(append([]string(nil), first...), engine.CardToken("skip-b-0", salt))
	require.NoError(t, m.Fetch(ctx, r, "room1", "a", grown))
	sizes := r.batchSizes()
	require.Len(t, sizes, 2)
	assert.Equal(t, 1, sizes[1])

	// Nothing new, nothing fetched.
	require.NoError(t, m.Fetch(ctx, r, "room1", "a", grown))
	assert.Len(t, r.batchSizes(), 2)
}

func TestHandCardMapRetriesAfterFailure(t *testing.T) {
	const salt = "hand-salt"
	r := newFakeRevealer(t, salt)
	m := NewHandCardMap()
	ctx := context.Background()

	hand := []string{engine.CardToken("num-r-1-0", salt)}

	r.err = errors.New("store down")
	err := m.Fetch(ctx, r, "room1", "a", hand)
	require.Error(t, err)
	_, ok := m.Get(hand[0])
	assert.False(t, ok, "failed tokens must not stay marked as fetching")

	r.err = nil
	require.NoError(t, m.Fetch(ctx, r, "room1", "a", hand))
	hc, ok := m.Get(hand[0])
	require.True(t, ok)
	assert.Equal(t, CardGot, hc.Status)
	assert.Equal(t, "num-r-1-0", hc.Card.ID)
}

func TestHandCardMapDropsUnknownTokens(t *testing.T) {
	const salt = "hand-salt"
	r := newFakeRevealer(t, salt)
	m := NewHandCardMap()

	unknown := "not-a-token"
	require.NoError(t, m.Fetch(context.Background(), r, "room1", "a", []string{unknown}))
	_, ok := m.Get(unknown)
	assert.False(t, ok)
}
