package game

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryym/uni/engine"
	"github.com/ryym/uni/internal/cache"
	"github.com/ryym/uni/internal/store"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// newRoom creates a stored two-player game and a session for player "a"
// that has adopted the initial snapshot.
func newRoom(t *testing.T) (*store.Memory, *Session, *engine.State) {
	t.Helper()
	ids := []string{"num-r-1-0", "num-b-1-0", "num-g-2-0", "num-y-3-0", "num-y-4-0"}
	cards := make([]engine.Card, len(ids))
	for i, id := range ids {
		c, err := engine.CardByID(id)
		require.NoError(t, err)
		cards[i] = c
	}
	salt := "session-salt"
	cfg, st, err := engine.NewGame(cards, engine.InitOptions{
		PlayerIDs: []string{"a", "b"},
		HandSize:  1,
		Salt:      salt,
		Rand:      func(n int) int { return 0 },
	})
	require.NoError(t, err)
	obf, err := engine.NewObfuscator(salt)
	require.NoError(t, err)

	mem := store.NewMemory()
	require.NoError(t, mem.CreateGame(context.Background(), "room1", cfg, st, obf.RevealTable()))

	s := NewSession(testLogger(), mem, "room1", "a")
	s.HandleEvent(context.Background(), cache.Event{Snapshot: store.Snapshot{State: st}})
	require.Equal(t, engine.SyncValid, s.Game().Status)
	return mem, s, st
}

func TestSessionAdoptsFirstSnapshot(t *testing.T) {
	_, s, st := newRoom(t)

	game := s.Game()
	assert.Equal(t, engine.SyncValid, game.Status)
	assert.True(t, st.Equal(game.State))
	assert.True(t, game.SyncFinished)
	require.NotNil(t, game.Config)
	assert.Equal(t, []string{"a", "b"}, game.Config.PlayerIDs)
}

func TestSessionActWritesOptimistically(t *testing.T) {
	mem, s, _ := newRoom(t)
	ctx := context.Background()

	require.NoError(t, s.Act(ctx, engine.DrawAction()))

	game := s.Game()
	assert.Equal(t, 2, game.State.Turn)
	assert.False(t, game.SyncFinished, "own write is unconfirmed until echoed back")

	_, stored, err := mem.LoadGame(ctx, "room1")
	require.NoError(t, err)
	assert.True(t, game.State.Equal(stored))

	// The committed snapshot confirms the same turn.
	s.HandleEvent(ctx, cache.Event{Snapshot: store.Snapshot{State: stored}})
	game = s.Game()
	assert.Equal(t, engine.SyncValid, game.Status)
	assert.True(t, game.SyncFinished)
}

func TestSessionActRejections(t *testing.T) {
	mem, s, st := newRoom(t)
	ctx := context.Background()

	// An illegal action never reaches the store.
	err := s.Act(ctx, engine.PassAction())
	re, ok := engine.AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, engine.ErrCodeCannotPass, re.Code)
	_, stored, err := mem.LoadGame(ctx, "room1")
	require.NoError(t, err)
	assert.True(t, st.Equal(stored), "rejected action must not change the store")

	// The other seat cannot act at all.
	other := NewSession(testLogger(), mem, "room1", "b")
	other.HandleEvent(ctx, cache.Event{Snapshot: store.Snapshot{State: st}})
	err = other.Act(ctx, engine.DrawAction())
	assert.ErrorContains(t, err, "cannot act")
}

func TestSessionActBeforeSync(t *testing.T) {
	mem := store.NewMemory()
	s := NewSession(testLogger(), mem, "room1", "a")

	err := s.Act(context.Background(), engine.DrawAction())
	assert.ErrorIs(t, err, ErrNotSynced)
}

func TestSessionDivergedRemote(t *testing.T) {
	_, s, st := newRoom(t)
	ctx := context.Background()

	// A snapshot whose turn advanced without a reproducible action.
	bad := *st
	bad.Turn = 2
	bad.LastUpdate = nil
	s.HandleEvent(ctx, cache.Event{Snapshot: store.Snapshot{State: &bad}})

	game := s.Game()
	assert.Equal(t, engine.SyncInvalid, game.Status)
	assert.Error(t, game.Err)

	err := s.Act(ctx, engine.DrawAction())
	assert.ErrorIs(t, err, ErrNotSynced)
}

func TestSessionCancelEndsInvalidSession(t *testing.T) {
	mem, s, st := newRoom(t)
	ctx := context.Background()

	bad := *st
	bad.Turn = 2
	bad.LastUpdate = nil
	s.HandleEvent(ctx, cache.Event{Snapshot: store.Snapshot{State: &bad}})
	require.Equal(t, engine.SyncInvalid, s.Game().Status)

	require.NoError(t, s.Cancel(ctx))
	_, _, err := mem.LoadGame(ctx, "room1")
	assert.ErrorIs(t, err, store.ErrNoGame)

	// The removal event is the documented exit from invalid.
	s.HandleEvent(ctx, cache.Event{Removed: true})
	assert.Equal(t, engine.SyncNoGame, s.Game().Status)
}
