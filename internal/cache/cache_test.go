package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryym/uni/engine"
	"github.com/ryym/uni/internal/store"
)

func newTestChannel(t *testing.T) *Channel {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return NewChannel(client, logrus.NewEntry(log))
}

func testState(turn int) *engine.State {
	return &engine.State{
		Turn:          turn,
		CurrentPlayer: "a",
		Clockwise:     true,
		DeckTopIdx:    3,
		Players: map[string]engine.PlayerState{
			"a": {Hand: []string{"t1"}},
			"b": {Hand: []string{"t2"}},
		},
		DiscardPile: engine.DiscardPile{TopCardIDs: []string{"num-g-2-0"}, Color: engine.ColorGreen},
	}
}

func recvEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestChannelPublishAndSubscribe(t *testing.T) {
	c := newTestChannel(t)
	ctx := context.Background()

	events, stop, err := c.Subscribe(ctx, "room1")
	require.NoError(t, err)
	defer stop()

	st := testState(2)
	require.NoError(t, c.PublishSnapshot(ctx, "room1", store.Snapshot{State: st, Pending: true}))

	ev := recvEvent(t, events)
	assert.False(t, ev.Removed)
	assert.True(t, ev.Snapshot.Pending)
	require.NotNil(t, ev.Snapshot.State)
	assert.True(t, st.Equal(ev.Snapshot.State))
}

func TestChannelDeliversCurrentSnapshotFirst(t *testing.T) {
	c := newTestChannel(t)
	ctx := context.Background()

	st := testState(5)
	require.NoError(t, c.PublishSnapshot(ctx, "room1", store.Snapshot{State: st}))

	// A subscriber arriving late still sees the current state right away.
	events, stop, err := c.Subscribe(ctx, "room1")
	require.NoError(t, err)
	defer stop()

	ev := recvEvent(t, events)
	require.NotNil(t, ev.Snapshot.State)
	assert.Equal(t, 5, ev.Snapshot.State.Turn)
	assert.False(t, ev.Snapshot.Pending)
}

func TestChannelRemoval(t *testing.T) {
	c := newTestChannel(t)
	ctx := context.Background()

	require.NoError(t, c.PublishSnapshot(ctx, "room1", store.Snapshot{State: testState(2)}))

	events, stop, err := c.Subscribe(ctx, "room1")
	require.NoError(t, err)
	defer stop()
	recvEvent(t, events) // current snapshot

	require.NoError(t, c.PublishRemoval(ctx, "room1"))
	ev := recvEvent(t, events)
	assert.True(t, ev.Removed)
	assert.Nil(t, ev.Snapshot.State)

	// The snapshot key is gone, so a fresh subscriber gets nothing.
	fresh, stop2, err := c.Subscribe(ctx, "room1")
	require.NoError(t, err)
	defer stop2()
	select {
	case ev := <-fresh:
		t.Fatalf("unexpected event after removal: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChannelStopClosesEvents(t *testing.T) {
	c := newTestChannel(t)
	ctx := context.Background()

	events, stop, err := c.Subscribe(ctx, "room1")
	require.NoError(t, err)
	stop()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should be closed after stop")
	case <-time.After(3 * time.Second):
		t.Fatal("event channel not closed after stop")
	}
}

func TestChannelRoomsAreIsolated(t *testing.T) {
	c := newTestChannel(t)
	ctx := context.Background()

	events, stop, err := c.Subscribe(ctx, "room1")
	require.NoError(t, err)
	defer stop()

	require.NoError(t, c.PublishSnapshot(ctx, "room2", store.Snapshot{State: testState(2)}))
	select {
	case ev := <-events:
		t.Fatalf("received another room's event: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
