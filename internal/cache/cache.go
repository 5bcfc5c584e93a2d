// Package cache fans room snapshots out to subscribed clients over redis.
// The current snapshot is kept under a room key so a late subscriber gets
// the latest state immediately, and every update is published on the
// room's pub/sub channel.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ryym/uni/internal/store"
)

// Event is one message on a room's snapshot channel: either a snapshot of
// the current state or the removal of the game.
type Event struct {
	Removed  bool           `json:"removed,omitempty"`
	Snapshot store.Snapshot `json:"snapshot"`
}

// Channel publishes and subscribes room snapshot events.
type Channel struct {
	rdb *redis.Client
	log *logrus.Entry
}

func NewChannel(rdb *redis.Client, log *logrus.Entry) *Channel {
	return &Channel{rdb: rdb, log: log}
}

func snapshotKey(roomID string) string { return "uni:snapshot:" + roomID }
func channelName(roomID string) string { return "uni:room:" + roomID }

// PublishSnapshot stores the snapshot as the room's current one and
// publishes it to subscribers.
func (c *Channel) PublishSnapshot(ctx context.Context, roomID string, snap store.Snapshot) error {
	return c.publish(ctx, roomID, Event{Snapshot: snap})
}

// PublishRemoval drops the room's current snapshot and tells subscribers
// the game is gone.
func (c *Channel) PublishRemoval(ctx context.Context, roomID string) error {
	if err := c.rdb.Del(ctx, snapshotKey(roomID)).Err(); err != nil {
		return fmt.Errorf("deleting snapshot key: %w", err)
	}
	data, err := json.Marshal(Event{Removed: true})
	if err != nil {
		return fmt.Errorf("encoding removal event: %w", err)
	}
	if err := c.rdb.Publish(ctx, channelName(roomID), data).Err(); err != nil {
		return fmt.Errorf("publishing removal: %w", err)
	}
	return nil
}

func (c *Channel) publish(ctx context.Context, roomID string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding snapshot event: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotKey(roomID), data, 0).Err(); err != nil {
		return fmt.Errorf("storing current snapshot: %w", err)
	}
	if err := c.rdb.Publish(ctx, channelName(roomID), data).Err(); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}

// Subscribe starts listening for the room's events. The room's current
// snapshot, if any, is delivered first. The returned stop function ends
// the subscription and closes the event channel.
func (c *Channel) Subscribe(ctx context.Context, roomID string) (<-chan Event, func(), error) {
	sub := c.rdb.Subscribe(ctx, channelName(roomID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("subscribing to room channel: %w", err)
	}

	events := make(chan Event, 8)

	current, err := c.rdb.Get(ctx, snapshotKey(roomID)).Bytes()
	switch {
	case err == nil:
		var ev Event
		if err := json.Unmarshal(current, &ev); err != nil {
			sub.Close()
			return nil, nil, fmt.Errorf("decoding current snapshot: %w", err)
		}
		events <- ev
	case errors.Is(err, redis.Nil):
		// No game yet; subscribers just wait for the first publish.
	default:
		sub.Close()
		return nil, nil, fmt.Errorf("loading current snapshot: %w", err)
	}

	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				c.log.WithField("room", roomID).WithError(err).
					Warn("dropping undecodable snapshot event")
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { sub.Close() }
	return events, stop, nil
}
