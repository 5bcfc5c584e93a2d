// Package game holds the client side of a room: a session that keeps a
// verified local copy of the remote game, and the hand-card map resolving
// hand tokens to real cards.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ryym/uni/engine"
	"github.com/ryym/uni/internal/cache"
	"github.com/ryym/uni/internal/store"
)

// ErrNotSynced is returned by Act when the session has no verified game
// to act on (unsynced, no game, or diverged).
var ErrNotSynced = errors.New("no verified game state to act on")

// Session is one player's connection to a room. It applies the player's
// own actions optimistically and verifies every remote snapshot by replay
// before adopting it. All callbacks are serialized by an internal mutex;
// snapshot intake and action submission may come from different
// goroutines.
type Session struct {
	log    *logrus.Entry
	store  store.Store
	roomID string
	player string

	mu     sync.Mutex
	config *engine.Config
	synced engine.SyncedGame
}

func NewSession(log *logrus.Entry, st store.Store, roomID, player string) *Session {
	return &Session{
		log:    log.WithFields(logrus.Fields{"room": roomID, "player": player}),
		store:  st,
		roomID: roomID,
		player: player,
		synced: engine.Unsynced(),
	}
}

// Game returns the current reconciliation result.
func (s *Session) Game() engine.SyncedGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// HandleEvent feeds one snapshot-channel event into the reconciliation
// machine.
func (s *Session) HandleEvent(ctx context.Context, ev cache.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Removed || ev.Snapshot.State == nil {
		s.synced = engine.SyncRemoved(s.synced)
		s.config = nil
		s.log.Info("game removed")
		return
	}

	if s.config == nil {
		cfg, _, err := s.store.LoadGame(ctx, s.roomID)
		if err != nil {
			// Without the config nothing can be verified. Keep the previous
			// status; the next event retries the load.
			s.log.WithError(err).Error("loading game config")
			return
		}
		s.config = cfg
	}

	s.synced = engine.SyncGame(s.config, s.synced, ev.Snapshot.State, !ev.Snapshot.Pending)
	entry := s.log.WithField("status", s.synced.Status.String())
	if s.synced.State != nil {
		entry = entry.WithField("turn", s.synced.State.Turn)
	}
	if s.synced.Status == engine.SyncInvalid {
		entry.WithError(s.synced.Err).Error("remote state rejected")
		return
	}
	entry.Debug("snapshot adopted")
}

// Act validates and applies action locally, writes the resulting state to
// the store, and adopts it optimistically. The adopted state stays marked
// unconfirmed until a committed snapshot echoes it back.
func (s *Session) Act(ctx context.Context, action engine.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.synced.Status != engine.SyncValid {
		return fmt.Errorf("%w (status %s)", ErrNotSynced, s.synced.Status)
	}
	if !engine.CanAct(s.config, s.synced.State, s.player) {
		return fmt.Errorf("player %s cannot act now", s.player)
	}

	next, err := engine.Apply(s.config, s.synced.State, action)
	if err != nil {
		return err
	}
	if err := s.store.WriteState(ctx, s.roomID, s.player, next); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	s.synced.State = next
	s.synced.SyncFinished = false
	s.log.WithFields(logrus.Fields{"turn": next.Turn, "action": action.String()}).
		Info("action applied")
	return nil
}

// Cancel deletes the room's game. This is also the only way out of a
// diverged session: the removal event resets the machine to nogame.
func (s *Session) Cancel(ctx context.Context) error {
	if err := s.store.CancelGame(ctx, s.roomID); err != nil {
		return fmt.Errorf("cancelling game: %w", err)
	}
	return nil
}
