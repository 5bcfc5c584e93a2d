package engine

import (
	"errors"
	"fmt"
)

// SyncStatus is the reconciliation machine's state.
type SyncStatus uint8

const (
	// SyncUnsynced means no snapshot has been received yet.
	SyncUnsynced SyncStatus = iota
	// SyncNoGame means the remote store has no active game.
	SyncNoGame
	// SyncValid means the last remote snapshot was verified (or trusted,
	// for the first one) and adopted.
	SyncValid
	// SyncInvalid is terminal: local replay and the remote-declared state
	// have provably disagreed. Only an explicit game cancellation ends it.
	SyncInvalid
)

var syncStatusNames = [...]string{
	SyncUnsynced: "unsynced",
	SyncNoGame:   "nogame",
	SyncValid:    "valid",
	SyncInvalid:  "invalid",
}

func (s SyncStatus) String() string {
	if int(s) < len(syncStatusNames) {
		return syncStatusNames[s]
	}
	return fmt.Sprintf("SyncStatus(%d)", uint8(s))
}

// ErrStateDiverged reports that a replayed action produced a different
// state than the remote declared: a bug, a stale or corrupted config, or
// tampering. There is no way to tell which locally, so the session is
// unrecoverable.
var ErrStateDiverged = errors.New("local and remote game states diverged")

// SyncedGame is the client's view of the remote game: the reconciliation
// status plus, when valid, the adopted config/state.
type SyncedGame struct {
	Status SyncStatus
	Config *Config
	State  *State
	// SyncFinished is false while a locally applied state has not yet been
	// acknowledged as committed by the store.
	SyncFinished bool
	// Err carries the failure that made the session invalid.
	Err error
}

// Unsynced returns the initial reconciliation state.
func Unsynced() SyncedGame { return SyncedGame{Status: SyncUnsynced} }

// NoGame returns the no-active-game state.
func NoGame() SyncedGame { return SyncedGame{Status: SyncNoGame} }

// SyncGame advances the reconciliation machine with a freshly received
// remote state.
//
// The first snapshot after unsynced/nogame is trusted as-is: there is no
// prior local state to verify against. After that every turn advance must
// be reproducible: the remote state's lastUpdate action is replayed
// against the last known-good state and the result must equal the remote
// state exactly. Any non-reproducible transition is treated as fatal
// rather than silently accepted.
func SyncGame(cfg *Config, last SyncedGame, remote *State, syncFinished bool) SyncedGame {
	switch last.Status {
	case SyncUnsynced, SyncNoGame:
		return SyncedGame{Status: SyncValid, Config: cfg, State: remote, SyncFinished: syncFinished}

	case SyncInvalid:
		return last

	case SyncValid:
		if last.State.Turn == remote.Turn {
			// Same turn: nothing to replay, just refresh the write
			// acknowledgement flag.
			last.SyncFinished = syncFinished
			return last
		}
		if remote.LastUpdate == nil {
			return invalidSync(fmt.Errorf("%w: remote state (turn %d) carries no last update",
				ErrStateDiverged, remote.Turn))
		}

		replayed, err := Apply(cfg, last.State, remote.LastUpdate.Action)
		if err != nil {
			return invalidSync(fmt.Errorf("replaying remote action %s: %w", remote.LastUpdate.Action, err))
		}
		if !replayed.Equal(remote) {
			return invalidSync(fmt.Errorf("%w: replayed turn %d does not match remote",
				ErrStateDiverged, remote.Turn))
		}
		return SyncedGame{Status: SyncValid, Config: cfg, State: remote, SyncFinished: syncFinished}
	}
	panic(fmt.Sprintf("engine: unknown sync status %d", last.Status))
}

// SyncRemoved advances the machine when the remote game document
// disappears. Cancellation is the documented exit from invalid, so the
// result is nogame regardless of the previous status.
func SyncRemoved(last SyncedGame) SyncedGame {
	return NoGame()
}

func invalidSync(err error) SyncedGame {
	return SyncedGame{Status: SyncInvalid, Err: err}
}
