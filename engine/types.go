package engine

// Config is the immutable per-game configuration. It is written once at
// game initialization and shared read-only by every client and the store.
type Config struct {
	// Deck holds the obfuscated card tokens in final (shuffled) order;
	// position in the slice is the deck index.
	Deck []string `json:"deck"`
	// PlayerIDs fixes seating and turn order.
	PlayerIDs  []string   `json:"playerUids"`
	Protection Protection `json:"protection"`
}

// Protection carries the secrecy parameters of the obfuscation scheme.
type Protection struct {
	Salt string `json:"salt"`
}

// State is the mutable-per-turn game state. It is never mutated in place:
// every accepted action produces a fresh State value.
type State struct {
	// Turn counts accepted actions, starting at 1 for the initial state.
	Turn          int    `json:"turn"`
	CurrentPlayer string `json:"currentPlayerUid"`
	Clockwise     bool   `json:"clockwise"`
	// DeckTopIdx is the position of the next undrawn card.
	DeckTopIdx  int                    `json:"deckTopIdx"`
	Players     map[string]PlayerState `json:"playerMap"`
	DiscardPile DiscardPile            `json:"discardPile"`
	// LastUpdate records the action that produced this state. It is nil
	// only for the initial state (turn 1).
	LastUpdate *LastUpdate `json:"lastUpdate"`
}

// PlayerState is one player's broadcast-safe state: hand tokens in
// insertion order and the turn at which the hand became empty (nil while
// still playing).
type PlayerState struct {
	Hand  []string `json:"hand"`
	WonAt *int     `json:"wonAt"`
}

// DiscardPile is the bounded public view of the discard pile, not the full
// pile history.
type DiscardPile struct {
	// TopCardIDs holds the most recently played real card ids,
	// newest-first, truncated to at most 5 entries.
	TopCardIDs []string `json:"topCardIds"`
	// Color is the pile's active matching color: chosen explicitly for
	// Wild/Draw4 plays, inherited from the played card otherwise.
	Color Color `json:"color"`
	// AttackTotal is the accumulated forced-draw count pending against the
	// next player, or nil when no attack is active.
	AttackTotal *int `json:"attackTotal"`
}

// LastUpdate identifies the acting player and the action that produced a
// state.
type LastUpdate struct {
	Player string `json:"playerUid"`
	Action Action `json:"action"`
}

// pileTopWindow bounds DiscardPile.TopCardIDs.
const pileTopWindow = 5

// Equal reports deep semantic equality of two states. This is the equality
// the reconciliation engine asserts between a locally replayed state and a
// remote-declared one, so it must be JSON-round-trip stable: nil and empty
// slices compare equal.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Turn != o.Turn ||
		s.CurrentPlayer != o.CurrentPlayer ||
		s.Clockwise != o.Clockwise ||
		s.DeckTopIdx != o.DeckTopIdx {
		return false
	}
	if !s.DiscardPile.equal(o.DiscardPile) {
		return false
	}
	if len(s.Players) != len(o.Players) {
		return false
	}
	for id, p := range s.Players {
		op, ok := o.Players[id]
		if !ok || !p.equal(op) {
			return false
		}
	}
	switch {
	case s.LastUpdate == nil && o.LastUpdate == nil:
	case s.LastUpdate == nil || o.LastUpdate == nil:
		return false
	default:
		if s.LastUpdate.Player != o.LastUpdate.Player ||
			!s.LastUpdate.Action.Equal(o.LastUpdate.Action) {
			return false
		}
	}
	return true
}

func (p PlayerState) equal(o PlayerState) bool {
	return stringsEqual(p.Hand, o.Hand) && intPtrEqual(p.WonAt, o.WonAt)
}

func (d DiscardPile) equal(o DiscardPile) bool {
	return stringsEqual(d.TopCardIDs, o.TopCardIDs) &&
		d.Color == o.Color &&
		intPtrEqual(d.AttackTotal, o.AttackTotal)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func intPtr(n int) *int { return &n }
