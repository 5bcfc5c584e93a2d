package engine

import "fmt"

// RandInt returns a uniform random integer in [0, n). The randomness a
// game needs (deck shuffling, the opening color of a colorless top card)
// is injected through this so tests and the init RPC can choose their own
// sources.
type RandInt func(n int) int

// ShuffleDeck shuffles cards in place with a Fisher-Yates shuffle driven
// by randInt.
func ShuffleDeck(cards []Card, randInt RandInt) {
	for i := len(cards); i > 0; {
		r := randInt(i)
		i--
		cards[i], cards[r] = cards[r], cards[i]
	}
}

// InitOptions configures NewGame.
type InitOptions struct {
	PlayerIDs []string
	HandSize  int
	Salt      string
	Rand      RandInt
}

// NewGame deals an already-ordered deck into the immutable game config and
// the initial state. Player i receives the consecutive deck slots
// [i*HandSize, (i+1)*HandSize); the next slot becomes the opening discard
// and the deck top starts one past it. Callers shuffle beforehand
// (ShuffleDeck) if they want a random order.
//
// NewGame fails if the player list is empty, the hand size is not
// positive, the deck cannot cover all hands plus the opening card, or the
// salt produces colliding card tokens (a fatal condition for the caller:
// no game must be created from it).
func NewGame(cards []Card, opts InitOptions) (*Config, *State, error) {
	if len(opts.PlayerIDs) == 0 {
		return nil, nil, fmt.Errorf("no players")
	}
	if opts.HandSize <= 0 {
		return nil, nil, fmt.Errorf("invalid hand size %d", opts.HandSize)
	}
	if opts.Rand == nil {
		return nil, nil, fmt.Errorf("missing random source")
	}
	dealt := len(opts.PlayerIDs) * opts.HandSize
	if len(cards) < dealt+1 {
		return nil, nil, fmt.Errorf("deck too short: %d cards for %d players with hand size %d",
			len(cards), len(opts.PlayerIDs), opts.HandSize)
	}

	obf, err := NewObfuscator(opts.Salt)
	if err != nil {
		return nil, nil, err
	}

	deck := make([]string, len(cards))
	for i, c := range cards {
		t, err := obf.Token(c.ID)
		if err != nil {
			return nil, nil, err
		}
		deck[i] = t
	}

	players := make(map[string]PlayerState, len(opts.PlayerIDs))
	for i, id := range opts.PlayerIDs {
		hand := make([]string, opts.HandSize)
		copy(hand, deck[i*opts.HandSize:(i+1)*opts.HandSize])
		players[id] = PlayerState{Hand: hand}
	}

	cfg := &Config{
		Deck:       deck,
		PlayerIDs:  append([]string(nil), opts.PlayerIDs...),
		Protection: Protection{Salt: opts.Salt},
	}
	st := &State{
		Turn:          1,
		CurrentPlayer: opts.PlayerIDs[0],
		Clockwise:     true,
		DeckTopIdx:    dealt + 1,
		Players:       players,
		DiscardPile:   openingPile(cards[dealt], opts.Rand),
		LastUpdate:    nil,
	}
	return cfg, st, nil
}

// openingPile seeds the discard pile from the revealed opening card. A
// colored card seeds its own color; Wild/Draw4 get a uniformly random one.
func openingPile(top Card, randInt RandInt) DiscardPile {
	color := top.Color
	if !top.Colored() {
		color = Colors[randInt(len(Colors))]
	}
	return DiscardPile{
		TopCardIDs:  []string{top.ID},
		Color:       color,
		AttackTotal: nil,
	}
}
