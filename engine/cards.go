// Package engine implements the rules of an UNO-style card game as a
// deterministic, pure state machine.
//
// The package has two halves: the rules engine proper (Apply and the
// legality helpers), which every client runs locally, and the snapshot
// reconciliation machine (SyncGame), which replays remote-declared actions
// against the last known-good local state to detect divergence. Both halves
// are pure functions over value-like inputs; the engine never performs I/O.
package engine

import (
	"errors"
	"fmt"
)

// Color is one of the four card colors a colored card carries and a
// discard pile matches against.
type Color string

const (
	ColorRed    Color = "Red"
	ColorBlue   Color = "Blue"
	ColorGreen  Color = "Green"
	ColorYellow Color = "Yellow"
)

// Colors lists the four valid colors in canonical order.
var Colors = [4]Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// ParseColor validates a wire-level color value.
func ParseColor(v string) (Color, error) {
	for _, c := range Colors {
		if v == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid color: %q", v)
}

// Kind is the closed set of card kinds.
type Kind uint8

const (
	KindNumber Kind = iota
	KindReverse
	KindSkip
	KindDraw2
	KindWild
	KindDraw4
)

var kindNames = [...]string{
	KindNumber:  "Number",
	KindReverse: "Reverse",
	KindSkip:    "Skip",
	KindDraw2:   "Draw2",
	KindWild:    "Wild",
	KindDraw4:   "Draw4",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Card is a value object identified by ID. Color is empty for Wild and
// Draw4 cards; Value is meaningful only for Number cards.
type Card struct {
	ID    string
	Kind  Kind
	Color Color
	Value int
}

// Colored reports whether the card carries a color of its own.
func (c Card) Colored() bool {
	return c.Kind != KindWild && c.Kind != KindDraw4
}

// Digest collapses functionally identical cards (same kind, color and
// value) to the same key. It is a presentation-level de-duplication aid
// and plays no role in the rules.
func (c Card) Digest() string {
	switch c.Kind {
	case KindNumber:
		return fmt.Sprintf("Number-%s-%d", c.Color, c.Value)
	case KindReverse, KindSkip, KindDraw2:
		return fmt.Sprintf("%s-%s", c.Kind, c.Color)
	default:
		return c.Kind.String()
	}
}

// DeckSize is the number of cards in a full deck.
const DeckSize = 108

// ErrUnknownCard is returned by CardByID for ids outside the catalog.
var ErrUnknownCard = errors.New("unknown card")

// BuildDeck returns the fixed 108-card deck in canonical, unshuffled order:
// for each color one 0, two each of 1-9, two Reverse, two Skip and two
// Draw2; then four Draw4 and four Wild.
func BuildDeck() []Card {
	colorIDs := [4]struct {
		color Color
		cid   string
	}{
		{ColorRed, "r"},
		{ColorBlue, "b"},
		{ColorGreen, "g"},
		{ColorYellow, "y"},
	}

	deck := make([]Card, 0, DeckSize)
	for _, c := range colorIDs {
		deck = append(deck, Card{
			ID:    fmt.Sprintf("num-%s-0-0", c.cid),
			Kind:  KindNumber,
			Color: c.color,
		})
		for v := 1; v <= 9; v++ {
			for i := 0; i < 2; i++ {
				deck = append(deck, Card{
					ID:    fmt.Sprintf("num-%s-%d-%d", c.cid, v, i),
					Kind:  KindNumber,
					Color: c.color,
					Value: v,
				})
			}
		}
		for i := 0; i < 2; i++ {
			deck = append(deck, Card{ID: fmt.Sprintf("rev-%s-%d", c.cid, i), Kind: KindReverse, Color: c.color})
		}
		for i := 0; i < 2; i++ {
			deck = append(deck, Card{ID: fmt.Sprintf("skip-%s-%d", c.cid, i), Kind: KindSkip, Color: c.color})
		}
		for i := 0; i < 2; i++ {
			deck = append(deck, Card{ID: fmt.Sprintf("draw2-%s-%d", c.cid, i), Kind: KindDraw2, Color: c.color})
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{ID: fmt.Sprintf("draw4-%d", i), Kind: KindDraw4})
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{ID: fmt.Sprintf("wild-%d", i), Kind: KindWild})
	}
	return deck
}

var cardIndex = func() map[string]Card {
	m := make(map[string]Card, DeckSize)
	for _, c := range BuildDeck() {
		m[c.ID] = c
	}
	return m
}()

// CardByID looks up a card in the fixed catalog.
func CardByID(id string) (Card, error) {
	c, ok := cardIndex[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, id)
	}
	return c, nil
}

// mustCardByID is for ids sourced from already-validated state. An unknown
// id here is an internal-consistency violation, not a user error.
func mustCardByID(id string) Card {
	c, err := CardByID(id)
	if err != nil {
		panic(fmt.Sprintf("engine: %v", err))
	}
	return c
}
