package engine

import "fmt"

// MaxPlayCards bounds the size of a single multi-card play. The bound
// exists to keep the legality check cheap regardless of hand size.
const MaxPlayCards = 50

// Play is a parsed, homogeneous set of cards proposed as one discard.
// Color is the explicitly chosen pile color and is set only for Wild and
// Draw4 plays.
type Play struct {
	Kind  Kind
	Cards []Card
	Color Color
}

// ParsePlay validates a proposed set of card ids as a single coherent
// play: non-empty, bounded, no duplicates, homogeneous kind (and value for
// Number cards), and a valid chosen color for Wild/Draw4. Hand membership
// is the caller's concern.
func ParsePlay(cardIDs []string, chosenColor *Color) (Play, error) {
	if len(cardIDs) == 0 {
		return Play{}, ruleErr(ErrCodeInvalidPlay, "played cards empty")
	}
	if len(cardIDs) > MaxPlayCards {
		return Play{}, ruleErr(ErrCodeInvalidPlay, "played cards too many")
	}

	seen := make(map[string]struct{}, len(cardIDs))
	cards := make([]Card, len(cardIDs))
	for i, id := range cardIDs {
		if _, dup := seen[id]; dup {
			return Play{}, ruleErr(ErrCodeInvalidPlay, fmt.Sprintf("duplicate card played: %s", id))
		}
		seen[id] = struct{}{}
		c, err := CardByID(id)
		if err != nil {
			return Play{}, ruleErr(ErrCodeInvalidPlay, err.Error())
		}
		cards[i] = c
	}

	first := cards[0]
	for _, c := range cards[1:] {
		if !CanPlayWith(first, c) {
			if c.Kind != first.Kind {
				return Play{}, ruleErr(ErrCodeInvalidPlay, "multiple kinds of cards played")
			}
			return Play{}, ruleErr(ErrCodeInvalidPlay, "multiple number values played")
		}
	}

	play := Play{Kind: first.Kind, Cards: cards}
	if first.Kind == KindWild || first.Kind == KindDraw4 {
		if chosenColor == nil {
			return Play{}, ruleErr(ErrCodeInvalidPlay, "must specify valid color: no color chosen")
		}
		color, err := ParseColor(string(*chosenColor))
		if err != nil {
			return Play{}, ruleErr(ErrCodeInvalidPlay, fmt.Sprintf("must specify valid color: %v", err))
		}
		play.Color = color
	}
	return play, nil
}

// CanPlayOn reports whether card may be discarded onto the current pile.
//
//   - Number/Reverse/Skip: no pending attack, and matching color or
//     matching value/kind with the visible pile top.
//   - Draw2: matching color or kind regardless of a pending attack
//     (attack chaining).
//   - Wild: no pending attack.
//   - Draw4: always.
func CanPlayOn(pile DiscardPile, card Card) bool {
	pileTop := mustCardByID(pile.TopCardIDs[0])
	switch card.Kind {
	case KindNumber:
		return pile.AttackTotal == nil &&
			(card.Color == pile.Color || (pileTop.Kind == KindNumber && pileTop.Value == card.Value))
	case KindReverse, KindSkip:
		return pile.AttackTotal == nil && (card.Color == pile.Color || card.Kind == pileTop.Kind)
	case KindDraw2:
		return card.Color == pile.Color || card.Kind == pileTop.Kind
	case KindWild:
		return pile.AttackTotal == nil
	case KindDraw4:
		return true
	}
	return false
}

// CanPlayWith reports whether next can join a multi-card play that starts
// with first: same kind, and same value for Number cards. UIs use this to
// keep a growing selection coherent; ParsePlay enforces the same rule.
func CanPlayWith(first, next Card) bool {
	if first.Kind != next.Kind {
		return false
	}
	return first.Kind != KindNumber || first.Value == next.Value
}
