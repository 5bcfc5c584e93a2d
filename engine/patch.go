package engine

import "fmt"

// statePatch is the computed-but-not-yet-applied delta of one action: the
// new deck position, the new discard pile, the acting player's new hand
// and the directional move. Building the patch performs all validation;
// applying it is infallible.
type statePatch struct {
	deckTopIdx int
	pile       DiscardPile
	hand       []string
	move       move
}

// Apply runs one action through the two-phase state machine: build a patch
// (validating the action against the current state), then construct the
// full next state from it. The inputs are never mutated; on success the
// returned state is a wholly new value.
//
// Rejections are *RuleError values. Apply panics only on genuinely
// impossible internal states (e.g. the current player missing from the
// seating list).
func Apply(cfg *Config, st *State, action Action) (*State, error) {
	patch, err := buildStatePatch(cfg, st, action)
	if err != nil {
		return nil, err
	}
	return applyStatePatch(cfg, st, action, patch), nil
}

func buildStatePatch(cfg *Config, st *State, action Action) (statePatch, error) {
	switch action.Type {
	case ActionStart:
		return statePatch{}, ruleErr(ErrCodeStartDuringGame,
			`"Start" action can be used only at game initialization`)

	case ActionPass:
		if err := checkPassIsAvailable(st, st.CurrentPlayer); err != nil {
			return statePatch{}, ruleErr(err.Code, fmt.Sprintf("cannot pass: %s", err.Reason))
		}
		return statePatch{
			deckTopIdx: st.DeckTopIdx,
			pile:       st.DiscardPile,
			hand:       st.Players[st.CurrentPlayer].Hand,
			move:       move{step: 1, clockwise: st.Clockwise},
		}, nil

	case ActionDraw:
		return buildDrawPatch(cfg, st)

	case ActionPlay:
		return buildPlayPatch(cfg, st, action)
	}
	return statePatch{}, ruleErr(ErrCodeInvalidPlay, fmt.Sprintf("unknown action type %q", action.Type))
}

func buildDrawPatch(cfg *Config, st *State) (statePatch, error) {
	if HasDrawnLastTime(st, st.CurrentPlayer) {
		return statePatch{}, ruleErr(ErrCodeCannotDrawTwice, "cannot draw twice")
	}
	hand := st.Players[st.CurrentPlayer].Hand

	if st.DiscardPile.AttackTotal == nil {
		// A plain draw takes one card and leaves the turn open: the player
		// may still play or pass.
		if st.DeckTopIdx+1 > len(cfg.Deck) {
			return statePatch{}, ruleErr(ErrCodeDeckExhausted, "deck exhausted")
		}
		return statePatch{
			deckTopIdx: st.DeckTopIdx + 1,
			pile:       st.DiscardPile,
			hand:       appendHand(hand, cfg.Deck[st.DeckTopIdx]),
			move:       move{step: 0, clockwise: st.Clockwise},
		}, nil
	}

	// Accepting an attack draws the whole accumulated total at once and
	// forfeits the turn.
	total := *st.DiscardPile.AttackTotal
	nextTop := st.DeckTopIdx + total
	if nextTop > len(cfg.Deck) {
		return statePatch{}, ruleErr(ErrCodeDeckExhausted,
			fmt.Sprintf("deck exhausted: %d cards left, attack total %d", len(cfg.Deck)-st.DeckTopIdx, total))
	}
	pile := st.DiscardPile
	pile.AttackTotal = nil
	return statePatch{
		deckTopIdx: nextTop,
		pile:       pile,
		hand:       appendHand(hand, cfg.Deck[st.DeckTopIdx:nextTop]...),
		move:       move{step: 1, clockwise: st.Clockwise},
	}, nil
}

func buildPlayPatch(cfg *Config, st *State, action Action) (statePatch, error) {
	player := st.Players[st.CurrentPlayer]

	tokens := make(map[string]struct{}, len(action.CardIDs))
	for _, id := range action.CardIDs {
		tokens[CardToken(id, cfg.Protection.Salt)] = struct{}{}
	}
	inHand := 0
	for _, t := range player.Hand {
		if _, ok := tokens[t]; ok {
			inHand++
		}
	}
	if inHand != len(tokens) {
		return statePatch{}, ruleErr(ErrCodeCardsNotInHand, "played cards not in hand")
	}

	play, err := ParsePlay(action.CardIDs, action.Color)
	if err != nil {
		return statePatch{}, ruleErr(ErrCodeInvalidPlay, fmt.Sprintf("failed to parse play: %v", err))
	}

	if !CanPlayOn(st.DiscardPile, play.Cards[0]) {
		return statePatch{}, ruleErr(ErrCodeIllegalPlay,
			fmt.Sprintf("cannot play %s on %s", play.Cards[0].ID, st.DiscardPile.TopCardIDs[0]))
	}

	// Prepend the played ids oldest-first-of-this-play so the newest card
	// ends up at the head of the bounded top window.
	topIDs := make([]string, 0, len(action.CardIDs)+len(st.DiscardPile.TopCardIDs))
	for i := len(action.CardIDs) - 1; i >= 0; i-- {
		topIDs = append(topIDs, action.CardIDs[i])
	}
	topIDs = append(topIDs, st.DiscardPile.TopCardIDs...)
	if len(topIDs) > pileTopWindow {
		topIDs = topIDs[:pileTopWindow]
	}

	color := play.Color
	if color == "" {
		color = play.Cards[len(play.Cards)-1].Color
	}
	pile := DiscardPile{
		TopCardIDs:  topIDs,
		Color:       color,
		AttackTotal: st.DiscardPile.AttackTotal,
	}

	hand := make([]string, 0, len(player.Hand)-len(play.Cards))
	for _, t := range player.Hand {
		if _, played := tokens[t]; !played {
			hand = append(hand, t)
		}
	}

	mv := move{step: 1, clockwise: st.Clockwise}
	switch play.Kind {
	case KindNumber, KindWild:
		// Plain advance.
	case KindReverse:
		// Direction flips only for an odd count; pairs cancel out.
		if len(play.Cards)%2 == 1 {
			mv.clockwise = !st.Clockwise
		}
	case KindSkip:
		// Each skip card skips one seat beyond the normal advance.
		mv.step = len(play.Cards) * 2
	case KindDraw2:
		pile.AttackTotal = intPtr(attackTotalOf(pile) + len(play.Cards)*2)
	case KindDraw4:
		pile.AttackTotal = intPtr(attackTotalOf(pile) + len(play.Cards)*4)
	}

	return statePatch{
		deckTopIdx: st.DeckTopIdx,
		pile:       pile,
		hand:       hand,
		move:       mv,
	}, nil
}

// applyStatePatch constructs the full next state from a validated patch:
// the turn counter advances, the next current player is resolved among the
// remaining (non-winner) players, the acting player's hand is replaced and
// their wonAt recorded the first time the hand empties.
func applyStatePatch(cfg *Config, st *State, action Action, patch statePatch) *State {
	remaining := make([]string, 0, len(cfg.PlayerIDs))
	for _, id := range cfg.PlayerIDs {
		if st.Players[id].WonAt == nil {
			remaining = append(remaining, id)
		}
	}
	next := NextSeat(remaining, st.CurrentPlayer, patch.move.step, patch.move.clockwise)

	players := make(map[string]PlayerState, len(st.Players))
	for id, p := range st.Players {
		players[id] = p
	}
	acting := players[st.CurrentPlayer]
	acting.Hand = patch.hand
	if acting.WonAt == nil && len(patch.hand) == 0 {
		acting.WonAt = intPtr(st.Turn)
	}
	players[st.CurrentPlayer] = acting

	return &State{
		Turn:          st.Turn + 1,
		CurrentPlayer: next,
		Clockwise:     patch.move.clockwise,
		DeckTopIdx:    patch.deckTopIdx,
		Players:       players,
		DiscardPile:   patch.pile,
		LastUpdate: &LastUpdate{
			Player: st.CurrentPlayer,
			Action: action,
		},
	}
}

func attackTotalOf(pile DiscardPile) int {
	if pile.AttackTotal == nil {
		return 0
	}
	return *pile.AttackTotal
}

// appendHand returns a new hand slice; hands are shared across state
// values and must never be appended to in place.
func appendHand(hand []string, tokens ...string) []string {
	next := make([]string, 0, len(hand)+len(tokens))
	next = append(next, hand...)
	next = append(next, tokens...)
	return next
}
