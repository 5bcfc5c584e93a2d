package engine

// IsFinished reports whether the game has ended: at most one non-winner
// remains (or none, for a single-player game).
func IsFinished(cfg *Config, st *State) bool {
	threshold := 0
	if len(cfg.PlayerIDs) > 1 {
		threshold = 1
	}
	nonWinners := 0
	for _, id := range cfg.PlayerIDs {
		if st.Players[id].WonAt == nil {
			nonWinners++
		}
	}
	return nonWinners <= threshold
}

// CanAct reports whether player may submit any action right now.
func CanAct(cfg *Config, st *State, player string) bool {
	return st.CurrentPlayer == player &&
		st.Players[player].WonAt == nil &&
		!IsFinished(cfg, st)
}

// CanDraw reports whether player may draw.
func CanDraw(cfg *Config, st *State, player string) bool {
	return CanAct(cfg, st, player) && !HasDrawnLastTime(st, player)
}

// CanPlayCards reports whether player may play n cards.
func CanPlayCards(cfg *Config, st *State, player string, n int) bool {
	return CanAct(cfg, st, player) && 0 < n && n <= MaxPlayCards
}

// CanPass reports whether player may pass.
func CanPass(cfg *Config, st *State, player string) bool {
	return CanAct(cfg, st, player) && checkPassIsAvailable(st, player) == nil
}

// HasDrawnLastTime reports whether the player's immediately preceding
// action was a Draw. Drawing does not end the turn, so this couples both
// the no-double-draw rule and Pass legality to lastUpdate.
func HasDrawnLastTime(st *State, player string) bool {
	return st.LastUpdate != nil &&
		st.LastUpdate.Player == player &&
		st.LastUpdate.Action.Type == ActionDraw
}

// checkPassIsAvailable returns nil when player may pass: no attack is
// pending and the player has already drawn this turn slot. A player must
// at least attempt a draw before giving up the turn.
func checkPassIsAvailable(st *State, player string) *RuleError {
	if st.DiscardPile.AttackTotal != nil {
		return ruleErr(ErrCodeCannotPass, "must play or draw during attack")
	}
	if !HasDrawnLastTime(st, player) {
		return ruleErr(ErrCodeCannotPass, "must draw before pass or play cards")
	}
	return nil
}
