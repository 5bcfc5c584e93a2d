package engine

import "fmt"

// move is the directional part of a state patch: how many seats to advance
// the current-player pointer and in which direction.
type move struct {
	step      int
	clockwise bool
}

// NextSeat resolves the next current player among playerIDs.
//
// step 0 means the same player acts again (a non-attack Draw does not end
// the turn). Clockwise advances step seats forward modulo the seat count;
// counter-clockwise steps backward, wrapping with len-step-idx when the
// subtraction would underflow.
//
// current must be one of playerIDs: callers pass the remaining (non-winner)
// players, and an acting player absent from that list is an
// internal-consistency violation, so NextSeat panics rather than returning
// an error.
func NextSeat(playerIDs []string, current string, step int, clockwise bool) string {
	if step == 0 {
		return current
	}
	idx := -1
	for i, id := range playerIDs {
		if id == current {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic(fmt.Sprintf("engine: current player %q not listed in remaining players %v", current, playerIDs))
	}
	n := len(playerIDs)
	var next int
	switch {
	case clockwise:
		next = (idx + step) % n
	case step <= idx:
		next = idx - step
	default:
		next = n - step - idx
	}
	// Large multi-skip steps can leave the wrap formula out of range;
	// normalize instead of indexing out of bounds.
	next = ((next % n) + n) % n
	return playerIDs[next]
}
