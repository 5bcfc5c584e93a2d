package engine

import (
	"encoding/json"
	"fmt"
)

// ActionType tags the GameAction union.
type ActionType string

const (
	// ActionStart marks game construction. It is never a legal runtime
	// transition; Apply always rejects it.
	ActionStart ActionType = "Start"
	ActionPass  ActionType = "Pass"
	ActionDraw  ActionType = "Draw"
	ActionPlay  ActionType = "Play"
)

// Action is a player's proposed state transition. CardIDs and Color are
// meaningful only for Play actions: CardIDs names the real ids of the
// played cards and Color is the explicitly chosen pile color for Wild and
// Draw4 plays (nil otherwise).
type Action struct {
	Type    ActionType
	CardIDs []string
	Color   *Color
}

// PassAction returns a Pass action value.
func PassAction() Action { return Action{Type: ActionPass} }

// DrawAction returns a Draw action value.
func DrawAction() Action { return Action{Type: ActionDraw} }

// PlayAction returns a Play action for the given card ids. color may be
// empty for colored plays.
func PlayAction(cardIDs []string, color Color) Action {
	a := Action{Type: ActionPlay, CardIDs: cardIDs}
	if color != "" {
		a.Color = &color
	}
	return a
}

// Equal reports semantic equality; nil and empty card id lists are equal.
func (a Action) Equal(b Action) bool {
	if a.Type != b.Type || !stringsEqual(a.CardIDs, b.CardIDs) {
		return false
	}
	if a.Color == nil || b.Color == nil {
		return a.Color == nil && b.Color == nil
	}
	return *a.Color == *b.Color
}

func (a Action) String() string {
	if a.Type == ActionPlay {
		color := "-"
		if a.Color != nil {
			color = string(*a.Color)
		}
		return fmt.Sprintf("Play(%v, %s)", a.CardIDs, color)
	}
	return string(a.Type)
}

// actionJSON is the wire shape of the tagged union:
//
//	{"type":"Start"} | {"type":"Pass"} | {"type":"Draw"}
//	{"type":"Play","cardIds":[...],"color":"Red"|null}
type actionJSON struct {
	Type    ActionType `json:"type"`
	CardIDs []string   `json:"cardIds,omitempty"`
	Color   *Color     `json:"color,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	if a.Type == ActionPlay {
		ids := a.CardIDs
		if ids == nil {
			ids = []string{}
		}
		// Play always carries cardIds and an explicit (possibly null) color.
		return json.Marshal(struct {
			Type    ActionType `json:"type"`
			CardIDs []string   `json:"cardIds"`
			Color   *Color     `json:"color"`
		}{a.Type, ids, a.Color})
	}
	return json.Marshal(actionJSON{Type: a.Type})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var j actionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	switch j.Type {
	case ActionStart, ActionPass, ActionDraw, ActionPlay:
	default:
		return fmt.Errorf("unknown action type %q", j.Type)
	}
	a.Type = j.Type
	a.CardIDs = nil
	a.Color = nil
	if j.Type == ActionPlay {
		a.CardIDs = j.CardIDs
		a.Color = j.Color
	}
	return nil
}
