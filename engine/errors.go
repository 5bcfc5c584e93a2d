package engine

import "errors"

// RuleErrorCode classifies why an action was rejected.
type RuleErrorCode string

const (
	ErrCodeStartDuringGame RuleErrorCode = "start_during_game"
	ErrCodeCannotPass      RuleErrorCode = "cannot_pass"
	ErrCodeCannotDrawTwice RuleErrorCode = "cannot_draw_twice"
	ErrCodeDeckExhausted   RuleErrorCode = "deck_exhausted"
	ErrCodeCardsNotInHand  RuleErrorCode = "cards_not_in_hand"
	ErrCodeInvalidPlay     RuleErrorCode = "invalid_play"
	ErrCodeIllegalPlay     RuleErrorCode = "illegal_play"
)

// RuleError is a validation failure: the proposed action is illegal for
// the current state. It is an expected outcome surfaced to the user, in
// contrast to internal-consistency violations which panic.
type RuleError struct {
	Code   RuleErrorCode
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

func ruleErr(code RuleErrorCode, reason string) *RuleError {
	return &RuleError{Code: code, Reason: reason}
}

// AsRuleError unwraps err as a *RuleError if it is one.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
