package attendance

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an action does not apply to the
// current status, for example withdrawing twice.
var ErrInvalidTransition = errors.New("attendance: invalid transition")

// Action is a user-initiated attendance change.
type Action string

const (
	// ActionSignUp sets the status to signed up.
	ActionSignUp Action = "sign_up"
	// ActionWithdraw sets the status to withdrawn with a reason.
	ActionWithdraw Action = "withdraw"
)

// ParseAction validates an action name.
func ParseAction(value string) (Action, bool) {
	switch Action(value) {
	case ActionSignUp:
		return ActionSignUp, true
	case ActionWithdraw:
		return ActionWithdraw, true
	}
	return "", false
}

// NextAction returns what the single attendance button does for current:
// withdraw when signed up, sign up otherwise.
func NextAction(current Status) Action {
	if current.Kind == KindSignedUp {
		return ActionWithdraw
	}
	return ActionSignUp
}

// RequiresReason reports whether the action prompts for a free-text reason.
func (a Action) RequiresReason() bool {
	return a == ActionWithdraw
}

// Apply computes the value to store when action is taken from current.
// Signing up is allowed unless already signed up and discards any previous
// withdrawal reason. Withdrawing is allowed unless already withdrawn, so a
// player with no response may withdraw directly. The reason is kept verbatim
// and may be empty.
func Apply(current Status, action Action, reason string) (Value, error) {
	switch action {
	case ActionSignUp:
		if current.Kind == KindSignedUp {
			break
		}
		return SignedUpValue(), nil
	case ActionWithdraw:
		if current.Kind == KindWithdrawn {
			break
		}
		return WithdrawnValue(reason), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	return Value{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, current)
}
