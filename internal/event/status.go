package event

import (
	"fmt"
)

// Canonical event status enumeration. Persisted records in any other state are
// rejected rather than silently defaulted.
const (
	StatusOpen                = "open"
	StatusMatched             = "matched"
	StatusPendingConfirmation = "pending_confirmation"
	StatusConfirmed           = "confirmed"
	StatusCancelled           = "cancelled"
	StatusExpired             = "expired"
	StatusRolledBack          = "rolled_back"
)

// transitions is the single source of truth for the event lifecycle.
var transitions = map[string][]string{
	StatusOpen:                {StatusMatched, StatusPendingConfirmation, StatusExpired, StatusCancelled},
	StatusMatched:             {StatusPendingConfirmation, StatusConfirmed, StatusRolledBack, StatusExpired},
	StatusPendingConfirmation: {StatusConfirmed, StatusRolledBack, StatusExpired},
	StatusConfirmed:           {},
	StatusCancelled:           {},
	StatusExpired:             {},
	StatusRolledBack:          {},
}

// IsValidStatus reports whether s is part of the canonical enumeration.
func IsValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminalStatus reports whether no further transition is allowed from s.
func IsTerminalStatus(s string) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether moving from -> to is a legal lifecycle step.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateStoredStatus guards reads: an event persisted in an unrecognized
// state is a data error, not something to paper over with a default.
func ValidateStoredStatus(s string) error {
	if !IsValidStatus(s) {
		return fmt.Errorf("unrecognized event status %q", s)
	}
	return nil
}
