package booking

import (
	"salonbook/models"
)

// transitions is the set of legal booking status changes. Completed,
// cancelled and no-show are terminal.
var transitions = map[string][]string{
	models.BookingStatusPending:    {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed:  {models.BookingStatusInProgress, models.BookingStatusCancelled, models.BookingStatusNoShow},
	models.BookingStatusInProgress: {models.BookingStatusCompleted, models.BookingStatusNoShow},
	models.BookingStatusCompleted:  {},
	models.BookingStatusCancelled:  {},
	models.BookingStatusNoShow:     {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// Transition applies a status change to the booking or fails with
// InvalidTransitionError, leaving the booking untouched. Side effects of a
// transition (slot release, refunds, notifications) belong to the lifecycle
// manager, which only invokes them after Transition succeeds.
func Transition(b *models.Booking, to string) error {
	if !CanTransition(b.Status, to) {
		return &InvalidTransitionError{From: b.Status, To: to}
	}
	b.Status = to
	return nil
}
