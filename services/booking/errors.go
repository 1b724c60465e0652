package booking

import "fmt"

// ConflictError signals that the requested interval overlaps an existing
// reservation for the same stylist-day. Recoverable: the caller should pick
// another time. Start/End describe the competing interval in minutes from
// midnight so the UI can suggest an alternative.
type ConflictError struct {
	CompetingBookingID string
	Start              int
	End                int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot conflicts with booking %s (%s-%s)",
		e.CompetingBookingID, FormatClock(e.Start), FormatClock(e.End))
}

// CapacityExceededError signals that the service is fully booked for the day.
type CapacityExceededError struct {
	ServiceID string
	Date      string
	Current   int
	Max       int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("service %s fully booked on %s (%d/%d)", e.ServiceID, e.Date, e.Current, e.Max)
}

// InvalidTransitionError signals an illegal booking status change.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal booking transition %s -> %s", e.From, e.To)
}

// NotFoundError signals an unknown booking, service or stylist id. The
// message is deliberately generic to avoid leaking other users' data.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

// AuthorizationError signals that the actor lacks permission for the
// requested operation. Surfaced generically.
type AuthorizationError struct {
	Op string
}

func (e *AuthorizationError) Error() string {
	return "not authorized"
}

// ValidationError signals malformed input (bad time format, inactive
// service, appointment outside working hours).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
