package booking

import (
	"context"
	"fmt"

	"salonbook/models"
)

// GetBooking returns a booking visible to the actor. Unauthorized access is
// reported as not-found so callers cannot enumerate other users' bookings.
func (s *DefaultLifecycleService) GetBooking(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	b, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(actor, b); err != nil {
		return nil, &NotFoundError{Kind: "booking", ID: bookingID}
	}
	return b, nil
}

// ListForCustomer returns a customer's bookings, newest first. Customers may
// only list their own.
func (s *DefaultLifecycleService) ListForCustomer(ctx context.Context, customerID string, actor Actor) ([]models.Booking, error) {
	if actor.Role != models.RoleAdmin && actor.ID != customerID {
		return nil, &AuthorizationError{Op: "list bookings"}
	}
	bookings, err := s.Repo.ListByCustomer(customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer bookings: %w", err)
	}
	return bookings, nil
}

// ListForStylist returns a stylist's bookings inside the date range.
func (s *DefaultLifecycleService) ListForStylist(ctx context.Context, stylistID string, actor Actor, fromDate, toDate string) ([]models.Booking, error) {
	if actor.Role != models.RoleAdmin && actor.ID != stylistID {
		return nil, &AuthorizationError{Op: "list bookings"}
	}
	if fromDate != "" {
		if _, err := ParseDate(fromDate); err != nil {
			return nil, err
		}
	}
	if toDate != "" {
		if _, err := ParseDate(toDate); err != nil {
			return nil, err
		}
	}
	bookings, err := s.Repo.ListByStylist(stylistID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list stylist bookings: %w", err)
	}
	return bookings, nil
}
