package notification

import (
	"context"

	"salonbook/models"
)

// NotificationService delivers best-effort booking notifications (email/SMS
// fan-out plus an in-document notification on the user account). Errors are
// reported to the caller for logging but must never fail the booking
// operation that triggered them.
type NotificationService interface {
	BookingCreated(ctx context.Context, b *models.Booking) error
	BookingConfirmed(ctx context.Context, b *models.Booking) error
	BookingCancelled(ctx context.Context, b *models.Booking, lateCancellation bool) error
	BookingRescheduled(ctx context.Context, b *models.Booking, oldDate, oldTime string) error
	AppointmentReminder(ctx context.Context, b *models.Booking) error
}
