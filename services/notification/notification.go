package notification

import (
	"context"
	"fmt"
	"time"

	userRepo "salonbook/database/repository/user"
	"salonbook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultNotificationService is the production implementation. It records an
// in-document notification on the affected accounts and logs the delivery;
// the actual email/SMS gateway hangs off the same entry points.
type DefaultNotificationService struct {
	Users  userRepo.UserRepository
	Logger *zap.Logger
}

func NewDefaultNotificationService(users userRepo.UserRepository, logger *zap.Logger) *DefaultNotificationService {
	return &DefaultNotificationService{Users: users, Logger: logger}
}

func (s *DefaultNotificationService) record(userID, kind, message string, data map[string]interface{}) error {
	n := models.Notification{
		ID:        uuid.New().String(),
		Type:      kind,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := s.Users.AppendNotification(userID, n); err != nil {
		return fmt.Errorf("failed to record %s notification for user %s: %w", kind, userID, err)
	}
	s.Logger.Info("notification sent",
		zap.String("userID", userID),
		zap.String("type", kind),
		zap.String("message", message),
	)
	return nil
}

func bookingData(b *models.Booking) map[string]interface{} {
	return map[string]interface{}{
		"bookingId": b.ID,
		"date":      b.AppointmentDate,
		"time":      b.AppointmentTime,
	}
}

func (s *DefaultNotificationService) BookingCreated(ctx context.Context, b *models.Booking) error {
	msg := fmt.Sprintf("Your appointment on %s at %s has been requested.", b.AppointmentDate, b.AppointmentTime)
	if err := s.record(b.CustomerID, "booking_created", msg, bookingData(b)); err != nil {
		return err
	}
	stylistMsg := fmt.Sprintf("New booking request for %s at %s.", b.AppointmentDate, b.AppointmentTime)
	return s.record(b.StylistID, "booking_created", stylistMsg, bookingData(b))
}

func (s *DefaultNotificationService) BookingConfirmed(ctx context.Context, b *models.Booking) error {
	msg := fmt.Sprintf("Your appointment on %s at %s is confirmed.", b.AppointmentDate, b.AppointmentTime)
	return s.record(b.CustomerID, "booking_confirmed", msg, bookingData(b))
}

func (s *DefaultNotificationService) BookingCancelled(ctx context.Context, b *models.Booking, lateCancellation bool) error {
	msg := fmt.Sprintf("Appointment on %s at %s was cancelled by %s.", b.AppointmentDate, b.AppointmentTime, b.CancelledBy)
	data := bookingData(b)
	if lateCancellation {
		data["lateCancellation"] = true
		msg += " This cancellation was inside the notice window."
	}
	if err := s.record(b.CustomerID, "booking_cancelled", msg, data); err != nil {
		return err
	}
	return s.record(b.StylistID, "booking_cancelled", msg, data)
}

func (s *DefaultNotificationService) BookingRescheduled(ctx context.Context, b *models.Booking, oldDate, oldTime string) error {
	msg := fmt.Sprintf("Appointment moved from %s %s to %s %s.", oldDate, oldTime, b.AppointmentDate, b.AppointmentTime)
	if err := s.record(b.CustomerID, "booking_rescheduled", msg, bookingData(b)); err != nil {
		return err
	}
	return s.record(b.StylistID, "booking_rescheduled", msg, bookingData(b))
}

func (s *DefaultNotificationService) AppointmentReminder(ctx context.Context, b *models.Booking) error {
	msg := fmt.Sprintf("Reminder: your appointment is on %s at %s.", b.AppointmentDate, b.AppointmentTime)
	return s.record(b.CustomerID, "appointment_reminder", msg, bookingData(b))
}
