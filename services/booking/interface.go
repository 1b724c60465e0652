package booking

import (
	"context"
	"time"

	bookingRepo "salonbook/database/repository/booking"
	serviceRepo "salonbook/database/repository/service"
	userRepo "salonbook/database/repository/user"
	"salonbook/models"
	"salonbook/services/notification"
)

// Actor is the authenticated identity performing a lifecycle operation.
type Actor struct {
	ID   string
	Role string
}

// SystemActor is used for internally triggered transitions (webhooks, jobs).
var SystemActor = Actor{ID: "system", Role: models.RoleAdmin}

// PaymentProcessor initiates refunds with the external card processor.
// Refunds are asynchronous: confirmed reports whether the processor settled
// the refund synchronously; otherwise confirmation arrives later through the
// webhook and ConfirmRefund. Implementations must be idempotent per booking.
type PaymentProcessor interface {
	RequestRefund(ctx context.Context, b *models.Booking) (refundID string, confirmed bool, err error)
}

// ReminderScheduler enqueues an appointment reminder to fire at the given
// time. Best effort: scheduling failures never fail the booking operation.
type ReminderScheduler interface {
	ScheduleReminder(b *models.Booking, fireAt time.Time) error
}

// LifecycleService owns appointment creation, conflict detection, state
// transitions and cancellation/refund policy. All slot and capacity mutation
// goes through here; nothing else writes the slot index.
type LifecycleService interface {
	CreateBooking(ctx context.Context, customerID string, req models.CreateBookingRequest) (*models.Booking, error)
	CreateRecurringBookings(ctx context.Context, customerID string, req models.CreateBookingRequest) (*models.RecurringResult, error)

	CancelBooking(ctx context.Context, bookingID string, actor Actor, reason string) (*models.Booking, error)
	RescheduleBooking(ctx context.Context, bookingID string, actor Actor, newDate, newTime string) (*models.Booking, error)
	MarkConfirmed(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error)
	MarkInProgress(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error)
	MarkCompleted(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error)
	MarkNoShow(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error)
	RateBooking(ctx context.Context, bookingID string, actor Actor, rating int, review string) (*models.Booking, error)

	GetBooking(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error)
	ListForCustomer(ctx context.Context, customerID string, actor Actor) ([]models.Booking, error)
	ListForStylist(ctx context.Context, stylistID string, actor Actor, fromDate, toDate string) ([]models.Booking, error)
	ListAvailability(ctx context.Context, stylistID, date string) ([]models.TimeRange, error)

	// Payment-processor driven transitions.
	MarkPaid(ctx context.Context, bookingID, paymentIntentID string) error
	ConfirmRefund(ctx context.Context, bookingID string) error
}

// DefaultLifecycleService implements LifecycleService.
type DefaultLifecycleService struct {
	Repo        bookingRepo.BookingRepository
	ServiceRepo serviceRepo.ServiceRepository
	UserRepo    userRepo.UserRepository

	Slots    *SlotIndex
	Capacity *CapacityPolicy

	Payments PaymentProcessor
	Notifier notification.NotificationService
	Reminder ReminderScheduler

	// NoticeWindow is the late-cancellation notice period (default 24h).
	NoticeWindow time.Duration
	// ReminderLead is how far before the appointment reminders fire.
	ReminderLead time.Duration

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultLifecycleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultLifecycleService) noticeWindow() time.Duration {
	if s.NoticeWindow > 0 {
		return s.NoticeWindow
	}
	return 24 * time.Hour
}

func (s *DefaultLifecycleService) reminderLead() time.Duration {
	if s.ReminderLead > 0 {
		return s.ReminderLead
	}
	return 24 * time.Hour
}
