package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "salonbook/database/repository/booking"
	serviceRepo "salonbook/database/repository/service"
	userRepo "salonbook/database/repository/user"
	"salonbook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking validates, checks capacity and conflicts, and persists a new
// pending booking. Steps in order: HH:MM + working-hours validation, capacity
// check for (service, date), conflict check for (stylist, date, interval),
// then persist and reserve. Any failure after a reservation compensates by
// releasing what was taken.
func (s *DefaultLifecycleService) CreateBooking(ctx context.Context, customerID string, req models.CreateBookingRequest) (*models.Booking, error) {
	return s.create(ctx, customerID, req, req.Date, "")
}

func (s *DefaultLifecycleService) create(ctx context.Context, customerID string, req models.CreateBookingRequest, date, parentID string) (*models.Booking, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	start, err := ParseClock(req.Time)
	if err != nil {
		return nil, err
	}

	svc, err := s.ServiceRepo.GetByID(req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			return nil, &NotFoundError{Kind: "service", ID: req.ServiceID}
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if !svc.IsActive {
		return nil, &ValidationError{Message: "service is not currently bookable"}
	}
	end := start + svc.Duration

	stylist, err := s.UserRepo.GetByID(req.StylistID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, &NotFoundError{Kind: "stylist", ID: req.StylistID}
		}
		return nil, fmt.Errorf("failed to load stylist: %w", err)
	}
	if stylist.Role != models.RoleStylist || !stylist.IsActive {
		return nil, &NotFoundError{Kind: "stylist", ID: req.StylistID}
	}
	if err := checkWorkingHours(stylist, day, start, end); err != nil {
		return nil, err
	}

	if AppointmentStart(day, start).Before(s.now()) {
		return nil, &ValidationError{Message: "appointment time is in the past"}
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCash
	}
	switch method {
	case models.PaymentMethodCash, models.PaymentMethodMobileMoney,
		models.PaymentMethodCard, models.PaymentMethodBankTransfer:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("unsupported payment method %q", method)}
	}

	// Capacity first, then the slot. The check-and-increment is atomic per
	// (service, date); the conflict check and reservation are atomic per
	// (stylist, date).
	if err := s.Capacity.CheckAndReserve(svc.ID, date, svc.MaxBookingsPerDay); err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:               uuid.New().String(),
		CustomerID:       customerID,
		StylistID:        req.StylistID,
		ServiceID:        svc.ID,
		AppointmentDate:  date,
		AppointmentTime:  FormatClock(start),
		Duration:         svc.Duration,
		TotalPrice:       svc.Price,
		Status:           models.BookingStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		PaymentMethod:    method,
		SpecialRequests:  req.SpecialRequests,
		Notes:            req.Notes,
		IsRecurring:      parentID != "" || req.IsRecurring,
		RecurringPattern: req.RecurringPattern,
		ParentBooking:    parentID,
	}

	if err := s.Slots.Reserve(req.StylistID, date, start, end, b.ID); err != nil {
		s.Capacity.Release(svc.ID, date)
		return nil, err
	}

	if err := s.Repo.Create(b); err != nil {
		s.Slots.Release(req.StylistID, date, b.ID)
		s.Capacity.Release(svc.ID, date)
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	if err := s.Notifier.BookingCreated(ctx, b); err != nil {
		zap.L().Warn("booking created notification failed", zap.String("bookingID", b.ID), zap.Error(err))
	}
	return b, nil
}

// CancelBooking applies the cancellation transition, releases the slot and
// capacity, and triggers the refund workflow when the booking was paid.
// A duplicate cancellation fails with InvalidTransitionError before any side
// effect, so a second refund can never be emitted.
func (s *DefaultLifecycleService) CancelBooking(ctx context.Context, bookingID string, actor Actor, reason string) (*models.Booking, error) {
	b, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(actor, b); err != nil {
		return nil, err
	}

	if err := Transition(b, models.BookingStatusCancelled); err != nil {
		return nil, err
	}
	now := s.now()
	b.CancellationReason = reason
	b.CancelledBy = cancelledBy(actor)
	b.CancellationDate = &now

	// Refund request before persisting so the refund reference lands in the
	// same write. Idempotent: skipped if a refund was already requested, and
	// the processor keys the request by booking id.
	if b.PaymentStatus == models.PaymentStatusPaid && b.RefundID == "" {
		refundID, confirmed, err := s.Payments.RequestRefund(ctx, b)
		if err != nil {
			zap.L().Error("refund request failed", zap.String("bookingID", b.ID), zap.Error(err))
		} else {
			b.RefundID = refundID
			if confirmed {
				b.PaymentStatus = models.PaymentStatusRefunded
			}
		}
	}

	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to persist cancellation: %w", err)
	}

	s.Slots.Release(b.StylistID, b.AppointmentDate, b.ID)
	s.Capacity.Release(b.ServiceID, b.AppointmentDate)

	late := s.isLateCancellation(b, now)
	if err := s.Notifier.BookingCancelled(ctx, b, late); err != nil {
		zap.L().Warn("cancellation notification failed", zap.String("bookingID", b.ID), zap.Error(err))
	}
	return b, nil
}

// RescheduleBooking atomically moves a booking to a new slot: the booking
// either ends in the new slot or remains unchanged in the old one, never
// slotless and never double-booked. Same-day moves happen under a single
// stylist-day lock; cross-day moves reserve the new slot before releasing
// the old one (compensating-action pattern).
func (s *DefaultLifecycleService) RescheduleBooking(ctx context.Context, bookingID string, actor Actor, newDate, newTime string) (*models.Booking, error) {
	b, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(actor, b); err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusPending && b.Status != models.BookingStatusConfirmed {
		return nil, &ValidationError{Message: "only pending or confirmed bookings can be rescheduled"}
	}

	day, err := ParseDate(newDate)
	if err != nil {
		return nil, err
	}
	start, err := ParseClock(newTime)
	if err != nil {
		return nil, err
	}
	end := start + b.Duration

	stylist, err := s.UserRepo.GetByID(b.StylistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stylist: %w", err)
	}
	if err := checkWorkingHours(stylist, day, start, end); err != nil {
		return nil, err
	}
	if AppointmentStart(day, start).Before(s.now()) {
		return nil, &ValidationError{Message: "appointment time is in the past"}
	}

	oldDate, oldTime := b.AppointmentDate, b.AppointmentTime
	dateChanged := newDate != oldDate

	if dateChanged {
		svc, err := s.ServiceRepo.GetByID(b.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to load service: %w", err)
		}
		if err := s.Capacity.CheckAndReserve(b.ServiceID, newDate, svc.MaxBookingsPerDay); err != nil {
			return nil, err
		}
		if err := s.Slots.Reserve(b.StylistID, newDate, start, end, b.ID); err != nil {
			s.Capacity.Release(b.ServiceID, newDate)
			return nil, err
		}
	} else {
		if err := s.Slots.Move(b.StylistID, oldDate, b.ID, start, end); err != nil {
			return nil, err
		}
	}

	b.AppointmentDate = newDate
	b.AppointmentTime = FormatClock(start)

	if err := s.Repo.Update(b); err != nil {
		// Roll the in-memory state back to the old slot.
		if dateChanged {
			s.Slots.Release(b.StylistID, newDate, b.ID)
			s.Capacity.Release(b.ServiceID, newDate)
		} else {
			oldStart, _ := ParseClock(oldTime)
			if moveErr := s.Slots.Move(b.StylistID, oldDate, b.ID, oldStart, oldStart+b.Duration); moveErr != nil {
				zap.L().Error("failed to restore slot after persist error",
					zap.String("bookingID", b.ID), zap.Error(moveErr))
			}
		}
		b.AppointmentDate = oldDate
		b.AppointmentTime = oldTime
		return nil, fmt.Errorf("failed to persist reschedule: %w", err)
	}

	if dateChanged {
		s.Slots.Release(b.StylistID, oldDate, b.ID)
		s.Capacity.Release(b.ServiceID, oldDate)
	}

	if err := s.Notifier.BookingRescheduled(ctx, b, oldDate, oldTime); err != nil {
		zap.L().Warn("reschedule notification failed", zap.String("bookingID", b.ID), zap.Error(err))
	}
	return b, nil
}

// MarkConfirmed moves a pending booking to confirmed and schedules the
// appointment reminder.
func (s *DefaultLifecycleService) MarkConfirmed(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	b, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(actor, b); err != nil {
		return nil, err
	}
	if err := Transition(b, models.BookingStatusConfirmed); err != nil {
		return nil, err
	}

	if fireAt, ok := s.reminderTime(b); ok {
		b.ReminderDate = &fireAt
	}
	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to persist confirmation: %w", err)
	}

	if b.ReminderDate != nil && s.Reminder != nil {
		if err := s.Reminder.ScheduleReminder(b, *b.ReminderDate); err != nil {
			zap.L().Warn("failed to schedule reminder", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	if err := s.Notifier.BookingConfirmed(ctx, b); err != nil {
		zap.L().Warn("confirmation notification failed", zap.String("bookingID", b.ID), zap.Error(err))
	}
	return b, nil
}

// MarkInProgress moves a confirmed booking to in-progress.
func (s *DefaultLifecycleService) MarkInProgress(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	b, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(actor, b); err != nil {
		return nil, err
	}
	if err := Transition(b, models.BookingStatusInProgress); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to persist status change: %w", err)
	}
	return b, nil
}

// MarkCompleted finishes an in-progress booking. The slot stays consumed;
// the booking stops counting against daily capacity and rating unlocks.
func (s *DefaultLifecycleService) MarkCompleted(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	b, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(actor, b); err != nil {
		return nil, err
	}
	if err := Transition(b, models.BookingStatusCompleted); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to persist completion: %w", err)
	}
	s.Capacity.Release(b.ServiceID, b.AppointmentDate)
	return b, nil
}

// MarkNoShow records a customer absence. The slot is released and the
// payment is forfeited: no refund.
func (s *DefaultLifecycleService) MarkNoShow(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	b, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(actor, b); err != nil {
		return nil, err
	}
	if err := Transition(b, models.BookingStatusNoShow); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to persist no-show: %w", err)
	}
	s.Slots.Release(b.StylistID, b.AppointmentDate, b.ID)
	s.Capacity.Release(b.ServiceID, b.AppointmentDate)
	return b, nil
}

// RateBooking records a rating and review, permitted only once the booking
// is completed. The service's aggregate rating is updated best-effort.
func (s *DefaultLifecycleService) RateBooking(ctx context.Context, bookingID string, actor Actor, rating int, review string) (*models.Booking, error) {
	b, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && actor.ID != b.CustomerID {
		return nil, &AuthorizationError{Op: "rate"}
	}
	if b.Status != models.BookingStatusCompleted {
		return nil, &ValidationError{Message: "only completed bookings can be rated"}
	}
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Message: "rating must be between 1 and 5"}
	}

	now := s.now()
	b.Rating = rating
	b.Review = review
	b.ReviewDate = &now
	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to persist rating: %w", err)
	}

	if svc, err := s.ServiceRepo.GetByID(b.ServiceID); err == nil {
		total := float64(svc.TotalReviews)
		svc.Rating = (svc.Rating*total + float64(rating)) / (total + 1)
		svc.TotalReviews++
		if err := s.ServiceRepo.Update(svc); err != nil {
			zap.L().Warn("failed to update service rating", zap.String("serviceID", svc.ID), zap.Error(err))
		}
	}
	return b, nil
}

// MarkPaid records a successful charge, driven by the payment webhook.
func (s *DefaultLifecycleService) MarkPaid(ctx context.Context, bookingID, paymentIntentID string) error {
	b, err := s.load(bookingID)
	if err != nil {
		return err
	}
	if b.PaymentStatus == models.PaymentStatusPaid || b.PaymentStatus == models.PaymentStatusRefunded {
		return nil
	}
	b.PaymentStatus = models.PaymentStatusPaid
	b.PaymentIntentID = paymentIntentID

	// A charge can settle after the booking was already cancelled. The money
	// goes straight back: request the refund now so the reference lands in
	// the same write that records the payment.
	if b.Status == models.BookingStatusCancelled && b.RefundID == "" {
		refundID, confirmed, err := s.Payments.RequestRefund(ctx, b)
		if err != nil {
			zap.L().Error("refund request failed", zap.String("bookingID", b.ID), zap.Error(err))
		} else {
			b.RefundID = refundID
			if confirmed {
				b.PaymentStatus = models.PaymentStatusRefunded
			}
		}
	}

	if err := s.Repo.Update(b); err != nil {
		return fmt.Errorf("failed to persist payment: %w", err)
	}
	return nil
}

// ConfirmRefund finalizes an asynchronous refund, driven by the payment
// webhook. Idempotent per booking id.
func (s *DefaultLifecycleService) ConfirmRefund(ctx context.Context, bookingID string) error {
	b, err := s.load(bookingID)
	if err != nil {
		return err
	}
	if b.PaymentStatus == models.PaymentStatusRefunded {
		return nil
	}
	b.PaymentStatus = models.PaymentStatusRefunded
	if err := s.Repo.Update(b); err != nil {
		return fmt.Errorf("failed to persist refund confirmation: %w", err)
	}
	return nil
}

// --- helpers ---

func (s *DefaultLifecycleService) load(bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Kind: "booking", ID: bookingID}
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return b, nil
}

// authorizeAccess permits the owning customer, the owning stylist and admins.
func (s *DefaultLifecycleService) authorizeAccess(actor Actor, b *models.Booking) error {
	if actor.Role == models.RoleAdmin || actor.ID == b.CustomerID || actor.ID == b.StylistID {
		return nil
	}
	return &AuthorizationError{}
}

// authorizeManage permits the owning stylist and admins: confirmation,
// start, completion and no-show decisions belong to the salon side.
func (s *DefaultLifecycleService) authorizeManage(actor Actor, b *models.Booking) error {
	if actor.Role == models.RoleAdmin || (actor.Role == models.RoleStylist && actor.ID == b.StylistID) {
		return nil
	}
	return &AuthorizationError{}
}

func cancelledBy(actor Actor) string {
	switch actor.Role {
	case models.RoleCustomer:
		return models.CancelledByCustomer
	case models.RoleStylist:
		return models.CancelledByStylist
	case models.RoleAdmin:
		if actor.ID == SystemActor.ID {
			return models.CancelledBySystem
		}
		return models.CancelledByAdmin
	default:
		return models.CancelledBySystem
	}
}

// isLateCancellation reports whether the cancellation happened inside the
// notice window before the appointment. Flagged for notification only; no
// numeric penalty is applied.
func (s *DefaultLifecycleService) isLateCancellation(b *models.Booking, at time.Time) bool {
	day, err := ParseDate(b.AppointmentDate)
	if err != nil {
		return false
	}
	start, err := ParseClock(b.AppointmentTime)
	if err != nil {
		return false
	}
	return AppointmentStart(day, start).Sub(at) < s.noticeWindow()
}

func (s *DefaultLifecycleService) reminderTime(b *models.Booking) (time.Time, bool) {
	day, err := ParseDate(b.AppointmentDate)
	if err != nil {
		return time.Time{}, false
	}
	start, err := ParseClock(b.AppointmentTime)
	if err != nil {
		return time.Time{}, false
	}
	fireAt := AppointmentStart(day, start).Add(-s.reminderLead())
	if fireAt.Before(s.now()) {
		return time.Time{}, false
	}
	return fireAt, true
}

// checkWorkingHours verifies the interval lies within the stylist's working
// window for that weekday.
func checkWorkingHours(stylist *models.User, day time.Time, start, end int) error {
	hours, ok := stylist.StylistInfo.HoursFor(day)
	if !ok || !hours.IsWorking {
		return &ValidationError{Message: "stylist does not work on the requested day"}
	}
	ws, err := ParseClock(hours.Start)
	if err != nil {
		return fmt.Errorf("invalid working hours for stylist %s: %w", stylist.ID, err)
	}
	we, err := ParseClock(hours.End)
	if err != nil {
		return fmt.Errorf("invalid working hours for stylist %s: %w", stylist.ID, err)
	}
	if start < ws || end > we {
		return &ValidationError{Message: fmt.Sprintf(
			"appointment must fall within working hours %s-%s", hours.Start, hours.End)}
	}
	return nil
}
