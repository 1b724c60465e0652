package booking

import (
	"fmt"

	"go.uber.org/zap"
)

// RebuildState derives the slot index and capacity counters from persisted
// bookings at startup. Only bookings in an active status reserve slots.
// A conflict during replay means overlapping active bookings were persisted
// by an earlier run; the later booking is logged and skipped rather than
// aborting startup.
func (s *DefaultLifecycleService) RebuildState() error {
	bookings, err := s.Repo.ListActive()
	if err != nil {
		return fmt.Errorf("failed to load active bookings for rebuild: %w", err)
	}

	for _, b := range bookings {
		start, err := ParseClock(b.AppointmentTime)
		if err != nil {
			zap.L().Warn("skipping booking with invalid time during rebuild",
				zap.String("bookingID", b.ID), zap.Error(err))
			continue
		}
		end := start + b.Duration
		if err := s.Slots.Reserve(b.StylistID, b.AppointmentDate, start, end, b.ID); err != nil {
			zap.L().Error("overlapping active booking skipped during rebuild",
				zap.String("bookingID", b.ID), zap.Error(err))
			continue
		}
		// Unlimited max: the ceiling is only enforced on new reservations.
		_ = s.Capacity.CheckAndReserve(b.ServiceID, b.AppointmentDate, 0)
	}

	zap.L().Info("slot index rebuilt", zap.Int("activeBookings", len(bookings)))
	return nil
}
