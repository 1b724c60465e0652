package booking

import (
	"context"
	"fmt"
	"time"

	"salonbook/models"
)

const maxOccurrences = 52

// CreateRecurringBookings generates a series of independent bookings from a
// pattern. Every occurrence passes capacity and conflict checks on its own;
// occurrences that cannot be booked are reported in the result instead of
// silently aborting the series. The first occurrence is the parent and later
// ones reference it through ParentBooking.
func (s *DefaultLifecycleService) CreateRecurringBookings(ctx context.Context, customerID string, req models.CreateBookingRequest) (*models.RecurringResult, error) {
	if req.Occurrences < 2 {
		return nil, &ValidationError{Message: "recurring bookings need at least 2 occurrences"}
	}
	if req.Occurrences > maxOccurrences {
		return nil, &ValidationError{Message: fmt.Sprintf("recurring bookings are limited to %d occurrences", maxOccurrences)}
	}
	stepMonths, stepDays, err := patternStep(req.RecurringPattern)
	if err != nil {
		return nil, err
	}
	firstDay, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	parent, err := s.create(ctx, customerID, req, req.Date, "")
	if err != nil {
		return nil, err
	}

	result := &models.RecurringResult{Parent: parent, Created: []models.Booking{*parent}}
	for i := 1; i < req.Occurrences; i++ {
		date := occurrenceDate(firstDay, i, stepMonths, stepDays).Format("2006-01-02")
		b, err := s.create(ctx, customerID, req, date, parent.ID)
		if err != nil {
			result.Failed = append(result.Failed, models.FailedOccurrence{
				Date:   date,
				Time:   req.Time,
				Reason: err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, *b)
	}
	return result, nil
}

// occurrenceDate computes the i-th occurrence from the series anchor. Monthly
// steps keep the anchor's day of month, clamped to the last day of shorter
// months so a Jan 31 series yields Feb 28 rather than Mar 3.
func occurrenceDate(anchor time.Time, i, stepMonths, stepDays int) time.Time {
	if stepMonths == 0 {
		return anchor.AddDate(0, 0, i*stepDays)
	}
	year, month, _ := anchor.Date()
	first := time.Date(year, month+time.Month(i*stepMonths), 1, 0, 0, 0, 0, anchor.Location())
	day := anchor.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, anchor.Location())
}

func patternStep(pattern string) (months, days int, err error) {
	switch pattern {
	case models.RecurringWeekly:
		return 0, 7, nil
	case models.RecurringBiWeekly:
		return 0, 14, nil
	case models.RecurringMonthly:
		return 1, 0, nil
	default:
		return 0, 0, &ValidationError{Message: fmt.Sprintf("unknown recurring pattern %q", pattern)}
	}
}
