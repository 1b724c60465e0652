package booking

import (
	"context"
	"errors"
	"fmt"

	userRepo "salonbook/database/repository/user"
	"salonbook/models"
)

// ListAvailability returns the free gaps in a stylist's working hours for a
// date: the working window minus the currently reserved intervals.
func (s *DefaultLifecycleService) ListAvailability(ctx context.Context, stylistID, date string) ([]models.TimeRange, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	stylist, err := s.UserRepo.GetByID(stylistID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, &NotFoundError{Kind: "stylist", ID: stylistID}
		}
		return nil, fmt.Errorf("failed to load stylist: %w", err)
	}
	if stylist.Role != models.RoleStylist || !stylist.IsActive {
		return nil, &NotFoundError{Kind: "stylist", ID: stylistID}
	}

	hours, ok := stylist.StylistInfo.HoursFor(day)
	if !ok || !hours.IsWorking {
		return []models.TimeRange{}, nil
	}
	ws, err := ParseClock(hours.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid working hours for stylist %s: %w", stylistID, err)
	}
	we, err := ParseClock(hours.End)
	if err != nil {
		return nil, fmt.Errorf("invalid working hours for stylist %s: %w", stylistID, err)
	}

	var free []models.TimeRange
	cursor := ws
	for _, iv := range s.Slots.Query(stylistID, date) {
		if iv.End <= cursor {
			continue
		}
		if iv.Start > cursor {
			free = append(free, models.TimeRange{Start: FormatClock(cursor), End: FormatClock(min(iv.Start, we))})
		}
		cursor = iv.End
		if cursor >= we {
			break
		}
	}
	if cursor < we {
		free = append(free, models.TimeRange{Start: FormatClock(cursor), End: FormatClock(we)})
	}
	if free == nil {
		free = []models.TimeRange{}
	}
	return free, nil
}
