package booking

import (
	"fmt"
	"regexp"
	"time"
)

const dateLayout = "2006-01-02"

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock converts an "HH:MM" 24-hour string to minutes from midnight.
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, &ValidationError{Message: fmt.Sprintf("invalid time format %q, expected HH:MM", s)}
	}
	var h, min int
	fmt.Sscanf(m[1], "%d", &h)
	fmt.Sscanf(m[2], "%d", &min)
	return h*60 + min, nil
}

// FormatClock converts minutes from midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate validates a "YYYY-MM-DD" calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s)}
	}
	return t, nil
}

// AppointmentStart combines a date and a start minute into a point in time.
func AppointmentStart(date time.Time, startMinute int) time.Time {
	return date.Add(time.Duration(startMinute) * time.Minute)
}
