package models

// CreateBookingRequest is the payload for creating a new appointment.
type CreateBookingRequest struct {
	StylistID       string `json:"stylistId" binding:"required"`
	ServiceID       string `json:"serviceId" binding:"required"`
	Date            string `json:"date" binding:"required"` // "YYYY-MM-DD"
	Time            string `json:"time" binding:"required"` // "HH:MM"
	PaymentMethod   string `json:"paymentMethod"`
	SpecialRequests string `json:"specialRequests" binding:"max=500"`
	Notes           string `json:"notes" binding:"max=1000"`

	// Recurring series generation.
	IsRecurring      bool   `json:"isRecurring"`
	RecurringPattern string `json:"recurringPattern"` // weekly, bi-weekly, monthly
	Occurrences      int    `json:"occurrences"`      // total occurrences including the first
}

// RescheduleRequest moves a booking to a new slot.
type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// CancelRequest carries the cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RateRequest submits a rating for a completed booking.
type RateRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review" binding:"max=500"`
}

// RecurringResult reports the outcome of generating a booking series. Each
// occurrence passes conflict and capacity checks independently; failures are
// reported here rather than aborting the series.
type RecurringResult struct {
	Parent  *Booking            `json:"parent"`
	Created []Booking           `json:"created"`
	Failed  []FailedOccurrence  `json:"failed,omitempty"`
}

// FailedOccurrence names one series occurrence that could not be booked.
type FailedOccurrence struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

// TimeRange is a free interval exposed by the availability endpoint.
type TimeRange struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
}

// DashboardStats summarizes bookings for the dashboard, shaped by role.
type DashboardStats struct {
	TotalBookings     int64   `json:"totalBookings"`
	UpcomingBookings  int64   `json:"upcomingBookings"`
	CompletedBookings int64   `json:"completedBookings"`
	CancelledBookings int64   `json:"cancelledBookings"`
	TotalSpent        float64 `json:"totalSpent,omitempty"`
	TotalEarned       float64 `json:"totalEarned,omitempty"`
}
