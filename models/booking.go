package models

import "time"

// Booking statuses. Terminal statuses have no further legal transitions.
const (
	BookingStatusPending    = "pending"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusInProgress = "in-progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
	BookingStatusNoShow     = "no-show"
)

// Payment statuses. Evolves independently of the booking status but is
// constrained by it (cancelling a paid booking triggers a refund).
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
)

// Actors that may cancel a booking.
const (
	CancelledByCustomer = "customer"
	CancelledByStylist  = "stylist"
	CancelledByAdmin    = "admin"
	CancelledBySystem   = "system"
)

// Recurring patterns for generated booking series.
const (
	RecurringWeekly   = "weekly"
	RecurringBiWeekly = "bi-weekly"
	RecurringMonthly  = "monthly"
)

// Booking represents one reserved appointment. Bookings are never physically
// deleted; cancellation is a status change.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	CustomerID string `bson:"customerId" json:"customerId"`
	StylistID  string `bson:"stylistId" json:"stylistId"`
	ServiceID  string `bson:"serviceId" json:"serviceId"`

	AppointmentDate string  `bson:"appointmentDate" json:"appointmentDate"` // "YYYY-MM-DD"
	AppointmentTime string  `bson:"appointmentTime" json:"appointmentTime"` // "HH:MM", 24-hour
	Duration        int     `bson:"duration" json:"duration"`               // minutes
	TotalPrice      float64 `bson:"totalPrice" json:"totalPrice"`

	Status          string `bson:"status" json:"status"`
	PaymentStatus   string `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod   string `bson:"paymentMethod" json:"paymentMethod"`
	PaymentIntentID string `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	RefundID        string `bson:"refundId,omitempty" json:"refundId,omitempty"`

	SpecialRequests string `bson:"specialRequests,omitempty" json:"specialRequests,omitempty"`
	Notes           string `bson:"notes,omitempty" json:"notes,omitempty"`

	CancellationReason string     `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancelledBy        string     `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancellationDate   *time.Time `bson:"cancellationDate,omitempty" json:"cancellationDate,omitempty"`

	ReminderSent bool       `bson:"reminderSent" json:"reminderSent"`
	ReminderDate *time.Time `bson:"reminderDate,omitempty" json:"reminderDate,omitempty"`

	Rating     int        `bson:"rating,omitempty" json:"rating,omitempty"` // 1..5, settable once completed
	Review     string     `bson:"review,omitempty" json:"review,omitempty"`
	ReviewDate *time.Time `bson:"reviewDate,omitempty" json:"reviewDate,omitempty"`

	IsRecurring      bool   `bson:"isRecurring" json:"isRecurring"`
	RecurringPattern string `bson:"recurringPattern,omitempty" json:"recurringPattern,omitempty"`
	ParentBooking    string `bson:"parentBooking,omitempty" json:"parentBooking,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ActiveStatuses are the statuses under which a booking reserves its slot and
// counts against the service's daily capacity.
var ActiveStatuses = []string{BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress}

// IsActiveStatus reports whether a booking in the given status occupies a slot.
func IsActiveStatus(status string) bool {
	for _, s := range ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}
