package bookingRepo

import (
	"salonbook/models"

	"go.mongodb.org/mongo-driver/bson"
)

// BookingRepository defines persistence operations for bookings. Bookings are
// never deleted; status changes are written through Update/UpdateFields.
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id string) (*models.Booking, error)
	Update(booking *models.Booking) error
	UpdateFields(id string, fields bson.M) error

	ListByCustomer(customerID string) ([]models.Booking, error)
	ListByStylist(stylistID, fromDate, toDate string) ([]models.Booking, error)

	// ListActive returns all bookings whose status still reserves a slot,
	// used to rebuild the slot index and capacity counters at startup.
	ListActive() ([]models.Booking, error)

	// CountActiveForService counts active bookings for (service, date).
	CountActiveForService(serviceID, date string) (int64, error)

	// CustomerStats and StylistStats aggregate dashboard figures.
	CustomerStats(customerID, today string) (*models.DashboardStats, error)
	StylistStats(stylistID, today string) (*models.DashboardStats, error)
}
