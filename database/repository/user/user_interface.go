package userRepo

import "salonbook/models"

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error

	// ListStylists returns active stylist accounts.
	ListStylists() ([]models.User, error)

	// AppendNotification records an in-document notification for a user.
	AppendNotification(userID string, notification models.Notification) error
}
