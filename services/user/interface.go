package user

import "salonbook/models"

// UserService defines account operations.
type UserService interface {
	Register(req models.RegisterRequest) (*models.AuthResponse, error)
	Authenticate(email, password string) (*models.AuthResponse, error)
	GetUserByID(id string) (*models.User, error)
	ListStylists() ([]models.User, error)
}
