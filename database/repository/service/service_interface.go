package serviceRepo

import "salonbook/models"

// ServiceRepository defines persistence operations for the service catalog.
type ServiceRepository interface {
	Create(service *models.Service) error
	GetByID(id string) (*models.Service, error)
	Update(service *models.Service) error
	// Deactivate soft-deletes a service; bookings keep referencing it.
	Deactivate(id string) error

	List(filter models.ServiceFilter) ([]models.Service, int64, error)
	ListPopular(limit int) ([]models.Service, error)
}
