package handlers

import (
	userRepoPkg "salonbook/database/repository/user"
)

// HandlerBundle carries the wired handlers into route registration.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	Auth      *AuthHandler
	Bookings  *BookingHandler
	Services  *ServiceHandler
	Stylists  *StylistHandler
	Payments  *PaymentHandler
	Dashboard *DashboardHandler
}
