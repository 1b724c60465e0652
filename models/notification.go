package models

import "time"

// Notification is an in-document message recorded against a user account.
type Notification struct {
	ID        string                 `bson:"id" json:"id"`
	Type      string                 `bson:"type" json:"type"`
	Message   string                 `bson:"message" json:"message"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool                   `bson:"read" json:"read"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}

// ReminderPayload is the queued payload for an appointment reminder task.
type ReminderPayload struct {
	BookingID  string `json:"bookingId"`
	CustomerID string `json:"customerId"`
	StylistID  string `json:"stylistId"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	FireDate   string `json:"fireDate"`
}
