package models

// PaymentIntentRequest is the payload for creating a card payment intent.
// Amount is in the major currency unit; the handler converts to cents.
type PaymentIntentRequest struct {
	BookingID     string  `json:"bookingId" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	Currency      string  `json:"currency" binding:"required"`
	Description   string  `json:"description" binding:"required,min=3"`
	CustomerEmail string  `json:"customerEmail" binding:"required,email"`
}

// PaymentView is the client-facing shape of a payment intent.
type PaymentView struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	Created     int64   `json:"created"`
	Description string  `json:"description,omitempty"`
}
