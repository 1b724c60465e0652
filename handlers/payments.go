package handlers

import (
	"encoding/json"
	"io"
	"math"
	"net/http"

	"salonbook/config"
	"salonbook/models"
	"salonbook/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

var supportedCurrencies = map[string]bool{"usd": true, "eur": true, "gbp": true}

// PaymentHandler fronts the card processor. It creates and inspects payment
// intents and receives processor webhooks that drive payment and refund state
// on bookings.
type PaymentHandler struct {
	Svc    booking.LifecycleService
	Logger *zap.Logger
}

func NewPaymentHandler(svc booking.LifecycleService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Logger: logger}
}

// CreatePaymentIntentHandler handles POST /api/payments/create-payment-intent.
func (h *PaymentHandler) CreatePaymentIntentHandler(c *gin.Context) {
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if !supportedCurrencies[req.Currency] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported currency, must be usd, eur or gbp"})
		return
	}
	amountCents := int64(math.Round(req.Amount * 100))
	if amountCents < 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be at least 0.50"})
		return
	}

	// The booking must exist and belong to the caller before we take money.
	b, err := h.Svc.GetBooking(c.Request.Context(), req.BookingID, actorFrom(c))
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(amountCents),
		Currency:     stripe.String(req.Currency),
		Description:  stripe.String(req.Description),
		ReceiptEmail: stripe.String(req.CustomerEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("bookingId", b.ID)

	pi, err := paymentintent.New(params)
	if err != nil {
		h.Logger.Error("payment intent creation failed", zap.String("bookingId", b.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment intent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientSecret":    pi.ClientSecret,
		"paymentIntentId": pi.ID,
	})
}

// ConfirmPaymentHandler handles POST /api/payments/confirm-payment. It checks
// the intent's status with the processor and marks the booking paid when the
// charge succeeded. The webhook does the same thing; both paths are idempotent.
func (h *PaymentHandler) ConfirmPaymentHandler(c *gin.Context) {
	var req struct {
		PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment intent not found"})
		return
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		c.JSON(http.StatusConflict, gin.H{"error": "payment has not succeeded", "status": string(pi.Status)})
		return
	}

	bookingID := pi.Metadata["bookingId"]
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment intent carries no booking reference"})
		return
	}
	if err := h.Svc.MarkPaid(c.Request.Context(), bookingID, pi.ID); err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment confirmed", "bookingId": bookingID})
}

// PaymentStatusHandler handles GET /api/payments/payment-status/:id.
func (h *PaymentHandler) PaymentStatusHandler(c *gin.Context) {
	pi, err := paymentintent.Get(c.Param("id"), nil)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment intent not found"})
		return
	}
	c.JSON(http.StatusOK, models.PaymentView{
		ID:          pi.ID,
		Amount:      float64(pi.Amount) / 100,
		Currency:    string(pi.Currency),
		Status:      string(pi.Status),
		Created:     pi.Created,
		Description: pi.Description,
	})
}

// WebhookHandler handles POST /api/payments/webhook. The signature is
// verified against the webhook secret before any event is trusted.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 65536))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}
		if bookingID := pi.Metadata["bookingId"]; bookingID != "" {
			if err := h.Svc.MarkPaid(c.Request.Context(), bookingID, pi.ID); err != nil {
				h.Logger.Error("failed to record payment", zap.String("bookingId", bookingID), zap.Error(err))
			}
		}

	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}
		if bookingID := ch.Metadata["bookingId"]; bookingID != "" {
			if err := h.Svc.ConfirmRefund(c.Request.Context(), bookingID); err != nil {
				h.Logger.Error("failed to record refund", zap.String("bookingId", bookingID), zap.Error(err))
			}
		}

	default:
		h.Logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
