package routes

import (
	"net/http"
	"time"

	"salonbook/handlers"
	"salonbook/middleware"
	"salonbook/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers account endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)

		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.Auth.MeHandler)
	}
}

// RegisterServiceRoutes registers the service catalog. Reads are public;
// catalog management is admin only.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("", hb.Services.ListServicesHandler)
		api.GET("/popular", hb.Services.PopularServicesHandler)
		api.GET("/categories", hb.Services.CategoriesHandler)
		api.GET("/:id", hb.Services.GetServiceHandler)

		admin := api.Group("")
		admin.Use(middleware.JWTAuthMiddleware(hb.UserRepo), middleware.RequireRoles(models.RoleAdmin))
		admin.POST("", hb.Services.CreateServiceHandler)
		admin.PUT("/:id", hb.Services.UpdateServiceHandler)
		admin.DELETE("/:id", hb.Services.DeleteServiceHandler)
		admin.POST("/:id/image", hb.Services.UploadServiceImageHandler)
	}
}

// RegisterStylistRoutes registers the stylist directory and availability.
func RegisterStylistRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/stylists")
	{
		api.GET("", hb.Stylists.ListStylistsHandler)
		api.GET("/:id/availability", hb.Stylists.AvailabilityHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints. Everything
// here requires authentication; per-booking authorization happens in the
// service layer.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.Bookings.CreateBookingHandler)
		api.GET("/my-bookings", hb.Bookings.MyBookingsHandler)
		api.GET("/stylist/:stylistId", hb.Bookings.StylistBookingsHandler)
		api.GET("/:id", hb.Bookings.GetBookingHandler)
		api.PUT("/:id/cancel", hb.Bookings.CancelBookingHandler)
		api.PUT("/:id/reschedule", hb.Bookings.RescheduleBookingHandler)
		api.POST("/:id/rate", hb.Bookings.RateBookingHandler)

		manage := api.Group("")
		manage.Use(middleware.RequireRoles(models.RoleStylist, models.RoleAdmin))
		manage.PUT("/:id/confirm", hb.Bookings.ConfirmBookingHandler)
		manage.PUT("/:id/start", hb.Bookings.StartBookingHandler)
		manage.PUT("/:id/complete", hb.Bookings.CompleteBookingHandler)
		manage.PUT("/:id/no-show", hb.Bookings.NoShowBookingHandler)
	}
}

// RegisterPaymentRoutes registers card processor endpoints. The webhook is
// unauthenticated; its signature check is the authentication.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.Payments.WebhookHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.UserRepo), middleware.PaymentRateLimitMiddleware())
		protected.POST("/create-payment-intent", hb.Payments.CreatePaymentIntentHandler)
		protected.POST("/confirm-payment", hb.Payments.ConfirmPaymentHandler)
		protected.GET("/payment-status/:id", hb.Payments.PaymentStatusHandler)
	}
}

// RegisterDashboardRoutes registers the stats endpoint.
func RegisterDashboardRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/dashboard")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/stats", hb.Dashboard.StatsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterServiceRoutes(r, hb)
	RegisterStylistRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterDashboardRoutes(r, hb)
}
