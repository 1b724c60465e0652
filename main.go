// File: salonbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonbook/config"
	"salonbook/cron"
	"salonbook/database"
	bookingRepoPkg "salonbook/database/repository/booking"
	serviceRepoPkg "salonbook/database/repository/service"
	userRepoPkg "salonbook/database/repository/user"
	"salonbook/handlers"
	"salonbook/middleware"
	"salonbook/routes"
	"salonbook/services/booking"
	"salonbook/services/notification"
	"salonbook/services/tasks"
	"salonbook/services/user"
	"salonbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	serviceRepo := serviceRepoPkg.NewMongoServiceRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// services.
	userService := &user.DefaultUserService{
		Repo: userRepo,
	}

	notificationService := notification.NewDefaultNotificationService(userRepo, logger)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()
	reminderScheduler := tasks.NewAsynqReminderScheduler(asynqClient)

	lifecycleService := &booking.DefaultLifecycleService{
		Repo:        bookingRepo,
		ServiceRepo: serviceRepo,
		UserRepo:    userRepo,

		Slots:    booking.NewSlotIndex(),
		Capacity: booking.NewCapacityPolicy(),

		Payments: booking.NewStripeRefundProcessor(logger),
		Notifier: notificationService,
		Reminder: reminderScheduler,

		NoticeWindow: time.Duration(config.AppConfig.CancelNoticeHours) * time.Hour,
		ReminderLead: time.Duration(config.AppConfig.ReminderLeadHours) * time.Hour,
	}

	// The slot index and capacity counters live in memory; rebuild them from
	// the active bookings before accepting traffic.
	if err := lifecycleService.RebuildState(); err != nil {
		logger.Sugar().Fatalf("main: failed to rebuild booking state: %v", err)
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: userRepo,

		Auth:      handlers.NewAuthHandler(userService, logger),
		Bookings:  handlers.NewBookingHandler(lifecycleService, logger),
		Services:  handlers.NewServiceHandler(serviceRepo, bookingRepo, cloudinaryStorageService, logger),
		Stylists:  handlers.NewStylistHandler(userService, lifecycleService, logger),
		Payments:  handlers.NewPaymentHandler(lifecycleService, logger),
		Dashboard: handlers.NewDashboardHandler(bookingRepo, logger),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Reminder worker consumes the scheduled reminder queue.
	go cron.InitReminderWorker(notificationService, bookingRepo)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
