package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"salonbook/config"
	bookingRepo "salonbook/database/repository/booking"
	"salonbook/models"
	"salonbook/services/notification"
	"salonbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
)

// InitReminderWorker runs the async reminder worker in the background.
func InitReminderWorker(notifSvc notification.NotificationService, bookings bookingRepo.BookingRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(notifSvc, bookings))

	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(notifSvc notification.NotificationService, bookings bookingRepo.BookingRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		b, err := bookings.GetByID(p.BookingID)
		if err != nil {
			log.Printf("[ReminderHandler] booking %s not found: %v", p.BookingID, err)
			return nil
		}
		// A reminder for a booking that no longer holds its slot is dropped.
		if !models.IsActiveStatus(b.Status) || b.ReminderSent {
			return nil
		}

		if err := notifSvc.AppointmentReminder(ctx, b); err != nil {
			log.Printf("[ReminderHandler] failed to send reminder for booking %s: %v", b.ID, err)
			return err
		}

		if err := bookings.UpdateFields(b.ID, bson.M{"reminderSent": true}); err != nil {
			log.Printf("[ReminderHandler] failed to mark reminder sent for booking %s: %v", b.ID, err)
		}
		return nil
	}
}
