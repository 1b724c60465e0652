package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"salonbook/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds an asynq task that fires at the given time.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		// One reminder per booking: a re-confirmation replaces the task.
		asynq.TaskID("reminder-" + payload.BookingID),
	}
	return task, opts, nil
}

// AsynqReminderScheduler enqueues appointment reminders on the Redis-backed
// task queue. Implements the booking lifecycle's ReminderScheduler.
type AsynqReminderScheduler struct {
	Client *asynq.Client
}

func NewAsynqReminderScheduler(client *asynq.Client) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{Client: client}
}

func (s *AsynqReminderScheduler) ScheduleReminder(b *models.Booking, fireAt time.Time) error {
	payload := models.ReminderPayload{
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		StylistID:  b.StylistID,
		Title:      "Upcoming appointment",
		Body:       fmt.Sprintf("Your appointment is on %s at %s.", b.AppointmentDate, b.AppointmentTime),
		FireDate:   fireAt.Format(time.RFC3339),
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.Client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", b.ID, err)
	}
	return nil
}
