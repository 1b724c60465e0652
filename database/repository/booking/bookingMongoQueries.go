package bookingRepo

import (
	"fmt"
	"time"

	"salonbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListByCustomer returns a customer's bookings, newest appointment first.
func (r *MongoBookingRepo) ListByCustomer(customerID string) ([]models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "appointmentDate", Value: -1},
		{Key: "appointmentTime", Value: -1},
	})
	cursor, err := r.coll.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// ListByStylist returns a stylist's bookings within [fromDate, toDate],
// ordered by appointment date and time. Empty bounds are open-ended.
func (r *MongoBookingRepo) ListByStylist(stylistID, fromDate, toDate string) ([]models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"stylistId": stylistID}
	dateRange := bson.M{}
	if fromDate != "" {
		dateRange["$gte"] = fromDate
	}
	if toDate != "" {
		dateRange["$lte"] = toDate
	}
	if len(dateRange) > 0 {
		filter["appointmentDate"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "appointmentDate", Value: 1},
		{Key: "appointmentTime", Value: 1},
	})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for stylist %s: %w", stylistID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// ListActive returns every booking that still reserves its slot.
func (r *MongoBookingRepo) ListActive() ([]models.Booking, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"status": bson.M{"$in": models.ActiveStatuses}})
	if err != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode active bookings: %w", err)
	}
	return bookings, nil
}

// CountActiveForService counts active bookings for a service on a date.
func (r *MongoBookingRepo) CountActiveForService(serviceID, date string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{
		"serviceId":       serviceID,
		"appointmentDate": date,
		"status":          bson.M{"$in": models.ActiveStatuses},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings for service %s on %s: %w", serviceID, date, err)
	}
	return count, nil
}

// CustomerStats aggregates dashboard figures for a customer.
func (r *MongoBookingRepo) CustomerStats(customerID, today string) (*models.DashboardStats, error) {
	return r.stats(bson.M{"customerId": customerID}, today, "totalSpent")
}

// StylistStats aggregates dashboard figures for a stylist.
func (r *MongoBookingRepo) StylistStats(stylistID, today string) (*models.DashboardStats, error) {
	return r.stats(bson.M{"stylistId": stylistID}, today, "totalEarned")
}

func (r *MongoBookingRepo) stats(match bson.M, today, sumField string) (*models.DashboardStats, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"upcoming": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$gte": bson.A{"$appointmentDate", today}},
					bson.M{"$in": bson.A{"$status", models.ActiveStatuses}},
				}}, 1, 0}}},
			"completed": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.BookingStatusCompleted}}, 1, 0}}},
			"cancelled": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.BookingStatusCancelled}}, 1, 0}}},
			"amount": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$paymentStatus", models.PaymentStatusPaid}},
				"$totalPrice", 0}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking stats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total     int64   `bson:"total"`
		Upcoming  int64   `bson:"upcoming"`
		Completed int64   `bson:"completed"`
		Cancelled int64   `bson:"cancelled"`
		Amount    float64 `bson:"amount"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode booking stats: %w", err)
	}

	stats := &models.DashboardStats{}
	if len(results) > 0 {
		stats.TotalBookings = results[0].Total
		stats.UpcomingBookings = results[0].Upcoming
		stats.CompletedBookings = results[0].Completed
		stats.CancelledBookings = results[0].Cancelled
		if sumField == "totalEarned" {
			stats.TotalEarned = results[0].Amount
		} else {
			stats.TotalSpent = results[0].Amount
		}
	}
	return stats, nil
}
