package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	bookingRepo "salonbook/database/repository/booking"
	serviceRepo "salonbook/database/repository/service"
	userRepo "salonbook/database/repository/user"
	"salonbook/models"

	"go.mongodb.org/mongo-driver/bson"
)

// --- in-memory fakes ---

type memBookingRepo struct {
	mu    sync.Mutex
	items map[string]models.Booking

	failUpdate bool
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{items: make(map[string]models.Booking)}
}

func (r *memBookingRepo) Create(b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = *b
	return nil
}

func (r *memBookingRepo) GetByID(id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := b
	return &cp, nil
}

func (r *memBookingRepo) Update(b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate {
		return errors.New("write failed")
	}
	if _, ok := r.items[b.ID]; !ok {
		return bookingRepo.ErrNotFound
	}
	r.items[b.ID] = *b
	return nil
}

func (r *memBookingRepo) UpdateFields(id string, fields bson.M) error {
	return nil
}

func (r *memBookingRepo) ListByCustomer(customerID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.items {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) ListByStylist(stylistID, fromDate, toDate string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.items {
		if b.StylistID == stylistID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) ListActive() ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.items {
		if models.IsActiveStatus(b.Status) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) CountActiveForService(serviceID, date string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.items {
		if b.ServiceID == serviceID && b.AppointmentDate == date && models.IsActiveStatus(b.Status) {
			n++
		}
	}
	return n, nil
}

func (r *memBookingRepo) CustomerStats(customerID, today string) (*models.DashboardStats, error) {
	return &models.DashboardStats{}, nil
}

func (r *memBookingRepo) StylistStats(stylistID, today string) (*models.DashboardStats, error) {
	return &models.DashboardStats{}, nil
}

type memServiceRepo struct {
	mu    sync.Mutex
	items map[string]models.Service
}

func newMemServiceRepo() *memServiceRepo {
	return &memServiceRepo{items: make(map[string]models.Service)}
}

func (r *memServiceRepo) Create(s *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[s.ID] = *s
	return nil
}

func (r *memServiceRepo) GetByID(id string) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, serviceRepo.ErrNotFound
	}
	cp := s
	return &cp, nil
}

func (r *memServiceRepo) Update(s *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[s.ID] = *s
	return nil
}

func (r *memServiceRepo) Deactivate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return serviceRepo.ErrNotFound
	}
	s.IsActive = false
	r.items[id] = s
	return nil
}

func (r *memServiceRepo) List(filter models.ServiceFilter) ([]models.Service, int64, error) {
	return nil, 0, nil
}

func (r *memServiceRepo) ListPopular(limit int) ([]models.Service, error) {
	return nil, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	items map[string]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{items: make(map[string]models.User)}
}

func (r *memUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, userRepo.ErrNotFound
}

func (r *memUserRepo) Update(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[u.ID] = *u
	return nil
}

func (r *memUserRepo) ListStylists() ([]models.User, error) {
	return nil, nil
}

func (r *memUserRepo) AppendNotification(userID string, n models.Notification) error {
	return nil
}

type fakePayments struct {
	mu       sync.Mutex
	requests []string

	refundID  string
	confirmed bool
	err       error
}

func (p *fakePayments) RequestRefund(ctx context.Context, b *models.Booking) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", false, p.err
	}
	p.requests = append(p.requests, b.ID)
	return p.refundID, p.confirmed, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	created   int
	confirmed int
	cancelled int
	late      int
	moved     int
	reminders int
}

func (n *fakeNotifier) BookingCreated(ctx context.Context, b *models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created++
	return nil
}

func (n *fakeNotifier) BookingConfirmed(ctx context.Context, b *models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed++
	return nil
}

func (n *fakeNotifier) BookingCancelled(ctx context.Context, b *models.Booking, lateCancellation bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled++
	if lateCancellation {
		n.late++
	}
	return nil
}

func (n *fakeNotifier) BookingRescheduled(ctx context.Context, b *models.Booking, oldDate, oldTime string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.moved++
	return nil
}

func (n *fakeNotifier) AppointmentReminder(ctx context.Context, b *models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders++
	return nil
}

type fakeReminder struct {
	mu        sync.Mutex
	scheduled []time.Time
}

func (f *fakeReminder) ScheduleReminder(b *models.Booking, fireAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, fireAt)
	return nil
}

// --- fixture ---

const (
	custID    = "cust-1"
	otherCust = "cust-2"
	stylistID = "sty-1"
	svcID     = "svc-1"
	testDate  = "2026-09-15" // a Tuesday
	nextDate  = "2026-09-16"
)

var testNow = time.Date(2026, time.September, 1, 9, 0, 0, 0, time.Local)

func allWeekHours(start, end string) map[string]models.DayHours {
	hours := make(map[string]models.DayHours, 7)
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		hours[day] = models.DayHours{Start: start, End: end, IsWorking: true}
	}
	return hours
}

type fixture struct {
	svc      *DefaultLifecycleService
	bookings *memBookingRepo
	services *memServiceRepo
	users    *memUserRepo
	payments *fakePayments
	notifier *fakeNotifier
	reminder *fakeReminder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bookings: newMemBookingRepo(),
		services: newMemServiceRepo(),
		users:    newMemUserRepo(),
		payments: &fakePayments{refundID: "re_1", confirmed: true},
		notifier: &fakeNotifier{},
		reminder: &fakeReminder{},
	}
	f.svc = &DefaultLifecycleService{
		Repo:        f.bookings,
		ServiceRepo: f.services,
		UserRepo:    f.users,
		Slots:       NewSlotIndex(),
		Capacity:    NewCapacityPolicy(),
		Payments:    f.payments,
		Notifier:    f.notifier,
		Reminder:    f.reminder,
		Now:         func() time.Time { return testNow },
	}

	f.services.Create(&models.Service{
		ID: svcID, Name: "Classic Cut", Category: "hair",
		Price: 45, Duration: 60, IsActive: true, MaxBookingsPerDay: 3,
	})
	f.users.Create(&models.User{
		ID: custID, Name: "Amina", Email: "amina@example.com",
		Role: models.RoleCustomer, IsActive: true,
	})
	f.users.Create(&models.User{
		ID: stylistID, Name: "Bea", Email: "bea@example.com",
		Role: models.RoleStylist, IsActive: true,
		StylistInfo: &models.StylistInfo{WorkingHours: allWeekHours("09:00", "18:00")},
	})
	return f
}

func (f *fixture) createAt(t *testing.T, date, clock string) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), custID, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: svcID, Date: date, Time: clock,
	})
	if err != nil {
		t.Fatalf("CreateBooking(%s %s): %v", date, clock, err)
	}
	return b
}

func customer() Actor { return Actor{ID: custID, Role: models.RoleCustomer} }
func stylist() Actor  { return Actor{ID: stylistID, Role: models.RoleStylist} }

// --- tests ---

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")

	if b.Status != models.BookingStatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.Duration != 60 || b.TotalPrice != 45 {
		t.Errorf("service fields not copied: %+v", b)
	}
	if b.PaymentMethod != models.PaymentMethodCash {
		t.Errorf("default payment method = %s, want cash", b.PaymentMethod)
	}
	if got := f.svc.Capacity.Used(svcID, testDate); got != 1 {
		t.Errorf("capacity used = %d, want 1", got)
	}
	if got := len(f.svc.Slots.Query(stylistID, testDate)); got != 1 {
		t.Errorf("slot index has %d intervals, want 1", got)
	}
	if f.notifier.created != 1 {
		t.Errorf("created notifications = %d, want 1", f.notifier.created)
	}
}

func TestCreateBookingConflict(t *testing.T) {
	f := newFixture(t)
	first := f.createAt(t, testDate, "10:00")

	_, err := f.svc.CreateBooking(context.Background(), otherCust, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "10:30",
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if conflict.CompetingBookingID != first.ID {
		t.Errorf("competing booking = %s, want %s", conflict.CompetingBookingID, first.ID)
	}

	// The failed attempt must not leak capacity.
	if got := f.svc.Capacity.Used(svcID, testDate); got != 1 {
		t.Errorf("capacity used = %d after failed create, want 1", got)
	}

	// Back-to-back with the existing booking is fine.
	if _, err := f.svc.CreateBooking(context.Background(), otherCust, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "11:00",
	}); err != nil {
		t.Fatalf("back-to-back create failed: %v", err)
	}
}

func TestCreateBookingCapacityExceeded(t *testing.T) {
	f := newFixture(t)
	f.createAt(t, testDate, "09:00")
	f.createAt(t, testDate, "11:00")
	f.createAt(t, testDate, "13:00")

	_, err := f.svc.CreateBooking(context.Background(), custID, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "15:00",
	})
	var capErr *CapacityExceededError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *CapacityExceededError, got %v", err)
	}

	// Nothing was reserved for the rejected attempt.
	if got := len(f.svc.Slots.Query(stylistID, testDate)); got != 3 {
		t.Errorf("slot index has %d intervals, want 3", got)
	}

	// Another day is unaffected.
	f.createAt(t, nextDate, "09:00")
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		req  models.CreateBookingRequest
	}{
		{"bad time", models.CreateBookingRequest{StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "25:00"}},
		{"bad date", models.CreateBookingRequest{StylistID: stylistID, ServiceID: svcID, Date: "15-09-2026", Time: "10:00"}},
		{"before opening", models.CreateBookingRequest{StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "08:00"}},
		{"runs past closing", models.CreateBookingRequest{StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "17:30"}},
		{"in the past", models.CreateBookingRequest{StylistID: stylistID, ServiceID: svcID, Date: "2026-08-25", Time: "10:00"}},
		{"bad payment method", models.CreateBookingRequest{StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "10:00", PaymentMethod: "barter"}},
	}
	for _, tt := range tests {
		_, err := f.svc.CreateBooking(context.Background(), custID, tt.req)
		var v *ValidationError
		if !errors.As(err, &v) {
			t.Errorf("%s: expected *ValidationError, got %v", tt.name, err)
		}
	}

	_, err := f.svc.CreateBooking(context.Background(), custID, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: "missing", Date: testDate, Time: "10:00",
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("unknown service: expected *NotFoundError, got %v", err)
	}
	_, err = f.svc.CreateBooking(context.Background(), custID, models.CreateBookingRequest{
		StylistID: "missing", ServiceID: svcID, Date: testDate, Time: "10:00",
	})
	if !errors.As(err, &nf) {
		t.Errorf("unknown stylist: expected *NotFoundError, got %v", err)
	}
}

func TestCancelReleasesSlotAndCapacity(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")

	got, err := f.svc.CancelBooking(context.Background(), b.ID, customer(), "changed plans")
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if got.Status != models.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	if got.CancelledBy != models.CancelledByCustomer || got.CancellationReason != "changed plans" {
		t.Errorf("cancellation fields: %+v", got)
	}
	if got.CancellationDate == nil {
		t.Error("cancellation date not set")
	}
	if f.svc.Capacity.Used(svcID, testDate) != 0 {
		t.Error("capacity not released")
	}

	// The freed slot is immediately bookable again.
	if _, err := f.svc.CreateBooking(context.Background(), otherCust, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "10:00",
	}); err != nil {
		t.Fatalf("rebooking freed slot failed: %v", err)
	}
}

func TestMarkPaidAfterCancelRefundsLateCharge(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")
	if _, err := f.svc.CancelBooking(context.Background(), b.ID, customer(), ""); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if len(f.payments.requests) != 0 {
		t.Fatalf("refund requested for an unpaid booking")
	}

	// The payment webhook lands after the cancellation.
	if err := f.svc.MarkPaid(context.Background(), b.ID, "pi_late"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	got, err := f.bookings.GetByID(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.payments.requests) != 1 {
		t.Fatalf("refund requests = %d, want 1", len(f.payments.requests))
	}
	if got.RefundID != "re_1" {
		t.Errorf("refund id = %q, want re_1", got.RefundID)
	}
	if got.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("payment status = %s, want refunded", got.PaymentStatus)
	}

	// Replaying the webhook does not refund twice.
	if err := f.svc.MarkPaid(context.Background(), b.ID, "pi_late"); err != nil {
		t.Fatalf("MarkPaid replay: %v", err)
	}
	if len(f.payments.requests) != 1 {
		t.Errorf("refund requests = %d after replay, want 1", len(f.payments.requests))
	}
	after, err := f.bookings.GetByID(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("payment status = %s after replay, want refunded", after.PaymentStatus)
	}
}

func TestCancelPaidBookingRefundsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")
	if err := f.svc.MarkPaid(context.Background(), b.ID, "pi_123"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	got, err := f.svc.CancelBooking(context.Background(), b.ID, customer(), "")
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if got.RefundID != "re_1" {
		t.Errorf("refund id = %q, want re_1", got.RefundID)
	}
	if got.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("payment status = %s, want refunded", got.PaymentStatus)
	}
	if len(f.payments.requests) != 1 {
		t.Fatalf("refund requests = %d, want 1", len(f.payments.requests))
	}

	// A second cancellation fails before any side effect.
	_, err = f.svc.CancelBooking(context.Background(), b.ID, customer(), "")
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidTransitionError, got %v", err)
	}
	if len(f.payments.requests) != 1 {
		t.Errorf("refund requests = %d after duplicate cancel, want 1", len(f.payments.requests))
	}
}

func TestCancelRefundFailureStillCancels(t *testing.T) {
	f := newFixture(t)
	f.payments.err = errors.New("processor down")
	b := f.createAt(t, testDate, "10:00")
	if err := f.svc.MarkPaid(context.Background(), b.ID, "pi_123"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	got, err := f.svc.CancelBooking(context.Background(), b.ID, customer(), "")
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if got.Status != models.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	// Payment stays paid; the refund can be retried out of band.
	if got.PaymentStatus != models.PaymentStatusPaid || got.RefundID != "" {
		t.Errorf("payment fields: status=%s refund=%q", got.PaymentStatus, got.RefundID)
	}
}

func TestCancelLateFlagsNotification(t *testing.T) {
	f := newFixture(t)
	// Appointment starts 2h after "now": inside the 24h notice window.
	b := f.createAt(t, "2026-09-01", "11:00")
	if _, err := f.svc.CancelBooking(context.Background(), b.ID, customer(), ""); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if f.notifier.late != 1 {
		t.Errorf("late cancellations flagged = %d, want 1", f.notifier.late)
	}

	// Two weeks out: plenty of notice.
	b2 := f.createAt(t, testDate, "11:00")
	if _, err := f.svc.CancelBooking(context.Background(), b2.ID, customer(), ""); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if f.notifier.late != 1 {
		t.Errorf("late cancellations flagged = %d, want still 1", f.notifier.late)
	}
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")

	_, err := f.svc.CancelBooking(context.Background(), b.ID, Actor{ID: otherCust, Role: models.RoleCustomer}, "")
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthorizationError, got %v", err)
	}

	// The owning stylist and admins may cancel.
	if _, err := f.svc.CancelBooking(context.Background(), b.ID, stylist(), "double booked"); err != nil {
		t.Fatalf("stylist cancel failed: %v", err)
	}
	got, _ := f.bookings.GetByID(b.ID)
	if got.CancelledBy != models.CancelledByStylist {
		t.Errorf("cancelledBy = %s, want stylist", got.CancelledBy)
	}
}

func TestRescheduleSameDay(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")
	blocker := f.createAt(t, testDate, "14:00")

	// Conflicting target: booking keeps its old slot.
	_, err := f.svc.RescheduleBooking(context.Background(), b.ID, customer(), testDate, "14:30")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if conflict.CompetingBookingID != blocker.ID {
		t.Errorf("competing booking = %s, want %s", conflict.CompetingBookingID, blocker.ID)
	}
	ivs := f.svc.Slots.Query(stylistID, testDate)
	if len(ivs) != 2 || ivs[0].Start != 600 {
		t.Fatalf("old slot not kept after failed reschedule: %+v", ivs)
	}
	got, _ := f.bookings.GetByID(b.ID)
	if got.AppointmentTime != "10:00" {
		t.Errorf("persisted time changed on failed reschedule: %s", got.AppointmentTime)
	}

	// Free target succeeds and releases the old interval.
	moved, err := f.svc.RescheduleBooking(context.Background(), b.ID, customer(), testDate, "12:00")
	if err != nil {
		t.Fatalf("RescheduleBooking: %v", err)
	}
	if moved.AppointmentTime != "12:00" {
		t.Errorf("time = %s, want 12:00", moved.AppointmentTime)
	}
	for _, iv := range f.svc.Slots.Query(stylistID, testDate) {
		if iv.BookingID == b.ID && iv.Start != 720 {
			t.Errorf("slot not moved: %+v", iv)
		}
	}
	if f.notifier.moved != 1 {
		t.Errorf("reschedule notifications = %d, want 1", f.notifier.moved)
	}
}

func TestRescheduleCrossDay(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")

	moved, err := f.svc.RescheduleBooking(context.Background(), b.ID, customer(), nextDate, "09:00")
	if err != nil {
		t.Fatalf("RescheduleBooking: %v", err)
	}
	if moved.AppointmentDate != nextDate || moved.AppointmentTime != "09:00" {
		t.Errorf("moved to %s %s", moved.AppointmentDate, moved.AppointmentTime)
	}
	if len(f.svc.Slots.Query(stylistID, testDate)) != 0 {
		t.Error("old day still holds the interval")
	}
	if len(f.svc.Slots.Query(stylistID, nextDate)) != 1 {
		t.Error("new day is missing the interval")
	}
	if f.svc.Capacity.Used(svcID, testDate) != 0 || f.svc.Capacity.Used(svcID, nextDate) != 1 {
		t.Errorf("capacity not moved: old=%d new=%d",
			f.svc.Capacity.Used(svcID, testDate), f.svc.Capacity.Used(svcID, nextDate))
	}
}

func TestRescheduleCrossDayConflictKeepsOldSlot(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")
	f.createAt(t, nextDate, "09:00")

	_, err := f.svc.RescheduleBooking(context.Background(), b.ID, customer(), nextDate, "09:30")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if len(f.svc.Slots.Query(stylistID, testDate)) != 1 {
		t.Error("old slot lost after failed cross-day reschedule")
	}
	if f.svc.Capacity.Used(svcID, nextDate) != 1 {
		t.Errorf("capacity leaked on target day: %d", f.svc.Capacity.Used(svcID, nextDate))
	}
}

func TestReschedulePersistFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")
	f.bookings.failUpdate = true

	_, err := f.svc.RescheduleBooking(context.Background(), b.ID, customer(), testDate, "12:00")
	if err == nil {
		t.Fatal("expected persist error")
	}
	ivs := f.svc.Slots.Query(stylistID, testDate)
	if len(ivs) != 1 || ivs[0].Start != 600 {
		t.Fatalf("slot not restored after persist failure: %+v", ivs)
	}
}

func TestRescheduleOnlyPendingOrConfirmed(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")
	if _, err := f.svc.MarkConfirmed(context.Background(), b.ID, stylist()); err != nil {
		t.Fatalf("MarkConfirmed: %v", err)
	}
	if _, err := f.svc.MarkInProgress(context.Background(), b.ID, stylist()); err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}

	_, err := f.svc.RescheduleBooking(context.Background(), b.ID, customer(), testDate, "12:00")
	var v *ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestConfirmSchedulesReminder(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")

	got, err := f.svc.MarkConfirmed(context.Background(), b.ID, stylist())
	if err != nil {
		t.Fatalf("MarkConfirmed: %v", err)
	}
	if got.Status != models.BookingStatusConfirmed {
		t.Errorf("status = %s, want confirmed", got.Status)
	}
	if got.ReminderDate == nil {
		t.Fatal("reminder date not set")
	}
	want := time.Date(2026, time.September, 14, 10, 0, 0, 0, time.Local)
	if !got.ReminderDate.Equal(want) {
		t.Errorf("reminder at %v, want %v", got.ReminderDate, want)
	}
	if len(f.reminder.scheduled) != 1 {
		t.Errorf("reminders scheduled = %d, want 1", len(f.reminder.scheduled))
	}
	if f.notifier.confirmed != 1 {
		t.Errorf("confirmation notifications = %d, want 1", f.notifier.confirmed)
	}

	// Customers cannot confirm.
	b2 := f.createAt(t, testDate, "12:00")
	_, err = f.svc.MarkConfirmed(context.Background(), b2.ID, customer())
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthorizationError, got %v", err)
	}
}

func TestCompleteRequiresInProgress(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")
	if _, err := f.svc.MarkConfirmed(context.Background(), b.ID, stylist()); err != nil {
		t.Fatalf("MarkConfirmed: %v", err)
	}

	_, err := f.svc.MarkCompleted(context.Background(), b.ID, stylist())
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidTransitionError from confirmed, got %v", err)
	}

	if _, err := f.svc.MarkInProgress(context.Background(), b.ID, stylist()); err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}
	got, err := f.svc.MarkCompleted(context.Background(), b.ID, stylist())
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if got.Status != models.BookingStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	// Completion stops counting against daily capacity.
	if f.svc.Capacity.Used(svcID, testDate) != 0 {
		t.Error("capacity not released on completion")
	}
}

func TestNoShowForfeitsPayment(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")
	if err := f.svc.MarkPaid(context.Background(), b.ID, "pi_123"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if _, err := f.svc.MarkConfirmed(context.Background(), b.ID, stylist()); err != nil {
		t.Fatalf("MarkConfirmed: %v", err)
	}

	got, err := f.svc.MarkNoShow(context.Background(), b.ID, stylist())
	if err != nil {
		t.Fatalf("MarkNoShow: %v", err)
	}
	if got.Status != models.BookingStatusNoShow {
		t.Errorf("status = %s, want no-show", got.Status)
	}
	if got.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("payment status = %s, no-show must not refund", got.PaymentStatus)
	}
	if len(f.payments.requests) != 0 {
		t.Errorf("refund requests = %d, want 0", len(f.payments.requests))
	}
	if len(f.svc.Slots.Query(stylistID, testDate)) != 0 {
		t.Error("slot not released on no-show")
	}
}

func TestRateBooking(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")

	// Not completed yet.
	_, err := f.svc.RateBooking(context.Background(), b.ID, customer(), 5, "great")
	var v *ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected *ValidationError before completion, got %v", err)
	}

	f.svc.MarkConfirmed(context.Background(), b.ID, stylist())
	f.svc.MarkInProgress(context.Background(), b.ID, stylist())
	if _, err := f.svc.MarkCompleted(context.Background(), b.ID, stylist()); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	// Only the owning customer (or an admin) may rate.
	_, err = f.svc.RateBooking(context.Background(), b.ID, Actor{ID: otherCust, Role: models.RoleCustomer}, 5, "")
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthorizationError, got %v", err)
	}

	for _, bad := range []int{0, 6, -1} {
		if _, err := f.svc.RateBooking(context.Background(), b.ID, customer(), bad, ""); err == nil {
			t.Errorf("rating %d accepted", bad)
		}
	}

	got, err := f.svc.RateBooking(context.Background(), b.ID, customer(), 4, "solid cut")
	if err != nil {
		t.Fatalf("RateBooking: %v", err)
	}
	if got.Rating != 4 || got.Review != "solid cut" || got.ReviewDate == nil {
		t.Errorf("rating fields: %+v", got)
	}
	svc, _ := f.services.GetByID(svcID)
	if svc.TotalReviews != 1 || svc.Rating != 4 {
		t.Errorf("service aggregate = %.1f over %d reviews, want 4.0 over 1", svc.Rating, svc.TotalReviews)
	}
}

func TestGetBookingHidesOtherCustomers(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")

	_, err := f.svc.GetBooking(context.Background(), b.ID, Actor{ID: otherCust, Role: models.RoleCustomer})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}

	if _, err := f.svc.GetBooking(context.Background(), b.ID, customer()); err != nil {
		t.Errorf("owner access failed: %v", err)
	}
	if _, err := f.svc.GetBooking(context.Background(), b.ID, stylist()); err != nil {
		t.Errorf("stylist access failed: %v", err)
	}
	if _, err := f.svc.GetBooking(context.Background(), b.ID, Actor{ID: "root", Role: models.RoleAdmin}); err != nil {
		t.Errorf("admin access failed: %v", err)
	}
}

func TestCreateRecurringBookings(t *testing.T) {
	f := newFixture(t)

	// Block the slot two weeks out so the third occurrence fails.
	blocked := "2026-09-29"
	f.createAt(t, blocked, "10:00")

	result, err := f.svc.CreateRecurringBookings(context.Background(), custID, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "10:00",
		IsRecurring: true, RecurringPattern: models.RecurringWeekly, Occurrences: 3,
	})
	if err != nil {
		t.Fatalf("CreateRecurringBookings: %v", err)
	}
	if len(result.Created) != 2 {
		t.Fatalf("created = %d, want 2", len(result.Created))
	}
	if len(result.Failed) != 1 || result.Failed[0].Date != blocked {
		t.Fatalf("failed occurrences: %+v", result.Failed)
	}
	if !strings.Contains(result.Failed[0].Reason, "conflicts") {
		t.Errorf("failure reason %q does not mention the conflict", result.Failed[0].Reason)
	}

	if result.Parent.ParentBooking != "" {
		t.Error("parent booking must not reference itself")
	}
	child := result.Created[1]
	if child.ParentBooking != result.Parent.ID {
		t.Errorf("child parent = %s, want %s", child.ParentBooking, result.Parent.ID)
	}
	if child.AppointmentDate != "2026-09-22" {
		t.Errorf("second occurrence on %s, want 2026-09-22", child.AppointmentDate)
	}

	// Pattern and occurrence validation.
	if _, err := f.svc.CreateRecurringBookings(context.Background(), custID, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: svcID, Date: nextDate, Time: "10:00",
		RecurringPattern: "daily", Occurrences: 3,
	}); err == nil {
		t.Error("unknown pattern accepted")
	}
	if _, err := f.svc.CreateRecurringBookings(context.Background(), custID, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: svcID, Date: nextDate, Time: "10:00",
		RecurringPattern: models.RecurringWeekly, Occurrences: 1,
	}); err == nil {
		t.Error("single occurrence accepted as recurring")
	}
}

func TestListAvailability(t *testing.T) {
	f := newFixture(t)
	f.createAt(t, testDate, "10:00")
	f.createAt(t, testDate, "14:00")

	free, err := f.svc.ListAvailability(context.Background(), stylistID, testDate)
	if err != nil {
		t.Fatalf("ListAvailability: %v", err)
	}
	want := []models.TimeRange{
		{Start: "09:00", End: "10:00"},
		{Start: "11:00", End: "14:00"},
		{Start: "15:00", End: "18:00"},
	}
	if len(free) != len(want) {
		t.Fatalf("free ranges = %+v, want %+v", free, want)
	}
	for i := range want {
		if free[i] != want[i] {
			t.Errorf("range %d = %+v, want %+v", i, free[i], want[i])
		}
	}
}

func TestRebuildState(t *testing.T) {
	f := newFixture(t)
	b := f.createAt(t, testDate, "10:00")
	f.createAt(t, testDate, "12:00")

	// Fresh service instance over the same repository, as after a restart.
	restarted := &DefaultLifecycleService{
		Repo:        f.bookings,
		ServiceRepo: f.services,
		UserRepo:    f.users,
		Slots:       NewSlotIndex(),
		Capacity:    NewCapacityPolicy(),
		Payments:    f.payments,
		Notifier:    f.notifier,
		Reminder:    f.reminder,
		Now:         func() time.Time { return testNow },
	}
	if err := restarted.RebuildState(); err != nil {
		t.Fatalf("RebuildState: %v", err)
	}

	if got := len(restarted.Slots.Query(stylistID, testDate)); got != 2 {
		t.Fatalf("rebuilt index has %d intervals, want 2", got)
	}
	if got := restarted.Capacity.Used(svcID, testDate); got != 2 {
		t.Fatalf("rebuilt capacity = %d, want 2", got)
	}

	// The rebuilt index rejects the same conflicts as the original.
	_, err := restarted.CreateBooking(context.Background(), otherCust, models.CreateBookingRequest{
		StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "10:30",
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError after rebuild, got %v", err)
	}
	if conflict.CompetingBookingID != b.ID {
		t.Errorf("competing booking = %s, want %s", conflict.CompetingBookingID, b.ID)
	}
}

func TestConcurrentCreateSameSlot(t *testing.T) {
	f := newFixture(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.CreateBooking(context.Background(), custID, models.CreateBookingRequest{
				StylistID: stylistID, ServiceID: svcID, Date: testDate, Time: "10:00",
			})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 booking to win the slot, got %d", succeeded)
	}
	if got := f.svc.Capacity.Used(svcID, testDate); got != 1 {
		t.Fatalf("capacity used = %d, want 1", got)
	}
}
