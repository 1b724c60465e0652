package booking

import (
	"sort"
	"sync"
)

// Interval is one reserved half-open time range [Start, End) in minutes from
// midnight, tagged with the booking that owns it.
type Interval struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	BookingID string `json:"bookingId"`
}

// Overlaps applies the half-open overlap rule: [s1,e1) and [s2,e2) conflict
// iff s1 < e2 && s2 < e1. Back-to-back intervals (e1 == s2) do not conflict.
func (iv Interval) Overlaps(start, end int) bool {
	return iv.Start < end && start < iv.End
}

// daySlots holds the ordered reservations for one stylist-day. The intervals
// slice is kept sorted by start time and never contains overlaps.
type daySlots struct {
	mu        sync.Mutex
	intervals []Interval
}

// SlotIndex tracks reserved intervals per (stylist, date). Each stylist-day
// has its own lock, so contention on one stylist-day never blocks another;
// the outer mutex only guards map access.
type SlotIndex struct {
	mu   sync.Mutex
	days map[string]*daySlots
}

// NewSlotIndex returns an empty index.
func NewSlotIndex() *SlotIndex {
	return &SlotIndex{days: make(map[string]*daySlots)}
}

func dayKey(stylistID, date string) string {
	return stylistID + "|" + date
}

func (s *SlotIndex) day(stylistID, date string) *daySlots {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.days[dayKey(stylistID, date)]
	if !ok {
		d = &daySlots{}
		s.days[dayKey(stylistID, date)] = d
	}
	return d
}

// insertionPoint returns the index of the first interval starting at or after
// start. An interval can only conflict with its immediate neighbors.
func (d *daySlots) insertionPoint(start int) int {
	return sort.Search(len(d.intervals), func(i int) bool {
		return d.intervals[i].Start >= start
	})
}

// conflictAt returns the conflicting interval around position i, if any.
// Caller holds d.mu.
func (d *daySlots) conflictAt(i, start, end int) *Interval {
	if i > 0 && d.intervals[i-1].Overlaps(start, end) {
		return &d.intervals[i-1]
	}
	if i < len(d.intervals) && d.intervals[i].Overlaps(start, end) {
		return &d.intervals[i]
	}
	return nil
}

// insert places the interval at position i. Caller holds d.mu and has
// verified there is no conflict.
func (d *daySlots) insert(i int, iv Interval) {
	d.intervals = append(d.intervals, Interval{})
	copy(d.intervals[i+1:], d.intervals[i:])
	d.intervals[i] = iv
}

// remove deletes the interval owned by bookingID, reporting whether it was
// present. Caller holds d.mu.
func (d *daySlots) remove(bookingID string) (Interval, bool) {
	for i, iv := range d.intervals {
		if iv.BookingID == bookingID {
			d.intervals = append(d.intervals[:i], d.intervals[i+1:]...)
			return iv, true
		}
	}
	return Interval{}, false
}

// Check reports whether [start, end) is free for the stylist-day. Pure query:
// no state change. Returns a ConflictError naming the competing booking.
func (s *SlotIndex) Check(stylistID, date string, start, end int) error {
	d := s.day(stylistID, date)
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.insertionPoint(start)
	if c := d.conflictAt(i, start, end); c != nil {
		return &ConflictError{CompetingBookingID: c.BookingID, Start: c.Start, End: c.End}
	}
	return nil
}

// Reserve atomically checks and inserts [start, end) for the stylist-day.
// The check and the insert happen under the same per-day lock, so two
// concurrent reservations for overlapping intervals can never both succeed.
func (s *SlotIndex) Reserve(stylistID, date string, start, end int, bookingID string) error {
	d := s.day(stylistID, date)
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.insertionPoint(start)
	if c := d.conflictAt(i, start, end); c != nil {
		return &ConflictError{CompetingBookingID: c.BookingID, Start: c.Start, End: c.End}
	}
	d.insert(i, Interval{Start: start, End: end, BookingID: bookingID})
	return nil
}

// Release removes the interval owned by bookingID. Idempotent: releasing an
// interval that is not reserved is a no-op.
func (s *SlotIndex) Release(stylistID, date, bookingID string) {
	d := s.day(stylistID, date)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remove(bookingID)
}

// Move relocates a booking's reservation within the same stylist-day under a
// single lock: the old interval is removed, the new one attempted, and the
// old one restored if the new interval conflicts. The booking is never left
// slotless and never holds both intervals.
func (s *SlotIndex) Move(stylistID, date, bookingID string, newStart, newEnd int) error {
	d := s.day(stylistID, date)
	d.mu.Lock()
	defer d.mu.Unlock()

	old, had := d.remove(bookingID)
	i := d.insertionPoint(newStart)
	if c := d.conflictAt(i, newStart, newEnd); c != nil {
		if had {
			// The old position is guaranteed free: nothing else could take
			// it while we hold the day lock.
			j := d.insertionPoint(old.Start)
			d.insert(j, old)
		}
		return &ConflictError{CompetingBookingID: c.BookingID, Start: c.Start, End: c.End}
	}
	d.insert(i, Interval{Start: newStart, End: newEnd, BookingID: bookingID})
	return nil
}

// Query returns a copy of the current reservations for the stylist-day,
// ordered by start time.
func (s *SlotIndex) Query(stylistID, date string) []Interval {
	d := s.day(stylistID, date)
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Interval, len(d.intervals))
	copy(out, d.intervals)
	return out
}
