package booking

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestIntervalOverlaps(t *testing.T) {
	iv := Interval{Start: 600, End: 660} // 10:00-11:00
	tests := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"identical", 600, 660, true},
		{"contained", 615, 645, true},
		{"overlap left edge", 570, 630, true},
		{"overlap right edge", 630, 690, true},
		{"back to back before", 540, 600, false},
		{"back to back after", 660, 720, false},
		{"disjoint before", 480, 540, false},
		{"disjoint after", 720, 780, false},
	}
	for _, tt := range tests {
		if got := iv.Overlaps(tt.start, tt.end); got != tt.want {
			t.Errorf("%s: Overlaps(%d, %d) = %v, want %v", tt.name, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestSlotIndexReserveConflicts(t *testing.T) {
	idx := NewSlotIndex()
	if err := idx.Reserve("sty1", "2026-09-15", 600, 660, "b1"); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	err := idx.Reserve("sty1", "2026-09-15", 630, 690, "b2")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if conflict.CompetingBookingID != "b1" {
		t.Errorf("competing booking = %s, want b1", conflict.CompetingBookingID)
	}

	// Back-to-back is allowed on both sides.
	if err := idx.Reserve("sty1", "2026-09-15", 540, 600, "b3"); err != nil {
		t.Errorf("back-to-back before failed: %v", err)
	}
	if err := idx.Reserve("sty1", "2026-09-15", 660, 720, "b4"); err != nil {
		t.Errorf("back-to-back after failed: %v", err)
	}

	// Other stylists and other days are independent.
	if err := idx.Reserve("sty2", "2026-09-15", 600, 660, "b5"); err != nil {
		t.Errorf("other stylist same slot failed: %v", err)
	}
	if err := idx.Reserve("sty1", "2026-09-16", 600, 660, "b6"); err != nil {
		t.Errorf("same stylist other day failed: %v", err)
	}
}

func TestSlotIndexQueryOrdered(t *testing.T) {
	idx := NewSlotIndex()
	for _, r := range []struct {
		start, end int
		id         string
	}{
		{720, 780, "b1"},
		{540, 600, "b2"},
		{600, 660, "b3"},
	} {
		if err := idx.Reserve("sty1", "2026-09-15", r.start, r.end, r.id); err != nil {
			t.Fatalf("reserve %s: %v", r.id, err)
		}
	}
	got := idx.Query("sty1", "2026-09-15")
	if len(got) != 3 {
		t.Fatalf("expected 3 intervals, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Start > got[i].Start {
			t.Fatalf("intervals not ordered: %+v", got)
		}
	}
}

func TestSlotIndexReleaseIdempotent(t *testing.T) {
	idx := NewSlotIndex()
	if err := idx.Reserve("sty1", "2026-09-15", 600, 660, "b1"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	idx.Release("sty1", "2026-09-15", "b1")
	idx.Release("sty1", "2026-09-15", "b1") // no-op

	if err := idx.Reserve("sty1", "2026-09-15", 600, 660, "b2"); err != nil {
		t.Fatalf("slot not freed after release: %v", err)
	}
}

func TestSlotIndexMove(t *testing.T) {
	idx := NewSlotIndex()
	if err := idx.Reserve("sty1", "2026-09-15", 600, 660, "b1"); err != nil {
		t.Fatalf("reserve b1: %v", err)
	}
	if err := idx.Reserve("sty1", "2026-09-15", 720, 780, "b2"); err != nil {
		t.Fatalf("reserve b2: %v", err)
	}

	// Conflicting move keeps the original reservation.
	if err := idx.Move("sty1", "2026-09-15", "b1", 730, 790); err == nil {
		t.Fatal("expected conflict moving onto b2")
	}
	ivs := idx.Query("sty1", "2026-09-15")
	if len(ivs) != 2 || ivs[0].BookingID != "b1" || ivs[0].Start != 600 {
		t.Fatalf("b1 not restored after failed move: %+v", ivs)
	}

	// A booking may move onto the space it currently occupies, shifted.
	if err := idx.Move("sty1", "2026-09-15", "b1", 630, 690); err != nil {
		t.Fatalf("shift within own slot failed: %v", err)
	}
	ivs = idx.Query("sty1", "2026-09-15")
	if ivs[0].Start != 630 || ivs[0].End != 690 {
		t.Fatalf("move not applied: %+v", ivs)
	}
}

func TestSlotIndexConcurrentReserve(t *testing.T) {
	idx := NewSlotIndex()

	const workers = 32
	var wg sync.WaitGroup
	errs := make([]error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = idx.Reserve("sty1", "2026-09-15", 600, 660, "b"+strconv.Itoa(i))
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("unexpected error type: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful reservation, got %d", succeeded)
	}
	if got := idx.Query("sty1", "2026-09-15"); len(got) != 1 {
		t.Fatalf("expected 1 interval in index, got %d", len(got))
	}
}
