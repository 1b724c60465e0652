package booking

import (
	"testing"
	"time"
)

func TestOccurrenceDateMonthlyClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name   string
		anchor string
		i      int
		want   string
	}{
		{"31st into 30-day month", "2026-10-31", 1, "2026-11-30"},
		{"31st back onto a 31st", "2026-10-31", 2, "2026-12-31"},
		{"31st across year end", "2026-10-31", 3, "2027-01-31"},
		{"31st into february", "2026-10-31", 4, "2027-02-28"},
		{"31st into leap february", "2027-10-31", 4, "2028-02-29"},
		{"mid-month unaffected", "2026-10-15", 1, "2026-11-15"},
	}
	for _, tt := range tests {
		anchor, err := time.Parse("2006-01-02", tt.anchor)
		if err != nil {
			t.Fatal(err)
		}
		got := occurrenceDate(anchor, tt.i, 1, 0).Format("2006-01-02")
		if got != tt.want {
			t.Errorf("%s: occurrence %d of %s = %s, want %s", tt.name, tt.i, tt.anchor, got, tt.want)
		}
	}
}

func TestOccurrenceDateDaySteps(t *testing.T) {
	anchor, _ := time.Parse("2006-01-02", "2026-09-15")
	if got := occurrenceDate(anchor, 2, 0, 7).Format("2006-01-02"); got != "2026-09-29" {
		t.Errorf("weekly occurrence 2 = %s, want 2026-09-29", got)
	}
	if got := occurrenceDate(anchor, 1, 0, 14).Format("2006-01-02"); got != "2026-09-29" {
		t.Errorf("bi-weekly occurrence 1 = %s, want 2026-09-29", got)
	}
}
