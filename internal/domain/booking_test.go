package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int64
	}{
		{"single night", date(2026, 3, 1), date(2026, 3, 2), 1},
		{"week", date(2026, 3, 1), date(2026, 3, 8), 7},
		{"partial day rounds up", date(2026, 3, 1), date(2026, 3, 2).Add(6 * time.Hour), 2},
		{"under a day rounds up", time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Nights(tt.checkIn, tt.checkOut); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                   string
		aIn, aOut, bIn, bOut   time.Time
		want                   bool
	}{
		{"identical", date(2026, 3, 1), date(2026, 3, 5), date(2026, 3, 1), date(2026, 3, 5), true},
		{"contained", date(2026, 3, 1), date(2026, 3, 10), date(2026, 3, 3), date(2026, 3, 5), true},
		{"partial overlap", date(2026, 3, 1), date(2026, 3, 5), date(2026, 3, 4), date(2026, 3, 8), true},
		{"back to back same day", date(2026, 3, 1), date(2026, 3, 5), date(2026, 3, 5), date(2026, 3, 8), false},
		{"disjoint", date(2026, 3, 1), date(2026, 3, 3), date(2026, 3, 10), date(2026, 3, 12), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aIn, tt.aOut, tt.bIn, tt.bOut); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// The relation is symmetric.
			if got := Overlaps(tt.bIn, tt.bOut, tt.aIn, tt.aOut); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBookingStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "CONFIRMED", "CANCELLED"} {
		if _, ok := ParseBookingStatus(valid); !ok {
			t.Errorf("ParseBookingStatus(%q) rejected a valid status", valid)
		}
	}
	for _, invalid := range []string{"", "pending", "DONE", "EXPIRED"} {
		if _, ok := ParseBookingStatus(invalid); ok {
			t.Errorf("ParseBookingStatus(%q) accepted an invalid status", invalid)
		}
	}
}

func TestBookingPatchTouchesDatesOrPrice(t *testing.T) {
	status := BookingCancelled
	if (&BookingPatch{Status: &status}).TouchesDatesOrPrice() {
		t.Error("status-only patch should not touch dates or price")
	}

	in := date(2026, 3, 1)
	if !(&BookingPatch{CheckIn: &in}).TouchesDatesOrPrice() {
		t.Error("check-in patch should touch dates")
	}
	cents := int64(5000)
	if !(&BookingPatch{TotalCents: &cents}).TouchesDatesOrPrice() {
		t.Error("price patch should touch price")
	}
}
