package domain

import (
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch st := BookingStatus(s); st {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return st, true
	default:
		return "", false
	}
}

// Booking is a time-boxed reservation hold on a room. It is created PENDING
// with an expiry deadline, becomes CONFIRMED on successful payment and
// CANCELLED on payment failure or hold expiry.
type Booking struct {
	ID         int64         `json:"id"`
	RoomID     int64         `json:"room_id"`
	UserID     int64         `json:"user_id"`
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	TotalCents int64         `json:"total_cents"`
	Status     BookingStatus `json:"status"`
	ExpiresAt  time.Time     `json:"expires_at"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (b *Booking) IsOwner(userID int64) bool {
	return b.UserID == userID
}

type CreateBookingRequest struct {
	RoomID   int64     `json:"room_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// BookingPatch carries the mutable booking fields. Date and price changes
// are admin-only; ownership checks live in the service layer.
type BookingPatch struct {
	Status     *BookingStatus `json:"status,omitempty"`
	CheckIn    *time.Time     `json:"check_in,omitempty"`
	CheckOut   *time.Time     `json:"check_out,omitempty"`
	TotalCents *int64         `json:"total_cents,omitempty"`
}

func (p *BookingPatch) TouchesDatesOrPrice() bool {
	return p.CheckIn != nil || p.CheckOut != nil || p.TotalCents != nil
}

// Nights returns the number of billable nights for a [checkIn, checkOut)
// stay, rounding partial days up.
func Nights(checkIn, checkOut time.Time) int64 {
	d := checkOut.Sub(checkIn)
	nights := int64(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}

// Overlaps reports whether the half-open intervals [aIn, aOut) and
// [bIn, bOut) intersect.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Status        *BookingStatus
	UserID        *int64
	RoomID        *int64
	MinCents      *int64
	MaxCents      *int64
	CheckInAfter  *time.Time
	CheckInBefore *time.Time
	Search        string
}

// DateRange is an occupied [CheckIn, CheckOut) interval of a room.
type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}
