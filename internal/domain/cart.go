package domain

import (
	"fmt"
	"time"
)

// CartItem is a pre-booking draft. It is never conflict-checked; turning it
// into a reservation goes through booking creation.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	RoomID    int64     `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Adults    int       `json:"adults"`
	Children  int       `json:"children"`
	Services  []string  `json:"services"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CartItemRequest struct {
	RoomID   int64     `json:"room_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Adults   int       `json:"adults"`
	Children int       `json:"children"`
	Services []string  `json:"services"`
}

func (r *CartItemRequest) Validate() error {
	if r.RoomID <= 0 || r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return fmt.Errorf("%w: room_id, check_in and check_out are required", ErrValidation)
	}
	if !r.CheckIn.Before(r.CheckOut) {
		return fmt.Errorf("%w: check-in must be before check-out", ErrInvalidRange)
	}
	if r.Adults < 1 {
		return fmt.Errorf("%w: at least one adult is required", ErrValidation)
	}
	if r.Children < 0 {
		return fmt.Errorf("%w: children cannot be negative", ErrValidation)
	}
	return nil
}

type CartItemPatch struct {
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Adults   *int       `json:"adults,omitempty"`
	Children *int       `json:"children,omitempty"`
	Services *[]string  `json:"services,omitempty"`
}

func (p *CartItemPatch) Validate() error {
	if p.CheckIn != nil && p.CheckOut != nil && !p.CheckIn.Before(*p.CheckOut) {
		return fmt.Errorf("%w: check-in must be before check-out", ErrInvalidRange)
	}
	if p.Adults != nil && *p.Adults < 1 {
		return fmt.Errorf("%w: at least one adult is required", ErrValidation)
	}
	if p.Children != nil && *p.Children < 0 {
		return fmt.Errorf("%w: children cannot be negative", ErrValidation)
	}
	return nil
}
