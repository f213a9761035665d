package domain

import (
	"fmt"
	"strings"
	"time"
)

type Room struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	Type        string    `json:"type"`
	PriceCents  int64     `json:"price_cents"` // per night
	Capacity    int       `json:"capacity"`
	IsAvailable bool      `json:"is_available"`
	Amenities   []string  `json:"amenities"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateRoomRequest struct {
	Number      string   `json:"number"`
	Type        string   `json:"type"`
	PriceCents  int64    `json:"price_cents"`
	Capacity    int      `json:"capacity"`
	IsAvailable *bool    `json:"is_available"`
	Amenities   []string `json:"amenities"`
}

func (r *CreateRoomRequest) Validate() error {
	if strings.TrimSpace(r.Number) == "" || strings.TrimSpace(r.Type) == "" {
		return fmt.Errorf("%w: room number and type are required", ErrValidation)
	}
	if r.PriceCents <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	return nil
}

type RoomPatch struct {
	Number      *string   `json:"number,omitempty"`
	Type        *string   `json:"type,omitempty"`
	PriceCents  *int64    `json:"price_cents,omitempty"`
	Capacity    *int      `json:"capacity,omitempty"`
	IsAvailable *bool     `json:"is_available,omitempty"`
	Amenities   *[]string `json:"amenities,omitempty"`
}

func (p *RoomPatch) Validate() error {
	if p.PriceCents != nil && *p.PriceCents <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if p.Capacity != nil && *p.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	return nil
}

// RoomFilter narrows room listings.
type RoomFilter struct {
	Type      string
	Available *bool
	MinCents  *int64
	MaxCents  *int64
	Search    string
}
