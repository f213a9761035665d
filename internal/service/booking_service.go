package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/repository"
	"github.com/hoteler/hotel-bookings/pkg/auth"
	"github.com/hoteler/hotel-bookings/pkg/config"
	"github.com/hoteler/hotel-bookings/pkg/events"
	"github.com/hoteler/hotel-bookings/pkg/logger"
)

// BookingService is the booking lifecycle engine: conflict-checked creation
// of reservation holds, guarded mutation, and cancellation.
type BookingService interface {
	Create(ctx context.Context, principal *auth.Claims, req *domain.CreateBookingRequest) (*domain.Booking, error)
	Get(ctx context.Context, principal *auth.Claims, roomID, bookingID int64) (*domain.Booking, error)
	List(ctx context.Context, principal *auth.Claims, filter domain.BookingFilter, opts repository.ListOptions) ([]domain.Booking, int, error)
	Update(ctx context.Context, principal *auth.Claims, roomID, bookingID int64, patch domain.BookingPatch) (*domain.Booking, error)
	Delete(ctx context.Context, principal *auth.Claims, roomID, bookingID int64) error
	OccupiedRanges(ctx context.Context, roomID int64) ([]domain.DateRange, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	roomRepo    repository.RoomRepository
	bus         events.Publisher
	config      *config.Config
	now         func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	bus events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		bus:         bus,
		config:      cfg,
		now:         time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, principal *auth.Claims, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	if req.RoomID <= 0 || req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return nil, fmt.Errorf("%w: room_id, check_in and check_out are required", domain.ErrValidation)
	}

	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %d", domain.ErrNotFound, req.RoomID)
	}

	now := s.now()
	if req.CheckIn.Before(now) {
		return nil, fmt.Errorf("%w: check-in date cannot be in the past", domain.ErrInvalidRange)
	}
	if !req.CheckIn.Before(req.CheckOut) {
		return nil, fmt.Errorf("%w: check-in must be before check-out", domain.ErrInvalidRange)
	}

	totalCents := domain.Nights(req.CheckIn, req.CheckOut) * room.PriceCents
	expiresAt := now.Add(s.config.Booking.HoldTTL)

	booking, err := s.bookingRepo.CreateHeld(ctx, room.ID, principal.Sub,
		req.CheckIn, req.CheckOut, totalCents, expiresAt)
	if err != nil {
		return nil, err
	}

	event := events.BookingCreatedEvent{
		BookingID:  booking.ID,
		RoomID:     booking.RoomID,
		UserID:     booking.UserID,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		TotalCents: booking.TotalCents,
		ExpiresAt:  booking.ExpiresAt,
		CreatedAt:  booking.CreatedAt,
	}
	if err := s.bus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, principal *auth.Claims, roomID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetForRoom(ctx, bookingID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: no booking with provided id", domain.ErrNotFound)
	}
	if !principal.IsAdmin() && !booking.IsOwner(principal.Sub) {
		// Hide other users' bookings entirely.
		return nil, fmt.Errorf("%w: no booking with provided id", domain.ErrNotFound)
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, principal *auth.Claims, filter domain.BookingFilter, opts repository.ListOptions) ([]domain.Booking, int, error) {
	// Non-admins only ever see their own bookings, whatever the filter says.
	if !principal.IsAdmin() {
		filter.UserID = &principal.Sub
	}

	total, err := s.bookingRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.bookingRepo.List(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (s *bookingService) Update(ctx context.Context, principal *auth.Claims, roomID, bookingID int64, patch domain.BookingPatch) (*domain.Booking, error) {
	existing, err := s.bookingRepo.GetForRoom(ctx, bookingID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: no booking with provided id", domain.ErrNotFound)
	}
	if !principal.IsAdmin() && !existing.IsOwner(principal.Sub) {
		return nil, fmt.Errorf("%w: no booking with provided id", domain.ErrNotFound)
	}

	// Dates and price are admin-only; owners may only flip the status
	// (the self-cancellation path).
	if !principal.IsAdmin() && patch.TouchesDatesOrPrice() {
		return nil, fmt.Errorf("%w: only admins may change dates or price", domain.ErrForbidden)
	}
	if patch.Status != nil {
		if _, ok := domain.ParseBookingStatus(string(*patch.Status)); !ok {
			return nil, fmt.Errorf("%w: unknown booking status", domain.ErrValidation)
		}
		// CONFIRMED is only ever reached through a successful payment;
		// the owner-side status surface is cancellation alone.
		if !principal.IsAdmin() && *patch.Status != domain.BookingCancelled {
			return nil, fmt.Errorf("%w: bookings are confirmed through payment", domain.ErrForbidden)
		}
	}

	if patch.CheckIn != nil || patch.CheckOut != nil {
		checkIn := existing.CheckIn
		checkOut := existing.CheckOut
		if patch.CheckIn != nil {
			checkIn = *patch.CheckIn
		}
		if patch.CheckOut != nil {
			checkOut = *patch.CheckOut
		}
		if checkIn.Before(s.now()) {
			return nil, fmt.Errorf("%w: check-in date cannot be in the past", domain.ErrInvalidRange)
		}
		if !checkIn.Before(checkOut) {
			return nil, fmt.Errorf("%w: check-in must be before check-out", domain.ErrInvalidRange)
		}

		// Date changes re-run the same overlap rule as creation, excluding
		// the booking being moved.
		conflict, err := s.bookingRepo.HasOverlap(ctx, roomID, checkIn, checkOut, bookingID)
		if err != nil {
			return nil, fmt.Errorf("failed to check overlap: %w", err)
		}
		if conflict {
			return nil, fmt.Errorf("%w: room is already booked for the selected dates", domain.ErrConflict)
		}
	}

	updated, err := s.bookingRepo.Update(ctx, bookingID, patch)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status == domain.BookingCancelled && existing.Status != domain.BookingCancelled {
		event := events.BookingCanceledEvent{
			BookingID:  updated.ID,
			RoomID:     updated.RoomID,
			UserID:     updated.UserID,
			Reason:     "user_requested",
			CanceledAt: s.now(),
		}
		if principal.IsAdmin() {
			event.Reason = "admin_canceled"
		}
		if err := s.bus.Publish(ctx, events.BookingCanceled, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish booking canceled event", "error", err, "booking_id", updated.ID)
		}
	}

	return updated, nil
}

func (s *bookingService) Delete(ctx context.Context, principal *auth.Claims, roomID, bookingID int64) error {
	existing, err := s.bookingRepo.GetForRoom(ctx, bookingID, roomID)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("%w: no booking with provided id", domain.ErrNotFound)
	}
	if !principal.IsAdmin() && !existing.IsOwner(principal.Sub) {
		return fmt.Errorf("%w: no booking with provided id", domain.ErrNotFound)
	}

	if err := s.bookingRepo.Delete(ctx, bookingID, roomID); err != nil {
		return err
	}

	event := events.BookingCanceledEvent{
		BookingID:  existing.ID,
		RoomID:     existing.RoomID,
		UserID:     existing.UserID,
		Reason:     "deleted",
		CanceledAt: s.now(),
	}
	if err := s.bus.Publish(ctx, events.BookingCanceled, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking canceled event", "error", err, "booking_id", existing.ID)
	}
	return nil
}

func (s *bookingService) OccupiedRanges(ctx context.Context, roomID int64) ([]domain.DateRange, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %d", domain.ErrNotFound, roomID)
	}
	return s.bookingRepo.OccupiedRanges(ctx, roomID)
}
