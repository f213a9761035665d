// Package sweeper releases expired reservation holds. Bookings stay
// PENDING for a limited window after creation; once the window passes
// without a payment the room must become bookable again.
package sweeper

import (
	"context"
	"time"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/mailer"
	"github.com/hoteler/hotel-bookings/pkg/events"
	"github.com/hoteler/hotel-bookings/pkg/logger"
)

// BookingStore is the slice of the booking repository the sweeper needs.
type BookingStore interface {
	FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Booking, error)
	CancelBatch(ctx context.Context, ids []int64) (int64, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type Sweeper struct {
	bookings BookingStore
	users    UserStore
	mail     mailer.Service
	bus      events.Publisher
	interval time.Duration
	now      func() time.Time
}

func New(bookings BookingStore, users UserStore, mail mailer.Service, bus events.Publisher, interval time.Duration) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		users:    users,
		mail:     mail,
		bus:      bus,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps once immediately, then on every tick until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("Hold sweeper started", "interval", s.interval.String())

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Hold sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce isolates a sweep so a panic in one pass does not kill the loop.
func (s *Sweeper) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in hold sweeper", "error", r)
		}
	}()

	if err := s.SweepOnce(ctx); err != nil {
		logger.Error("Hold sweep failed", "error", err)
	}
}

// SweepOnce cancels every expired unpaid hold in one batch, then notifies
// the owning users. Notification failures are logged and swallowed; the
// cancellation has already committed.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	now := s.now()

	expired, err := s.bookings.FindExpiredPending(ctx, now)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(expired))
	for _, b := range expired {
		ids = append(ids, b.ID)
	}

	canceled, err := s.bookings.CancelBatch(ctx, ids)
	if err != nil {
		return err
	}
	logger.Info("Expired holds released", "matched", len(ids), "canceled", canceled)

	for _, b := range expired {
		s.notify(ctx, b, now)
	}
	return nil
}

func (s *Sweeper) notify(ctx context.Context, b domain.Booking, now time.Time) {
	if s.bus != nil {
		err := s.bus.Publish(ctx, events.BookingExpired, events.BookingExpiredEvent{
			BookingID: b.ID,
			RoomID:    b.RoomID,
			UserID:    b.UserID,
			ExpiredAt: now,
		})
		if err != nil {
			logger.Error("Failed to publish booking expired event", "booking_id", b.ID, "error", err)
		}
	}

	if s.mail == nil {
		return
	}
	user, err := s.users.FindByID(ctx, b.UserID)
	if err != nil || user == nil {
		logger.Warn("Could not load user for expiry email", "booking_id", b.ID, "user_id", b.UserID, "error", err)
		return
	}
	if err := s.mail.SendBookingExpired(user.Email, b.ID); err != nil {
		logger.Error("Failed to send expiry email", "booking_id", b.ID, "error", err)
	}
}
