package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/mailer"
	"github.com/hoteler/hotel-bookings/internal/payments"
	"github.com/hoteler/hotel-bookings/internal/repository"
	"github.com/hoteler/hotel-bookings/pkg/events"
	"github.com/hoteler/hotel-bookings/pkg/logger"
)

// EventDeduper remembers processed gateway event ids across at-least-once
// webhook deliveries. Best-effort: losing a record is safe because the
// status transitions themselves are idempotent.
type EventDeduper interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

type CreateIntentResult struct {
	ClientSecret string `json:"clientSecret"`
	PaymentID    string `json:"paymentId"`
}

type PaymentService interface {
	CreateIntent(ctx context.Context, bookingID int64) (*CreateIntentResult, error)
	// HandleWebhook verifies and applies one gateway event. Unverified
	// payloads fail closed before any state is read or written.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	roomRepo    repository.RoomRepository
	userRepo    repository.UserRepository
	gateway     payments.Gateway
	verifier    payments.WebhookVerifier
	mailer      mailer.Service
	bus         events.Publisher
	dedup       EventDeduper
	now         func() time.Time
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	gateway payments.Gateway,
	verifier payments.WebhookVerifier,
	m mailer.Service,
	bus events.Publisher,
	dedup EventDeduper,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		verifier:    verifier,
		mailer:      m,
		bus:         bus,
		dedup:       dedup,
		now:         time.Now,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, bookingID int64) (*CreateIntentResult, error) {
	if bookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingId is required", domain.ErrValidation)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking not found", domain.ErrNotFound)
	}
	switch booking.Status {
	case domain.BookingCancelled:
		return nil, fmt.Errorf("%w: cannot pay, booking hold has expired", domain.ErrValidation)
	case domain.BookingConfirmed:
		return nil, fmt.Errorf("%w: booking is already processed", domain.ErrValidation)
	}

	intent, err := s.gateway.CreateIntent(ctx, booking.TotalCents, booking.ID)
	if err != nil {
		return nil, err
	}

	if _, err := s.paymentRepo.Create(ctx, booking.ID, booking.TotalCents, "card", intent.ID); err != nil {
		return nil, err
	}

	event := events.PaymentIntentCreatedEvent{
		BookingID: booking.ID,
		IntentID:  intent.ID,
		Amount:    booking.TotalCents,
		Currency:  "usd",
	}
	if err := s.bus.Publish(ctx, events.PaymentIntentCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payment intent event", "error", err, "booking_id", booking.ID)
	}

	return &CreateIntentResult{ClientSecret: intent.ClientSecret, PaymentID: intent.ID}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.verifier.Verify(payload, signature)
	if err != nil {
		return err
	}

	if event.ID != "" && s.dedup != nil {
		fresh, err := s.dedup.SetNX(ctx, "stripe:event:"+event.ID, "1", 24*time.Hour)
		if err != nil {
			logger.WarnContext(ctx, "Webhook dedup check failed, continuing", "error", err, "event_id", event.ID)
		} else if !fresh {
			logger.InfoContext(ctx, "Duplicate webhook event ignored", "event_id", event.ID)
			return nil
		}
	}

	switch event.Type {
	case payments.EventPaymentSucceeded:
		return s.applySuccess(ctx, event)
	case payments.EventPaymentFailed:
		return s.applyFailure(ctx, event)
	default:
		// Unrecognized event types are accepted and ignored.
		logger.DebugContext(ctx, "Ignoring webhook event", "type", event.Type)
		return nil
	}
}

func (s *paymentService) applySuccess(ctx context.Context, event *payments.Event) error {
	if _, err := s.paymentRepo.UpdateStatusByStripeID(ctx, event.IntentID, domain.PaymentCompleted); err != nil {
		return fmt.Errorf("failed to complete payment: %w", err)
	}

	booking, err := s.bookingRepo.GetByID(ctx, event.BookingID)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		// The gateway charged a booking we no longer know about. Do not
		// pretend the reconciliation succeeded.
		if _, err := s.paymentRepo.UpdateStatusByStripeID(ctx, event.IntentID, domain.PaymentFailed); err != nil {
			logger.ErrorContext(ctx, "Failed to mark orphaned payment failed", "error", err, "intent_id", event.IntentID)
		}
		return fmt.Errorf("%w: booking referenced by payment was not found", domain.ErrNotFound)
	}

	confirmed, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingConfirmed)
	if err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	s.publish(ctx, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingID:   confirmed.ID,
		RoomID:      confirmed.RoomID,
		UserID:      confirmed.UserID,
		ConfirmedAt: s.now(),
	})
	s.publish(ctx, events.PaymentCaptured, events.PaymentCapturedEvent{
		BookingID:  confirmed.ID,
		IntentID:   event.IntentID,
		CapturedAt: s.now(),
	})

	s.sendConfirmationEmail(ctx, confirmed)
	return nil
}

func (s *paymentService) applyFailure(ctx context.Context, event *payments.Event) error {
	if _, err := s.paymentRepo.UpdateStatusByStripeID(ctx, event.IntentID, domain.PaymentFailed); err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	// Cancelling the booking releases the hold so the room can be rebooked.
	if _, err := s.bookingRepo.UpdateStatus(ctx, event.BookingID, domain.BookingCancelled); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.publish(ctx, events.PaymentFailed, events.PaymentFailedEvent{
		BookingID: event.BookingID,
		IntentID:  event.IntentID,
		FailedAt:  s.now(),
	})
	return nil
}

func (s *paymentService) sendConfirmationEmail(ctx context.Context, booking *domain.Booking) {
	user, err := s.userRepo.FindByID(ctx, booking.UserID)
	if err != nil || user == nil {
		logger.ErrorContext(ctx, "Failed to load user for confirmation email", "error", err, "booking_id", booking.ID)
		return
	}

	roomNumber := ""
	if room, err := s.roomRepo.GetByID(ctx, booking.RoomID); err == nil && room != nil {
		roomNumber = room.Number
	}

	if err := s.mailer.SendBookingConfirmation(user.Email, roomNumber, booking.CheckIn, booking.CheckOut, booking.TotalCents); err != nil {
		logger.ErrorContext(ctx, "Failed to send confirmation email", "error", err, "booking_id", booking.ID)
	}
}

func (s *paymentService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.bus.Publish(ctx, subject, data); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
