package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/payments"
)

// ---------- Mocks ----------

type mockUserRepo struct {
	users map[int64]*domain.User
}

func (m *mockUserRepo) Create(_ context.Context, _, _, _ string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) FindByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	return m.users[id], nil
}

type mockPaymentRepo struct {
	nextID   int64
	payments map[string]*domain.Payment // by stripe id
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{nextID: 1, payments: make(map[string]*domain.Payment)}
}

func (m *mockPaymentRepo) Create(_ context.Context, bookingID, amountCents int64, method, stripeID string) (*domain.Payment, error) {
	p := &domain.Payment{
		ID:          m.nextID,
		BookingID:   bookingID,
		AmountCents: amountCents,
		Method:      method,
		Status:      domain.PaymentPending,
		StripeID:    stripeID,
	}
	m.payments[stripeID] = p
	m.nextID++
	return p, nil
}

func (m *mockPaymentRepo) GetByBookingID(_ context.Context, bookingID int64) (*domain.Payment, error) {
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentRepo) GetByStripeID(_ context.Context, stripeID string) (*domain.Payment, error) {
	return m.payments[stripeID], nil
}

func (m *mockPaymentRepo) UpdateStatusByStripeID(_ context.Context, stripeID string, status domain.PaymentStatus) (*domain.Payment, error) {
	p := m.payments[stripeID]
	if p == nil {
		return nil, nil
	}
	p.Status = status
	return p, nil
}

type mockGateway struct {
	calls int
	err   error
}

func (m *mockGateway) CreateIntent(_ context.Context, amountCents int64, bookingID int64) (*payments.Intent, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls++
	id := fmt.Sprintf("pi_%d", bookingID)
	return &payments.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

type mockVerifier struct {
	event *payments.Event
	err   error
}

func (m *mockVerifier) Verify(_ []byte, _ string) (*payments.Event, error) {
	return m.event, m.err
}

type mockDeduper struct {
	seen map[string]bool
}

func (m *mockDeduper) SetNX(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

type mockMailer struct {
	confirmations []string
	expirations   []string
}

func (m *mockMailer) SendBookingConfirmation(toEmail, _ string, _, _ time.Time, _ int64) error {
	m.confirmations = append(m.confirmations, toEmail)
	return nil
}

func (m *mockMailer) SendBookingExpired(toEmail string, _ int64) error {
	m.expirations = append(m.expirations, toEmail)
	return nil
}

// ---------- Helpers ----------

type paymentFixture struct {
	svc         *paymentService
	bookingRepo *mockBookingRepo
	paymentRepo *mockPaymentRepo
	verifier    *mockVerifier
	mailer      *mockMailer
	bus         *mockBus
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		bookingRepo: newMockBookingRepo(),
		paymentRepo: newMockPaymentRepo(),
		verifier:    &mockVerifier{},
		mailer:      &mockMailer{},
		bus:         &mockBus{},
	}
	f.svc = &paymentService{
		paymentRepo: f.paymentRepo,
		bookingRepo: f.bookingRepo,
		roomRepo:    newMockRoomRepo(&domain.Room{ID: 1, Number: "101", PriceCents: 10000}),
		userRepo:    &mockUserRepo{users: map[int64]*domain.User{7: {ID: 7, Email: "guest@example.com"}}},
		gateway:     &mockGateway{},
		verifier:    f.verifier,
		mailer:      f.mailer,
		bus:         f.bus,
		dedup:       &mockDeduper{},
		now:         func() time.Time { return testNow },
	}
	return f
}

func (f *paymentFixture) seedBooking(status domain.BookingStatus) *domain.Booking {
	b, _ := f.bookingRepo.CreateHeld(context.Background(), 1, 7, day(10), day(12), 20000, testNow.Add(time.Hour))
	b.Status = status
	return b
}

// ---------- Tests ----------

func TestCreateIntentGuards(t *testing.T) {
	f := newPaymentFixture()

	if _, err := f.svc.CreateIntent(context.Background(), 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero id error = %v, want validation", err)
	}
	if _, err := f.svc.CreateIntent(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown booking error = %v, want not found", err)
	}

	cancelled := f.seedBooking(domain.BookingCancelled)
	if _, err := f.svc.CreateIntent(context.Background(), cancelled.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("cancelled booking error = %v, want validation", err)
	}

	confirmed := f.seedBooking(domain.BookingConfirmed)
	if _, err := f.svc.CreateIntent(context.Background(), confirmed.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("confirmed booking error = %v, want validation", err)
	}
}

func TestCreateIntentForHeldBooking(t *testing.T) {
	f := newPaymentFixture()
	booking := f.seedBooking(domain.BookingPending)

	result, err := f.svc.CreateIntent(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}
	if result.ClientSecret == "" || result.PaymentID == "" {
		t.Errorf("empty intent result: %+v", result)
	}

	payment, err := f.paymentRepo.GetByBookingID(context.Background(), booking.ID)
	if err != nil || payment == nil {
		t.Fatalf("payment row not created: %v", err)
	}
	if payment.Status != domain.PaymentPending {
		t.Errorf("payment status = %s, want PENDING", payment.Status)
	}
	if payment.AmountCents != booking.TotalCents {
		t.Errorf("payment amount = %d, want %d", payment.AmountCents, booking.TotalCents)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture()
	booking := f.seedBooking(domain.BookingPending)
	f.verifier.err = fmt.Errorf("%w: signature mismatch", domain.ErrUnauthorized)
	f.verifier.event = &payments.Event{
		ID: "evt_1", Type: payments.EventPaymentSucceeded, IntentID: "pi_1", BookingID: booking.ID,
	}

	err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "bad")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("HandleWebhook() error = %v, want unauthorized", err)
	}

	// Nothing was touched.
	if booking.Status != domain.BookingPending {
		t.Errorf("booking status changed to %s on unverified event", booking.Status)
	}
}

func TestWebhookSuccessConfirmsBooking(t *testing.T) {
	f := newPaymentFixture()
	booking := f.seedBooking(domain.BookingPending)
	if _, err := f.svc.CreateIntent(context.Background(), booking.ID); err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}

	intentID := fmt.Sprintf("pi_%d", booking.ID)
	f.verifier.event = &payments.Event{
		ID: "evt_1", Type: payments.EventPaymentSucceeded, IntentID: intentID, BookingID: booking.ID,
	}

	if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}

	if booking.Status != domain.BookingConfirmed {
		t.Errorf("booking status = %s, want CONFIRMED", booking.Status)
	}
	payment, _ := f.paymentRepo.GetByStripeID(context.Background(), intentID)
	if payment.Status != domain.PaymentCompleted {
		t.Errorf("payment status = %s, want COMPLETED", payment.Status)
	}
	if len(f.mailer.confirmations) != 1 || f.mailer.confirmations[0] != "guest@example.com" {
		t.Errorf("confirmation emails = %v", f.mailer.confirmations)
	}
}

func TestWebhookDuplicateEventIgnored(t *testing.T) {
	f := newPaymentFixture()
	booking := f.seedBooking(domain.BookingPending)
	if _, err := f.svc.CreateIntent(context.Background(), booking.ID); err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}

	intentID := fmt.Sprintf("pi_%d", booking.ID)
	f.verifier.event = &payments.Event{
		ID: "evt_1", Type: payments.EventPaymentSucceeded, IntentID: intentID, BookingID: booking.ID,
	}

	if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("first delivery error = %v", err)
	}
	if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("second delivery error = %v", err)
	}

	if len(f.mailer.confirmations) != 1 {
		t.Errorf("duplicate delivery re-sent email: %v", f.mailer.confirmations)
	}
}

func TestWebhookFailureCancelsBooking(t *testing.T) {
	f := newPaymentFixture()
	booking := f.seedBooking(domain.BookingPending)
	if _, err := f.svc.CreateIntent(context.Background(), booking.ID); err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}

	intentID := fmt.Sprintf("pi_%d", booking.ID)
	f.verifier.event = &payments.Event{
		ID: "evt_2", Type: payments.EventPaymentFailed, IntentID: intentID, BookingID: booking.ID,
	}

	if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}

	if booking.Status != domain.BookingCancelled {
		t.Errorf("booking status = %s, want CANCELLED", booking.Status)
	}
	payment, _ := f.paymentRepo.GetByStripeID(context.Background(), intentID)
	if payment.Status != domain.PaymentFailed {
		t.Errorf("payment status = %s, want FAILED", payment.Status)
	}
	if len(f.mailer.confirmations) != 0 {
		t.Errorf("failure sent a confirmation email")
	}
}

func TestWebhookSuccessForMissingBooking(t *testing.T) {
	f := newPaymentFixture()
	booking := f.seedBooking(domain.BookingPending)
	if _, err := f.svc.CreateIntent(context.Background(), booking.ID); err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}

	intentID := fmt.Sprintf("pi_%d", booking.ID)
	delete(f.bookingRepo.bookings, booking.ID)

	f.verifier.event = &payments.Event{
		ID: "evt_3", Type: payments.EventPaymentSucceeded, IntentID: intentID, BookingID: booking.ID,
	}

	err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("HandleWebhook() error = %v, want not found", err)
	}

	payment, _ := f.paymentRepo.GetByStripeID(context.Background(), intentID)
	if payment.Status != domain.PaymentFailed {
		t.Errorf("orphaned payment status = %s, want FAILED", payment.Status)
	}
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	f := newPaymentFixture()
	f.verifier.event = &payments.Event{ID: "evt_4", Type: "charge.refunded"}

	if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Errorf("unknown event type error = %v, want nil", err)
	}
}
