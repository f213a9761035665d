package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hoteler/hotel-bookings/internal/domain"
)

type mockBookingStore struct {
	expired    []domain.Booking
	findErr    error
	cancelErr  error
	canceledID []int64
}

func (m *mockBookingStore) FindExpiredPending(_ context.Context, _ time.Time) ([]domain.Booking, error) {
	return m.expired, m.findErr
}

func (m *mockBookingStore) CancelBatch(_ context.Context, ids []int64) (int64, error) {
	if m.cancelErr != nil {
		return 0, m.cancelErr
	}
	m.canceledID = append(m.canceledID, ids...)
	return int64(len(ids)), nil
}

type mockUserStore struct {
	users map[int64]*domain.User
}

func (m *mockUserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	return m.users[id], nil
}

type mockMailer struct {
	expired []string
	sendErr error
}

func (m *mockMailer) SendBookingConfirmation(string, string, time.Time, time.Time, int64) error {
	return nil
}

func (m *mockMailer) SendBookingExpired(toEmail string, _ int64) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.expired = append(m.expired, toEmail)
	return nil
}

type mockBus struct {
	subjects []string
}

func (m *mockBus) Publish(_ context.Context, subject string, _ interface{}) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockBus) Close() error { return nil }

func TestSweepOnceCancelsAndNotifies(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &mockBookingStore{
		expired: []domain.Booking{
			{ID: 1, RoomID: 1, UserID: 7, Status: domain.BookingPending, ExpiresAt: now.Add(-time.Minute)},
			{ID: 2, RoomID: 2, UserID: 8, Status: domain.BookingPending, ExpiresAt: now.Add(-time.Hour)},
		},
	}
	users := &mockUserStore{users: map[int64]*domain.User{
		7: {ID: 7, Email: "seven@example.com"},
		8: {ID: 8, Email: "eight@example.com"},
	}}
	mail := &mockMailer{}
	bus := &mockBus{}

	s := New(store, users, mail, bus, time.Minute)
	s.now = func() time.Time { return now }

	if err := s.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() error = %v", err)
	}

	if len(store.canceledID) != 2 {
		t.Errorf("canceled ids = %v, want 2", store.canceledID)
	}
	if len(mail.expired) != 2 {
		t.Errorf("expiry emails = %v, want 2", mail.expired)
	}
	if len(bus.subjects) != 2 || bus.subjects[0] != "booking.expired" {
		t.Errorf("published subjects = %v", bus.subjects)
	}
}

func TestSweepOnceNoExpiredHolds(t *testing.T) {
	store := &mockBookingStore{}
	mail := &mockMailer{}
	s := New(store, &mockUserStore{}, mail, &mockBus{}, time.Minute)

	if err := s.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() error = %v", err)
	}
	if len(store.canceledID) != 0 {
		t.Errorf("cancel was called with no expired holds")
	}
	if len(mail.expired) != 0 {
		t.Errorf("emails were sent with no expired holds")
	}
}

func TestSweepOnceCancelFailureStopsNotification(t *testing.T) {
	now := time.Now()
	store := &mockBookingStore{
		expired:   []domain.Booking{{ID: 1, UserID: 7, ExpiresAt: now.Add(-time.Minute)}},
		cancelErr: errors.New("db down"),
	}
	mail := &mockMailer{}
	s := New(store, &mockUserStore{}, mail, &mockBus{}, time.Minute)

	if err := s.SweepOnce(context.Background()); err == nil {
		t.Fatal("SweepOnce() returned nil on cancel failure")
	}
	if len(mail.expired) != 0 {
		t.Errorf("emails sent although cancellation failed")
	}
}

func TestSweepOnceEmailFailureIsSwallowed(t *testing.T) {
	now := time.Now()
	store := &mockBookingStore{
		expired: []domain.Booking{{ID: 1, UserID: 7, ExpiresAt: now.Add(-time.Minute)}},
	}
	users := &mockUserStore{users: map[int64]*domain.User{7: {ID: 7, Email: "seven@example.com"}}}
	mail := &mockMailer{sendErr: errors.New("smtp down")}

	s := New(store, users, mail, &mockBus{}, time.Minute)

	if err := s.SweepOnce(context.Background()); err != nil {
		t.Errorf("SweepOnce() error = %v, want nil despite email failure", err)
	}
	if len(store.canceledID) != 1 {
		t.Errorf("cancellation did not commit")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := &mockBookingStore{}
	s := New(store, &mockUserStore{}, &mockMailer{}, &mockBus{}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after context cancellation")
	}
}
