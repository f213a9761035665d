package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/handlers"
	"github.com/hoteler/hotel-bookings/internal/repository"
	"github.com/hoteler/hotel-bookings/internal/service"
	"github.com/hoteler/hotel-bookings/pkg/auth"
	"github.com/hoteler/hotel-bookings/pkg/config"
)

// ---------- Mocks ----------

type mockBookingService struct {
	created    *domain.Booking
	createErr  error
	listResult []domain.Booking
}

func (m *mockBookingService) Create(_ context.Context, principal *auth.Claims, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = &domain.Booking{
		ID: 1, RoomID: req.RoomID, UserID: principal.Sub,
		CheckIn: req.CheckIn, CheckOut: req.CheckOut,
		Status: domain.BookingPending,
	}
	return m.created, nil
}

func (m *mockBookingService) Get(_ context.Context, _ *auth.Claims, _, _ int64) (*domain.Booking, error) {
	if m.created == nil {
		return nil, fmt.Errorf("%w: no booking with provided id", domain.ErrNotFound)
	}
	return m.created, nil
}

func (m *mockBookingService) List(_ context.Context, _ *auth.Claims, _ domain.BookingFilter, _ repository.ListOptions) ([]domain.Booking, int, error) {
	return m.listResult, len(m.listResult), nil
}

func (m *mockBookingService) Update(_ context.Context, _ *auth.Claims, _, _ int64, _ domain.BookingPatch) (*domain.Booking, error) {
	return m.created, nil
}

func (m *mockBookingService) Delete(_ context.Context, _ *auth.Claims, _, _ int64) error {
	return nil
}

func (m *mockBookingService) OccupiedRanges(_ context.Context, _ int64) ([]domain.DateRange, error) {
	return []domain.DateRange{}, nil
}

// ---------- Helpers ----------

func newRouter(t *testing.T, bookingSvc service.BookingService) (*chi.Mux, *config.Config) {
	t.Helper()
	cfg := config.Load()
	h := handlers.New(nil, nil, bookingSvc, nil, nil, cfg)

	r := chi.NewRouter()
	r.Route("/bookings", func(r chi.Router) {
		r.Use(h.RequireJWT(""))
		r.Post("/", h.CreateBooking)
		r.Get("/", h.ListBookings)
		r.Get("/{roomID}/{bookingID}", h.GetBooking)
	})
	return r, cfg
}

func bearerToken(t *testing.T, cfg *config.Config, sub int64, role string) string {
	t.Helper()
	token, err := auth.NewAccessToken(sub, "user@example.com", role, cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return "Bearer " + token
}

// ---------- Tests ----------

func TestBookingRoutesRequireAuth(t *testing.T) {
	r, _ := newRouter(t, &mockBookingService{})

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/bookings/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	svc := &mockBookingService{}
	r, cfg := newRouter(t, svc)

	body, _ := json.Marshal(map[string]interface{}{
		"room_id":   1,
		"check_in":  "2026-04-01T00:00:00Z",
		"check_out": "2026-04-03T00:00:00Z",
	})

	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, cfg, 7, auth.RoleUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	if svc.created == nil || svc.created.UserID != 7 {
		t.Errorf("booking not created for authenticated user: %+v", svc.created)
	}
}

func TestCreateBookingConflictMapsTo409(t *testing.T) {
	svc := &mockBookingService{
		createErr: fmt.Errorf("%w: room is already booked for the selected dates", domain.ErrConflict),
	}
	r, cfg := newRouter(t, svc)

	body, _ := json.Marshal(map[string]interface{}{
		"room_id":   1,
		"check_in":  "2026-04-01T00:00:00Z",
		"check_out": "2026-04-03T00:00:00Z",
	})

	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, cfg, 7, auth.RoleUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Status != "fail" || resp.Code != "CONFLICT" {
		t.Errorf("error body = %+v", resp)
	}
}

func TestCreateBookingRejectsBadJSON(t *testing.T) {
	r, cfg := newRouter(t, &mockBookingService{})

	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", bearerToken(t, cfg, 7, auth.RoleUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListBookingsEnvelope(t *testing.T) {
	svc := &mockBookingService{
		listResult: []domain.Booking{
			{ID: 1, RoomID: 1, UserID: 7, Status: domain.BookingPending},
			{ID: 2, RoomID: 2, UserID: 7, Status: domain.BookingConfirmed},
		},
	}
	r, cfg := newRouter(t, svc)

	req := httptest.NewRequest("GET", "/bookings/?page=1&limit=10", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, 7, auth.RoleUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status  string            `json:"status"`
		Results int               `json:"results"`
		Data    []json.RawMessage `json:"data"`
		Meta    struct {
			Total       int `json:"total"`
			CurrentPage int `json:"currentPage"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid list body: %v", err)
	}
	if resp.Status != "success" || resp.Results != 2 || len(resp.Data) != 2 {
		t.Errorf("envelope = %+v", resp)
	}
	if resp.Meta.Total != 2 || resp.Meta.CurrentPage != 1 {
		t.Errorf("meta = %+v", resp.Meta)
	}
}

func TestListBookingsFieldsProjection(t *testing.T) {
	svc := &mockBookingService{
		listResult: []domain.Booking{
			{ID: 1, RoomID: 1, UserID: 7, TotalCents: 30000, Status: domain.BookingPending},
		},
	}
	r, cfg := newRouter(t, svc)

	// "secret" is not a known field and must be dropped silently.
	req := httptest.NewRequest("GET", "/bookings/?fields=id,status,secret", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, 7, auth.RoleUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid list body: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("len(data) = %d, want 1", len(resp.Data))
	}
	row := resp.Data[0]
	if len(row) != 2 {
		t.Errorf("projected row has %d keys, want 2: %v", len(row), row)
	}
	if _, ok := row["id"]; !ok {
		t.Error("projected row missing id")
	}
	if _, ok := row["status"]; !ok {
		t.Error("projected row missing status")
	}
	if _, ok := row["total_cents"]; ok {
		t.Error("projected row leaked total_cents")
	}
}

func TestListBookingsRejectsInvalidStatus(t *testing.T) {
	r, cfg := newRouter(t, &mockBookingService{})

	req := httptest.NewRequest("GET", "/bookings/?status=BOGUS", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, 7, auth.RoleUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
