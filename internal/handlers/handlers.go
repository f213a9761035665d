package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hoteler/hotel-bookings/internal/response"
	"github.com/hoteler/hotel-bookings/internal/service"
	"github.com/hoteler/hotel-bookings/pkg/auth"
	"github.com/hoteler/hotel-bookings/pkg/config"
	"github.com/hoteler/hotel-bookings/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	authService    service.AuthService
	roomService    service.RoomService
	bookingService service.BookingService
	cartService    service.CartService
	paymentService service.PaymentService
	config         *config.Config
}

func New(
	authService service.AuthService,
	roomService service.RoomService,
	bookingService service.BookingService,
	cartService service.CartService,
	paymentService service.PaymentService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		authService:    authService,
		roomService:    roomService,
		bookingService: bookingService,
		cartService:    cartService,
		paymentService: paymentService,
		config:         cfg,
	}
}

// RequireJWT authenticates the bearer token and, when requiredRole is
// non-empty, enforces it. Admins pass every role check.
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization header", response.CodeUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid token", response.CodeUnauthorized)
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && !claims.IsAdmin() {
				response.WriteError(w, http.StatusForbidden, "insufficient permissions", response.CodeForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt64(r *http.Request, name string) *int64 {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &n
		}
	}
	return nil
}

func queryBool(r *http.Request, name string) *bool {
	if v := r.URL.Query().Get(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
	}
	return nil
}

func queryTime(r *http.Request, name string) *time.Time {
	if v := r.URL.Query().Get(name); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return &t
		}
	}
	return nil
}
