package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/hoteler/hotel-bookings/internal/handlers"
	"github.com/hoteler/hotel-bookings/internal/mailer"
	"github.com/hoteler/hotel-bookings/internal/payments"
	"github.com/hoteler/hotel-bookings/internal/repository"
	"github.com/hoteler/hotel-bookings/internal/service"
	"github.com/hoteler/hotel-bookings/internal/sweeper"
	"github.com/hoteler/hotel-bookings/pkg/auth"
	"github.com/hoteler/hotel-bookings/pkg/cache"
	"github.com/hoteler/hotel-bookings/pkg/config"
	"github.com/hoteler/hotel-bookings/pkg/database"
	"github.com/hoteler/hotel-bookings/pkg/events"
	"github.com/hoteler/hotel-bookings/pkg/logger"
	mw "github.com/hoteler/hotel-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store, err := cache.NewStore(cfg.Redis.URL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	mail := mailer.New(cfg.Email)

	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.Currency)
	verifier := payments.NewStripeVerifier(cfg.Stripe.WebhookSecret)

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	cartRepo := repository.NewCartRepository(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg)
	roomService := service.NewRoomService(roomRepo)
	bookingService := service.NewBookingService(bookingRepo, roomRepo, eventBus, cfg)
	cartService := service.NewCartService(cartRepo, roomRepo)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, roomRepo, userRepo,
		gateway, verifier, mail, eventBus, store)

	sw := sweeper.New(bookingRepo, userRepo, mail, eventBus, cfg.Booking.SweepInterval)

	h := handlers.New(authService, roomService, bookingService, cartService, paymentService, cfg)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "Stripe-Signature"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(h.RequireJWT(""))
		r.Get("/me", h.Me)
	})

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", h.ListRooms)
		r.Get("/{roomID}", h.GetRoom)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT(auth.RoleAdmin))
			r.Post("/", h.CreateRoom)
			r.Patch("/{roomID}", h.UpdateRoom)
			r.Delete("/{roomID}", h.DeleteRoom)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/rooms/{roomID}/dates", h.RoomDates)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT(""))
			r.With(mw.Idempotency(store)).Post("/", h.CreateBooking)
			r.Get("/", h.ListBookings)
			r.Get("/{roomID}/{bookingID}", h.GetBooking)
			r.Patch("/{roomID}/{bookingID}", h.UpdateBooking)
			r.Delete("/{roomID}/{bookingID}", h.DeleteBooking)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(h.RequireJWT(""))
		r.Post("/", h.AddCartItem)
		r.Get("/", h.ListCart)
		r.Get("/{itemID}", h.GetCartItem)
		r.Patch("/{itemID}", h.UpdateCartItem)
		r.Delete("/{itemID}", h.RemoveCartItem)
	})

	r.Route("/payment", func(r chi.Router) {
		// The webhook authenticates by signature, not bearer token.
		r.Post("/webhook", h.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT(""))
			r.With(mw.Idempotency(store)).Post("/createPayment", h.CreatePayment)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := sw.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
