package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoteler/hotel-bookings/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, bookingID, amountCents int64, method, stripeID string) (*domain.Payment, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	GetByStripeID(ctx context.Context, stripeID string) (*domain.Payment, error)
	// UpdateStatusByStripeID sets the payment status. Applying the same
	// status twice is a no-op; the updated row (or the unchanged row) is
	// returned either way.
	UpdateStatusByStripeID(ctx context.Context, stripeID string, status domain.PaymentStatus) (*domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

const paymentCols = `id, booking_id, amount_cents, method, status, stripe_id, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Method, &p.Status,
		&p.StripeID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, bookingID, amountCents int64, method, stripeID string) (*domain.Payment, error) {
	const q = `INSERT INTO payments (booking_id, amount_cents, method, status, stripe_id)
		VALUES ($1,$2,$3,'PENDING',$4)
		RETURNING ` + paymentCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPayment(r.pool.QueryRow(ctx, q, bookingID, amountCents, method, stripeID))
	if err != nil {
		return nil, mapConstraintErr(err, "payment already exists for this booking")
	}
	return p, nil
}

func (r *paymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE booking_id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPayment(r.pool.QueryRow(ctx, q, bookingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *paymentRepository) GetByStripeID(ctx context.Context, stripeID string) (*domain.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE stripe_id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPayment(r.pool.QueryRow(ctx, q, stripeID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *paymentRepository) UpdateStatusByStripeID(ctx context.Context, stripeID string, status domain.PaymentStatus) (*domain.Payment, error) {
	const q = `UPDATE payments SET status=$2, updated_at=now()
		WHERE stripe_id=$1
		RETURNING ` + paymentCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPayment(r.pool.QueryRow(ctx, q, stripeID, status))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}
