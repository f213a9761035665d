package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoteler/hotel-bookings/internal/domain"
)

type CartRepository interface {
	Create(ctx context.Context, userID int64, req *domain.CartItemRequest) (*domain.CartItem, error)
	GetByID(ctx context.Context, id, userID int64) (*domain.CartItem, error)
	ListByUser(ctx context.Context, userID int64, opts ListOptions) ([]domain.CartItem, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Update(ctx context.Context, id, userID int64, patch domain.CartItemPatch) (*domain.CartItem, error)
	Delete(ctx context.Context, id, userID int64) error
}

type cartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &cartRepository{pool: pool}
}

const cartCols = `id, user_id, room_id, check_in, check_out, adults, children, services, created_at, updated_at`

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	var c domain.CartItem
	err := row.Scan(&c.ID, &c.UserID, &c.RoomID, &c.CheckIn, &c.CheckOut,
		&c.Adults, &c.Children, &c.Services, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepository) Create(ctx context.Context, userID int64, req *domain.CartItemRequest) (*domain.CartItem, error) {
	const q = `INSERT INTO cart_items (user_id, room_id, check_in, check_out, adults, children, services)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING ` + cartCols

	services := req.Services
	if services == nil {
		services = []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanCartItem(r.pool.QueryRow(ctx, q,
		userID, req.RoomID, req.CheckIn, req.CheckOut, req.Adults, req.Children, services))
}

func (r *cartRepository) GetByID(ctx context.Context, id, userID int64) (*domain.CartItem, error) {
	const q = `SELECT ` + cartCols + ` FROM cart_items WHERE id=$1 AND user_id=$2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCartItem(r.pool.QueryRow(ctx, q, id, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *cartRepository) ListByUser(ctx context.Context, userID int64, opts ListOptions) ([]domain.CartItem, error) {
	opts = opts.normalize()

	q := `SELECT ` + cartCols + ` FROM cart_items WHERE user_id=$1` +
		fmt.Sprintf(" ORDER BY %s LIMIT $2 OFFSET $3", opts.OrderBy)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		c, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *cartRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM cart_items WHERE user_id=$1`, userID).Scan(&total)
	return total, err
}

func (r *cartRepository) Update(ctx context.Context, id, userID int64, patch domain.CartItemPatch) (*domain.CartItem, error) {
	const q = `
		UPDATE cart_items
		SET
			check_in   = COALESCE($3, check_in),
			check_out  = COALESCE($4, check_out),
			adults     = COALESCE($5, adults),
			children   = COALESCE($6, children),
			services   = COALESCE($7, services),
			updated_at = now()
		WHERE id=$1 AND user_id=$2
		RETURNING ` + cartCols

	var services []string
	if patch.Services != nil {
		services = *patch.Services
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCartItem(r.pool.QueryRow(ctx, q, id, userID,
		patch.CheckIn, patch.CheckOut, patch.Adults, patch.Children, services))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: cart item %d", domain.ErrNotFound, id)
	}
	return c, err
}

func (r *cartRepository) Delete(ctx context.Context, id, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cart item %d", domain.ErrNotFound, id)
	}
	return nil
}
