package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoteler/hotel-bookings/internal/domain"
)

// ListOptions carry the SQL-ready pagination/ordering for list queries.
// OrderBy must come from a whitelist, never from raw user input.
type ListOptions struct {
	OrderBy string
	Limit   int
	Offset  int
}

func (o ListOptions) normalize() ListOptions {
	if o.Limit <= 0 || o.Limit > 100 {
		o.Limit = 20
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.OrderBy == "" {
		o.OrderBy = "created_at DESC"
	}
	return o
}

type RoomRepository interface {
	Create(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error)
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context, filter domain.RoomFilter, opts ListOptions) ([]domain.Room, error)
	Count(ctx context.Context, filter domain.RoomFilter) (int, error)
	Update(ctx context.Context, id int64, patch domain.RoomPatch) (*domain.Room, error)
	Delete(ctx context.Context, id int64) error
}

type roomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) RoomRepository {
	return &roomRepository{pool: pool}
}

const roomCols = `id, number, type, price_cents, capacity, is_available, amenities, created_at, updated_at`

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var rm domain.Room
	err := row.Scan(&rm.ID, &rm.Number, &rm.Type, &rm.PriceCents, &rm.Capacity,
		&rm.IsAvailable, &rm.Amenities, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *roomRepository) Create(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error) {
	const q = `INSERT INTO rooms (number, type, price_cents, capacity, is_available, amenities)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING ` + roomCols

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	amenities := req.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rm, err := scanRoom(r.pool.QueryRow(ctx, q,
		req.Number, req.Type, req.PriceCents, req.Capacity, available, amenities))
	if err != nil {
		return nil, mapConstraintErr(err, "room with this number already exists")
	}
	return rm, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rm, err := scanRoom(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return rm, err
}

func roomWhere(filter domain.RoomFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND type=$%d", len(args))
	}
	if filter.Available != nil {
		args = append(args, *filter.Available)
		where += fmt.Sprintf(" AND is_available=$%d", len(args))
	}
	if filter.MinCents != nil {
		args = append(args, *filter.MinCents)
		where += fmt.Sprintf(" AND price_cents >= $%d", len(args))
	}
	if filter.MaxCents != nil {
		args = append(args, *filter.MaxCents)
		where += fmt.Sprintf(" AND price_cents <= $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (number ILIKE $%d OR type ILIKE $%d)", len(args), len(args))
	}
	return where, args
}

func (r *roomRepository) List(ctx context.Context, filter domain.RoomFilter, opts ListOptions) ([]domain.Room, error) {
	opts = opts.normalize()
	where, args := roomWhere(filter)

	q := `SELECT ` + roomCols + ` FROM rooms` + where +
		fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", opts.OrderBy, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *rm)
	}
	return rooms, rows.Err()
}

func (r *roomRepository) Count(ctx context.Context, filter domain.RoomFilter) (int, error) {
	where, args := roomWhere(filter)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM rooms`+where, args...).Scan(&total)
	return total, err
}

func (r *roomRepository) Update(ctx context.Context, id int64, patch domain.RoomPatch) (*domain.Room, error) {
	const q = `
		UPDATE rooms
		SET
			number       = COALESCE($2, number),
			type         = COALESCE($3, type),
			price_cents  = COALESCE($4, price_cents),
			capacity     = COALESCE($5, capacity),
			is_available = COALESCE($6, is_available),
			amenities    = COALESCE($7, amenities),
			updated_at   = now()
		WHERE id=$1
		RETURNING ` + roomCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var amenities []string
	if patch.Amenities != nil {
		amenities = *patch.Amenities
	}

	rm, err := scanRoom(r.pool.QueryRow(ctx, q, id,
		patch.Number, patch.Type, patch.PriceCents, patch.Capacity, patch.IsAvailable,
		amenities))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: room %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, mapConstraintErr(err, "room with this number already exists")
	}
	return rm, nil
}

func (r *roomRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: room %d", domain.ErrNotFound, id)
	}
	return nil
}
