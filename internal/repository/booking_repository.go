package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoteler/hotel-bookings/internal/domain"
)

type BookingRepository interface {
	// CreateHeld runs the overlap check and insert in one transaction while
	// holding a per-room advisory lock, so concurrent creation attempts for
	// the same room are serialized.
	CreateHeld(ctx context.Context, roomID, userID int64, checkIn, checkOut time.Time, totalCents int64, expiresAt time.Time) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetForRoom(ctx context.Context, id, roomID int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter, opts ListOptions) ([]domain.Booking, error)
	Count(ctx context.Context, filter domain.BookingFilter) (int, error)
	// HasOverlap reports whether any non-cancelled booking on the room,
	// other than excludeID, intersects [checkIn, checkOut).
	HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error)
	Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error)
	// UpdateStatus moves the booking into status; already being there is a
	// no-op, not an error.
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	Delete(ctx context.Context, id, roomID int64) error
	// FindExpiredPending returns PENDING bookings whose hold deadline has
	// passed and that have no payment attempt attached.
	FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Booking, error)
	// CancelBatch cancels the given bookings in one transaction. Rows that
	// are no longer PENDING are skipped.
	CancelBatch(ctx context.Context, ids []int64) (int64, error)
	OccupiedRanges(ctx context.Context, roomID int64) ([]domain.DateRange, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, room_id, user_id, check_in, check_out, total_cents, status, expires_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.RoomID, &b.UserID, &b.CheckIn, &b.CheckOut,
		&b.TotalCents, &b.Status, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) CreateHeld(ctx context.Context, roomID, userID int64, checkIn, checkOut time.Time, totalCents int64, expiresAt time.Time) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Serialize check-then-insert per room. The lock is released at commit
	// or rollback; the schema's exclusion constraint is the backstop.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, roomID); err != nil {
		return nil, err
	}

	var conflicts int
	const overlapQ = `
		SELECT count(*) FROM bookings
		WHERE room_id = $1
		  AND status <> 'CANCELLED'
		  AND check_in < $3
		  AND check_out > $2`
	if err := tx.QueryRow(ctx, overlapQ, roomID, checkIn, checkOut).Scan(&conflicts); err != nil {
		return nil, err
	}
	if conflicts > 0 {
		return nil, fmt.Errorf("%w: room is already booked for the selected dates", domain.ErrConflict)
	}

	const insertQ = `INSERT INTO bookings (room_id, user_id, check_in, check_out, total_cents, status, expires_at)
		VALUES ($1,$2,$3,$4,$5,'PENDING',$6)
		RETURNING ` + bookingCols

	b, err := scanBooking(tx.QueryRow(ctx, insertQ, roomID, userID, checkIn, checkOut, totalCents, expiresAt))
	if err != nil {
		return nil, mapConstraintErr(err, "room is already booked for the selected dates")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapConstraintErr(err, "room is already booked for the selected dates")
	}
	return b, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *bookingRepository) GetForRoom(ctx context.Context, id, roomID int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1 AND room_id=$2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id, roomID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func bookingWhere(filter domain.BookingFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND b.status=$%d", len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += fmt.Sprintf(" AND b.user_id=$%d", len(args))
	}
	if filter.RoomID != nil {
		args = append(args, *filter.RoomID)
		where += fmt.Sprintf(" AND b.room_id=$%d", len(args))
	}
	if filter.MinCents != nil {
		args = append(args, *filter.MinCents)
		where += fmt.Sprintf(" AND b.total_cents >= $%d", len(args))
	}
	if filter.MaxCents != nil {
		args = append(args, *filter.MaxCents)
		where += fmt.Sprintf(" AND b.total_cents <= $%d", len(args))
	}
	if filter.CheckInAfter != nil {
		args = append(args, *filter.CheckInAfter)
		where += fmt.Sprintf(" AND b.check_in >= $%d", len(args))
	}
	if filter.CheckInBefore != nil {
		args = append(args, *filter.CheckInBefore)
		where += fmt.Sprintf(" AND b.check_in <= $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM users u WHERE u.id=b.user_id AND u.email ILIKE $%d
			UNION ALL
			SELECT 1 FROM rooms rm WHERE rm.id=b.room_id AND (rm.number ILIKE $%d OR rm.type ILIKE $%d)
		)`, n, n, n)
	}
	return where, args
}

func (r *bookingRepository) List(ctx context.Context, filter domain.BookingFilter, opts ListOptions) ([]domain.Booking, error) {
	opts = opts.normalize()
	where, args := bookingWhere(filter)

	q := `SELECT ` + bookingColsPrefixed + ` FROM bookings b` + where +
		fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", opts.OrderBy, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

const bookingColsPrefixed = `b.id, b.room_id, b.user_id, b.check_in, b.check_out, b.total_cents, b.status, b.expires_at, b.created_at, b.updated_at`

func (r *bookingRepository) Count(ctx context.Context, filter domain.BookingFilter) (int, error) {
	where, args := bookingWhere(filter)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bookings b`+where, args...).Scan(&total)
	return total, err
}

func (r *bookingRepository) HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1
			  AND id <> $4
			  AND status <> 'CANCELLED'
			  AND check_in < $3
			  AND check_out > $2
		)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, roomID, checkIn, checkOut, excludeID).Scan(&exists)
	return exists, err
}

func (r *bookingRepository) Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET
			status      = COALESCE($2, status),
			check_in    = COALESCE($3, check_in),
			check_out   = COALESCE($4, check_out),
			total_cents = COALESCE($5, total_cents),
			updated_at  = now()
		WHERE id=$1
		RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id,
		patch.Status, patch.CheckIn, patch.CheckOut, patch.TotalCents))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, mapConstraintErr(err, "room is already booked for the selected dates")
	}
	return b, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	const q = `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1 RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id, status))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return b, err
}

func (r *bookingRepository) Delete(ctx context.Context, id, roomID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id=$1 AND room_id=$2`, id, roomID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return nil
}

func (r *bookingRepository) FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	const q = `
		SELECT ` + bookingCols + ` FROM bookings
		WHERE status = 'PENDING'
		  AND expires_at <= $1
		  AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = bookings.id)
		ORDER BY expires_at`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) CancelBatch(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const q = `UPDATE bookings SET status='CANCELLED', updated_at=now()
		WHERE id = ANY($1) AND status = 'PENDING'`
	tag, err := tx.Exec(ctx, q, ids)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *bookingRepository) OccupiedRanges(ctx context.Context, roomID int64) ([]domain.DateRange, error) {
	const q = `SELECT check_in, check_out FROM bookings
		WHERE room_id=$1 AND status <> 'CANCELLED'
		ORDER BY check_in`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranges []domain.DateRange
	for rows.Next() {
		var dr domain.DateRange
		if err := rows.Scan(&dr.CheckIn, &dr.CheckOut); err != nil {
			return nil, err
		}
		ranges = append(ranges, dr)
	}
	return ranges, rows.Err()
}
