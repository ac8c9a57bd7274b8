package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/schedule"
)

// BookingRepository persists booking records. It is the source of truth
// the in-memory conflict index is rebuilt from.
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `id, tutor_id, student_id, creator_id, creator_role, start_time, end_time, status, description, created_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.TutorID,
		&b.StudentID,
		&b.CreatorID,
		&b.CreatorRole,
		&b.Range.Start,
		&b.Range.End,
		&b.Status,
		&b.Description,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new booking and fills in its id and creation time.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO booking (tutor_id, student_id, creator_id, creator_role, start_time, end_time, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		booking.TutorID,
		booking.StudentID,
		booking.CreatorID,
		booking.CreatorRole,
		booking.Range.Start,
		booking.Range.End,
		booking.Status,
		booking.Description,
	).Scan(&booking.ID, &booking.CreatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID fetches one booking. Returns nil without error when the id is
// unknown.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// UpdateStatus persists a state transition.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	query := `UPDATE booking SET status = $1 WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %d not found", id)
	}

	return nil
}

// UpdateTimeRange persists a reschedule.
func (r *BookingRepository) UpdateTimeRange(ctx context.Context, id int64, tr schedule.TimeRange) error {
	query := `UPDATE booking SET start_time = $1, end_time = $2 WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, tr.Start, tr.End, id)
	if err != nil {
		return fmt.Errorf("update booking time range: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %d not found", id)
	}

	return nil
}

// GetActive returns every non-canceled booking, the set the conflict
// index is rebuilt from at startup.
func (r *BookingRepository) GetActive(ctx context.Context) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM booking
		WHERE status IN ('pending', 'confirmed')
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetByParticipant returns the participant's non-canceled bookings whose
// ranges intersect [from, to), sorted by start time.
func (r *BookingRepository) GetByParticipant(ctx context.Context, key schedule.ParticipantKey, from, to time.Time) ([]*model.Booking, error) {
	var column string
	switch key.Role {
	case schedule.RoleTutor:
		column = "tutor_id"
	case schedule.RoleStudent:
		column = "student_id"
	default:
		return nil, fmt.Errorf("unknown participant role %q", key.Role)
	}

	query := fmt.Sprintf(`
		SELECT `+bookingColumns+`
		FROM booking
		WHERE %s = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`, column)

	rows, err := r.pool.Query(ctx, query, key.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get bookings by %s: %w", key.Role, err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]*model.Booking, error) {
	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}
