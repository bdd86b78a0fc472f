package postgres

import (
	"context"
	"fmt"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts a booking together with its participants and fills in the
// database-assigned CreatedAt. Run it inside the booking transaction via With
// so the discount usage increments commit with it.
//
// Returns:
//   - error: repository.ErrConflict on a duplicate booking ID.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Create"

	db := r.handle()

	if err := db.QueryRow(ctx,
		`INSERT INTO bookings(
			id, event_id, status, contact_email, quantity,
			base_amount, total_discount, final_amount)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
      	 RETURNING created_at`,
		b.ID, b.EventID, b.Status, b.ContactEmail, b.Quantity,
		b.BaseAmount, b.TotalDiscount, b.FinalAmount,
	).Scan(&b.CreatedAt); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	batch := &pgx.Batch{}
	for _, p := range b.Participants {
		batch.Queue(
			`INSERT INTO participants(
				booking_id, first_name, last_name, date_of_birth, custom_data)
         	 VALUES ($1, $2, $3, $4, $5)`,
			b.ID, p.FirstName, p.LastName, p.DateOfBirth, p.CustomData,
		)
	}
	if batch.Len() > 0 {
		if err := db.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
	}

	return nil
}

// Get retrieves a booking with its participants.
//
// Returns:
//   - error: repository.ErrNotFound if the booking is not found.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	db := r.handle()

	var b domain.Booking
	err := db.QueryRow(ctx,
		`SELECT id, event_id, status, contact_email, quantity,
				base_amount, total_discount, final_amount, created_at
       	 FROM bookings WHERE id = $1`,
		id,
	).Scan(
		&b.ID, &b.EventID, &b.Status, &b.ContactEmail, &b.Quantity,
		&b.BaseAmount, &b.TotalDiscount, &b.FinalAmount, &b.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	participants, err := r.participantsFor(ctx, []uuid.UUID{b.ID})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	b.Participants = participants[b.ID]

	return &b, nil
}

// ListByEventAndStatus returns the bookings of one event whose status is in
// statuses, each with participants loaded. This backs both the organizer
// booking list and previous_event discount rules.
func (r *BookingRepo) ListByEventAndStatus(
	ctx context.Context,
	eventID int64,
	statuses []domain.BookingStatus,
) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListByEventAndStatus"

	db := r.handle()

	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}

	rows, err := db.Query(ctx,
		`SELECT id, event_id, status, contact_email, quantity,
				base_amount, total_discount, final_amount, created_at
		 FROM bookings
		 WHERE event_id = $1 AND status = ANY($2)
		 ORDER BY created_at`,
		eventID, ss,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Booking
	var ids []uuid.UUID
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.EventID, &b.Status, &b.ContactEmail, &b.Quantity,
			&b.BaseAmount, &b.TotalDiscount, &b.FinalAmount, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if len(out) == 0 {
		return out, nil
	}

	participants, err := r.participantsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	for i := range out {
		out[i].Participants = participants[out[i].ID]
	}

	return out, nil
}

// UpdateStatus moves a booking to the given status.
//
// Returns:
//   - error: repository.ErrNotFound if the booking does not exist.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	const op = "postgres.BookingRepo.UpdateStatus"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *BookingRepo) participantsFor(
	ctx context.Context,
	bookingIDs []uuid.UUID,
) (map[uuid.UUID][]domain.Participant, error) {
	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT booking_id, first_name, last_name, date_of_birth, custom_data
		 FROM participants
		 WHERE booking_id = ANY($1)
		 ORDER BY id`,
		bookingIDs,
	)
	if err != nil {
		return nil, translateDBErr(err)
	}

	defer rows.Close()

	out := make(map[uuid.UUID][]domain.Participant)
	for rows.Next() {
		var bid uuid.UUID
		var p domain.Participant
		if err := rows.Scan(&bid, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.CustomData); err != nil {
			return nil, translateDBErr(err)
		}
		out[bid] = append(out[bid], p)
	}

	return out, rows.Err()
}
