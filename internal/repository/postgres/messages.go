package postgres

import (
	"context"
	"fmt"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *MessageRepo) With(db DB) *MessageRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *MessageRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Insert stores a message and returns its ID.
func (r *MessageRepo) Insert(ctx context.Context, m *domain.Message) (int64, error) {
	const op = "postgres.MessageRepo.Insert"

	db := r.handle()

	var id int64
	err := db.QueryRow(ctx,
		`INSERT INTO messages(booking_id, sender, body)
       	 VALUES ($1, $2, $3)
      	 RETURNING id`,
		m.BookingID, m.Sender, m.Body,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

// ListByBooking returns the message thread of one booking, oldest first.
func (r *MessageRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Message, error) {
	const op = "postgres.MessageRepo.ListByBooking"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, booking_id, sender, body, read_at, created_at
		 FROM messages
		 WHERE booking_id = $1
		 ORDER BY created_at, id`,
		bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.BookingID, &m.Sender, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// MarkRead stamps the read time of a message. Already-read messages keep
// their original stamp.
//
// Returns:
//   - error: repository.ErrNotFound if the message does not exist.
func (r *MessageRepo) MarkRead(ctx context.Context, id int64) error {
	const op = "postgres.MessageRepo.MarkRead"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE messages SET read_at = COALESCE(read_at, now()) WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
