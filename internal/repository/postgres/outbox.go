package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxRepo manages the scheduled_emails outbox. Rows are enqueued inside
// the transaction that produced them and delivered later by the mailer
// worker.
type OutboxRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *OutboxRepo) With(db DB) *OutboxRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *OutboxRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Enqueue inserts a pending outbox row and returns its ID.
func (r *OutboxRepo) Enqueue(ctx context.Context, e *domain.ScheduledEmail) (int64, error) {
	const op = "postgres.OutboxRepo.Enqueue"

	db := r.handle()

	var id int64
	err := db.QueryRow(ctx,
		`INSERT INTO scheduled_emails(
			booking_id, recipient, subject, html_body, text_body, scheduled_at, status)
       	 VALUES ($1, $2, $3, $4, $5, $6, 'pending')
      	 RETURNING id`,
		e.BookingID, e.Recipient, e.Subject, e.HTMLBody, e.TextBody, e.ScheduledAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

// ClaimDue atomically moves up to limit due rows to 'processing' and returns
// them. A row counts as due when it is pending with scheduled_at in the past,
// or when it has sat in 'processing' longer than reclaimAfter: a worker that
// died between claiming and marking leaves its rows behind, and the next pass
// picks them up again. SKIP LOCKED keeps concurrent workers from claiming the
// same rows.
func (r *OutboxRepo) ClaimDue(
	ctx context.Context,
	limit int,
	reclaimAfter time.Duration,
) ([]domain.ScheduledEmail, error) {
	const op = "postgres.OutboxRepo.ClaimDue"

	db := r.handle()

	staleBefore := time.Now().Add(-reclaimAfter)

	rows, err := db.Query(ctx,
		`UPDATE scheduled_emails
        	SET status = 'processing', claimed_at = now()
      	 WHERE id IN (
	      	 SELECT id FROM scheduled_emails
	      	 WHERE (status = 'pending' AND scheduled_at <= now())
	      	    OR (status = 'processing' AND claimed_at <= $2)
	      	 ORDER BY scheduled_at, id
	      	 LIMIT $1
	      	 FOR UPDATE SKIP LOCKED
      	 )
      	 RETURNING id, booking_id, recipient, subject, html_body, text_body,
                   scheduled_at, created_at`,
		limit, staleBefore,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.ScheduledEmail
	for rows.Next() {
		var e domain.ScheduledEmail
		if err := rows.Scan(
			&e.ID, &e.BookingID, &e.Recipient, &e.Subject,
			&e.HTMLBody, &e.TextBody, &e.ScheduledAt, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		e.Status = domain.EmailProcessing
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// MarkSent records a successful delivery.
func (r *OutboxRepo) MarkSent(ctx context.Context, id int64) error {
	const op = "postgres.OutboxRepo.MarkSent"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE scheduled_emails
        	SET status = 'sent', sent_at = now(), last_error = NULL
      	 WHERE id = $1`,
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

// MarkFailed records a delivery failure in the error column.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id int64, cause string) error {
	const op = "postgres.OutboxRepo.MarkFailed"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE scheduled_emails
        	SET status = 'error', last_error = $2
      	 WHERE id = $1`,
		id, cause,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
