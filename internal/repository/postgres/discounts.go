package postgres

import (
	"context"
	"fmt"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DiscountRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *DiscountRepo) With(db DB) *DiscountRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *DiscountRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const discountColumns = `id, event_id, name, discount_type, value_type, value,
	start_date, end_date, min_quantity, max_quantity, max_uses, current_uses,
	is_active, created_at`

// ListActiveByEvent returns the active discounts of one event with their
// participant and seat rules eager-loaded. Order is explicit (created_at, id)
// so evaluation is deterministic.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - eventID: unique identifier of the event.
//
// Returns:
//   - []domain.EventDiscount: active discounts; empty slice when none exist.
func (r *DiscountRepo) ListActiveByEvent(ctx context.Context, eventID int64) ([]domain.EventDiscount, error) {
	const op = "postgres.DiscountRepo.ListActiveByEvent"

	discounts, err := r.list(ctx,
		`SELECT `+discountColumns+`
		 FROM event_discounts
		 WHERE event_id = $1 AND is_active
		 ORDER BY created_at, id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := r.loadRules(ctx, discounts); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return discounts, nil
}

// ListByEvent returns every discount of one event, active or not, with rules
// loaded. Used by the organizer screens.
func (r *DiscountRepo) ListByEvent(ctx context.Context, eventID int64) ([]domain.EventDiscount, error) {
	const op = "postgres.DiscountRepo.ListByEvent"

	discounts, err := r.list(ctx,
		`SELECT `+discountColumns+`
		 FROM event_discounts
		 WHERE event_id = $1
		 ORDER BY created_at, id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := r.loadRules(ctx, discounts); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return discounts, nil
}

// Get retrieves one discount with its rules.
//
// Returns:
//   - error: repository.ErrNotFound if the discount does not exist.
func (r *DiscountRepo) Get(ctx context.Context, id int64) (*domain.EventDiscount, error) {
	const op = "postgres.DiscountRepo.Get"

	db := r.handle()

	row := db.QueryRow(ctx,
		`SELECT `+discountColumns+`
		 FROM event_discounts
		 WHERE id = $1`,
		id,
	)

	d, err := scanDiscount(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	discounts := []domain.EventDiscount{*d}
	if err := r.loadRules(ctx, discounts); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &discounts[0], nil
}

// Create inserts a discount and its nested rules and returns the discount ID.
func (r *DiscountRepo) Create(ctx context.Context, d *domain.EventDiscount) (int64, error) {
	const op = "postgres.DiscountRepo.Create"

	db := r.handle()

	var id int64
	err := db.QueryRow(ctx,
		`INSERT INTO event_discounts(
			event_id, name, discount_type, value_type, value,
			start_date, end_date, min_quantity, max_quantity, max_uses, is_active)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
      	 RETURNING id`,
		d.EventID, d.Name, d.Type, d.ValueType, d.Value,
		d.StartDate, d.EndDate, d.MinQuantity, d.MaxQuantity, d.MaxUses, d.Active,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	batch := &pgx.Batch{}
	for _, rule := range d.ParticipantRules {
		batch.Queue(
			`INSERT INTO participant_discount_rules(
				discount_id, rule_type, field_name, field_value, operator,
				related_event_id, participation_status, match_fields)
         	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, rule.Type, rule.FieldName, rule.FieldValue, rule.Operator,
			rule.RelatedEventID, rule.ParticipationStatus, rule.MatchFields,
		)
	}
	for _, rule := range d.SeatRules {
		batch.Queue(
			`INSERT INTO seat_discount_rules(discount_id, min_seats, max_seats, value)
         	 VALUES ($1, $2, $3, $4)`,
			id, rule.MinSeats, rule.MaxSeats, rule.Value,
		)
	}
	if batch.Len() > 0 {
		if err := db.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
	}

	return id, nil
}

// SetActive flips the activation flag of a discount.
//
// Returns:
//   - error: repository.ErrNotFound if the discount does not exist.
func (r *DiscountRepo) SetActive(ctx context.Context, id int64, active bool) error {
	const op = "postgres.DiscountRepo.SetActive"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE event_discounts SET is_active = $2 WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// IncrementUsage bumps current_uses by one, guarded against the usage cap in
// the same statement so concurrent bookings cannot oversell a capped discount.
// Run it inside the booking transaction via With.
//
// Returns:
//   - error: repository.ErrUsageCapReached if the cap is already exhausted.
func (r *DiscountRepo) IncrementUsage(ctx context.Context, id int64) error {
	const op = "postgres.DiscountRepo.IncrementUsage"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE event_discounts
        	SET current_uses = current_uses + 1
      	 WHERE id = $1
        	AND (max_uses IS NULL OR current_uses < max_uses)`,
		id,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrUsageCapReached)
	}

	return nil
}

func (r *DiscountRepo) list(ctx context.Context, sql string, args ...any) ([]domain.EventDiscount, error) {
	db := r.handle()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translateDBErr(err)
	}

	defer rows.Close()

	var out []domain.EventDiscount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, translateDBErr(err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func scanDiscount(row pgx.Row) (*domain.EventDiscount, error) {
	var d domain.EventDiscount
	err := row.Scan(
		&d.ID, &d.EventID, &d.Name, &d.Type, &d.ValueType, &d.Value,
		&d.StartDate, &d.EndDate, &d.MinQuantity, &d.MaxQuantity,
		&d.MaxUses, &d.CurrentUses, &d.Active, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// loadRules attaches participant and seat rules to the given discounts with
// two ANY() queries.
func (r *DiscountRepo) loadRules(ctx context.Context, discounts []domain.EventDiscount) error {
	if len(discounts) == 0 {
		return nil
	}

	db := r.handle()

	ids := make([]int64, len(discounts))
	byID := make(map[int64]*domain.EventDiscount, len(discounts))
	for i := range discounts {
		ids[i] = discounts[i].ID
		byID[discounts[i].ID] = &discounts[i]
	}

	rows, err := db.Query(ctx,
		`SELECT id, discount_id, rule_type, field_name, field_value, operator,
				related_event_id, participation_status, match_fields
		 FROM participant_discount_rules
		 WHERE discount_id = ANY($1)
		 ORDER BY id`,
		ids,
	)
	if err != nil {
		return translateDBErr(err)
	}

	defer rows.Close()

	for rows.Next() {
		var rule domain.ParticipantRule
		if err := rows.Scan(
			&rule.ID, &rule.DiscountID, &rule.Type, &rule.FieldName,
			&rule.FieldValue, &rule.Operator, &rule.RelatedEventID,
			&rule.ParticipationStatus, &rule.MatchFields,
		); err != nil {
			return translateDBErr(err)
		}
		if d := byID[rule.DiscountID]; d != nil {
			d.ParticipantRules = append(d.ParticipantRules, rule)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	seatRows, err := db.Query(ctx,
		`SELECT id, discount_id, min_seats, max_seats, value
		 FROM seat_discount_rules
		 WHERE discount_id = ANY($1)
		 ORDER BY min_seats`,
		ids,
	)
	if err != nil {
		return translateDBErr(err)
	}

	defer seatRows.Close()

	for seatRows.Next() {
		var rule domain.SeatRule
		if err := seatRows.Scan(
			&rule.ID, &rule.DiscountID, &rule.MinSeats, &rule.MaxSeats, &rule.Value,
		); err != nil {
			return translateDBErr(err)
		}
		if d := byID[rule.DiscountID]; d != nil {
			d.SeatRules = append(d.SeatRules, rule)
		}
	}

	return seatRows.Err()
}
