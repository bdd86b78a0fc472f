package discounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fianchetto/clubtix/internal/discount"
	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/metrics"
	"github.com/fianchetto/clubtix/internal/repository"
	postgresrepo "github.com/fianchetto/clubtix/internal/repository/postgres"
	redisrepo "github.com/fianchetto/clubtix/internal/repository/redis"
	"github.com/shopspring/decimal"
)

type Config struct {
	// SnapshotTTL bounds how stale a cached discount snapshot may be.
	SnapshotTTL time.Duration
}

// Service answers calculate-discounts requests: it loads the event's active
// discount snapshot (through the cache) and runs the evaluation engine over
// the submitted booking attempt.
type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	engine *discount.Engine
	logger *slog.Logger
	cfg    Config
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 15 * time.Second
	}

	return &Service{
		store:  store,
		cache:  cache,
		engine: discount.NewEngine(priorSource{store: store}, logger, discount.Config{}),
		logger: logger,
		cfg:    cfg,
	}
}

// priorSource adapts the booking repository for previous_event rules.
type priorSource struct {
	store *postgresrepo.Store
}

func (s priorSource) ListByEventAndStatus(
	ctx context.Context,
	eventID int64,
	statuses []domain.BookingStatus,
) ([]domain.Booking, error) {
	return s.store.Bookings().ListByEventAndStatus(ctx, eventID, statuses)
}

// Calculate evaluates every applicable discount of the event against one
// booking attempt.
//
// Parameters:
//   - ctx: request-scoped context.
//   - eventID: ID of the event being booked.
//   - participants: attendee records submitted with the attempt.
//   - baseAmount: undiscounted total.
//   - quantity: requested ticket quantity.
//
// Returns:
//   - *domain.Quote: totals and per-discount application records.
//   - error: discounts.ErrEventNotFound if the event does not exist.
func (s *Service) Calculate(
	ctx context.Context,
	eventID int64,
	participants []domain.Participant,
	baseAmount decimal.Decimal,
	quantity int,
) (*domain.Quote, error) {
	const op = "service.discounts.Calculate"

	if _, err := s.store.Events().Get(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	snapshot, err := s.snapshot(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if len(snapshot) == 0 {
		metrics.DiscountEvaluations.WithLabelValues("no_discounts").Inc()
		return &domain.Quote{
			TotalDiscount: decimal.Zero,
			Applied:       []domain.AppliedDiscount{},
			FinalAmount:   baseAmount,
		}, nil
	}

	quote := s.engine.Evaluate(ctx, discount.Input{
		Discounts:    snapshot,
		Participants: participants,
		Quantity:     quantity,
		BaseAmount:   baseAmount,
	})

	if len(quote.Applied) > 0 {
		metrics.DiscountEvaluations.WithLabelValues("applied").Inc()
	} else {
		metrics.DiscountEvaluations.WithLabelValues("none_applied").Inc()
	}

	return &quote, nil
}

// snapshot returns the event's active discounts, served from the cache when
// possible. The snapshot is invalidated on discount edits and bookings, and
// expires on its own after SnapshotTTL.
func (s *Service) snapshot(ctx context.Context, eventID int64) ([]domain.EventDiscount, error) {
	if s.cache == nil {
		return s.store.Discounts().ListActiveByEvent(ctx, eventID)
	}

	return redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyEventDiscounts(eventID),
		s.cfg.SnapshotTTL,
		func(ctx context.Context) ([]domain.EventDiscount, error) {
			return s.store.Discounts().ListActiveByEvent(ctx, eventID)
		},
	)
}
