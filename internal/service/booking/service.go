package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fianchetto/clubtix/internal/discount"
	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/repository"
	postgresrepo "github.com/fianchetto/clubtix/internal/repository/postgres"
	redisrepo "github.com/fianchetto/clubtix/internal/repository/redis"
	redisx "github.com/fianchetto/clubtix/internal/redis"
	"github.com/fianchetto/clubtix/internal/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Config struct {
	// ConfirmationDelay shifts the scheduled time of the confirmation email.
	ConfirmationDelay time.Duration
}

// Service creates and manages bookings. Creation prices the booking through
// the discount engine with a fresh snapshot, persists booking and
// participants, and bumps the usage counter of every applied capped discount
// in the same transaction, so a cap can never be oversold by concurrent
// bookings.
type Service struct {
	store   *postgresrepo.Store
	cache   *redisrepo.Cache
	pubsub  *redisx.EventsPubSub
	limiter *redisrepo.SlidingWindowLimiter
	engine  *discount.Engine
	uow     *uow.UoW
	logger  *slog.Logger
	cfg     Config
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisx.EventsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
	cfg Config,
) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		engine:  discount.NewEngine(priorSource{store: store}, logger, discount.Config{}),
		uow:     uow.NewUoW(store),
		logger:  logger,
		cfg:     cfg,
	}
}

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

// Create books an event.
//
// Parameters:
//   - ctx: request-scoped context.
//   - eventID: ID of the event to book.
//   - contactEmail: where confirmations are sent.
//   - participants: attendee records.
//   - baseAmount: undiscounted total.
//   - quantity: requested ticket quantity.
//   - rlKey: rate-limiter key, empty to skip limiting.
//
// Returns:
//   - *domain.Booking: the persisted booking, priced.
//   - error: booking.ErrEventNotFound if the event does not exist.
//   - error: booking.ErrDiscountExhausted if a capped discount ran out
//     between evaluation and commit.
func (s *Service) Create(
	ctx context.Context,
	eventID int64,
	contactEmail string,
	participants []domain.Participant,
	baseAmount decimal.Decimal,
	quantity int,
	rlKey string,
) (*domain.Booking, error) {
	const op = "service.booking.Create"

	if quantity < 1 {
		return nil, fmt.Errorf("%s: quantity must be at least 1", op)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	event, err := s.store.Events().Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	// Pricing reads a fresh snapshot, bypassing the cache: the usage
	// counters checked here are the ones guarded below.
	snapshot, err := s.store.Discounts().ListActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	quote := s.engine.Evaluate(ctx, discount.Input{
		Discounts:    snapshot,
		Participants: participants,
		Quantity:     quantity,
		BaseAmount:   baseAmount,
	})

	capped := make(map[int64]bool, len(snapshot))
	for _, d := range snapshot {
		if d.MaxUses != nil {
			capped[d.ID] = true
		}
	}

	b := &domain.Booking{
		ID:            uuid.New(),
		EventID:       eventID,
		Status:        domain.BookingPending,
		ContactEmail:  contactEmail,
		Quantity:      quantity,
		BaseAmount:    baseAmount,
		TotalDiscount: quote.TotalDiscount,
		FinalAmount:   quote.FinalAmount,
		Participants:  participants,
	}

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if err := s.store.Bookings().With(tx).Create(ctx, b); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrBookingConflict)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		for _, ad := range quote.Applied {
			if !capped[ad.DiscountID] {
				continue
			}
			if err := s.store.Discounts().With(tx).IncrementUsage(ctx, ad.DiscountID); err != nil {
				if errors.Is(err, repository.ErrUsageCapReached) {
					return fmt.Errorf("%s:%w", op, ErrDiscountExhausted)
				}
				return fmt.Errorf("%s:%w", op, err)
			}
		}

		confirmation := confirmationEmail(event, b)
		confirmation.ScheduledAt = time.Now().Add(s.cfg.ConfirmationDelay)
		if _, err := s.store.Outbox().With(tx).Enqueue(ctx, confirmation); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateEvent(ctx, eventID)
			_ = s.pubsub.PublishEventChanged(ctx, eventID)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

// SetStatus moves a booking along pending -> confirmed -> verified, or to
// cancelled.
//
// Returns:
//   - error: booking.ErrBookingNotFound if the booking does not exist.
//   - error: booking.ErrInvalidTransition for a disallowed move.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	const op = "service.booking.SetStatus"

	current, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	if !transitionAllowed(current.Status, status) {
		return fmt.Errorf("%s:%w", op, ErrInvalidTransition)
	}

	if err := s.store.Bookings().UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	_ = s.cache.InvalidateEvent(ctx, current.EventID)
	_ = s.pubsub.PublishEventChanged(ctx, current.EventID)

	return nil
}

func transitionAllowed(from, to domain.BookingStatus) bool {
	if to == domain.BookingCancelled {
		return from != domain.BookingCancelled
	}

	switch from {
	case domain.BookingPending:
		return to == domain.BookingConfirmed
	case domain.BookingConfirmed:
		return to == domain.BookingVerified
	default:
		return false
	}
}

func confirmationEmail(e *domain.Event, b *domain.Booking) *domain.ScheduledEmail {
	subject := fmt.Sprintf("Your booking for %s", e.Title)

	html := fmt.Sprintf(
		`<p>Thanks for booking <strong>%s</strong>.</p>
<p>%d ticket(s), total %s.</p>
<p>Your booking reference is <code>%s</code>. Keep it handy at the door.</p>`,
		e.Title, b.Quantity, b.FinalAmount.StringFixed(2), b.ID,
	)

	text := fmt.Sprintf(
		"Thanks for booking %s.\n%d ticket(s), total %s.\nBooking reference: %s\n",
		e.Title, b.Quantity, b.FinalAmount.StringFixed(2), b.ID,
	)

	bid := b.ID
	return &domain.ScheduledEmail{
		BookingID: &bid,
		Recipient: b.ContactEmail,
		Subject:   subject,
		HTMLBody:  html,
		TextBody:  text,
	}
}
