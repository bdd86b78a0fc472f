package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/repository"
	postgresrepo "github.com/fianchetto/clubtix/internal/repository/postgres"
	redisrepo "github.com/fianchetto/clubtix/internal/repository/redis"
	"github.com/google/uuid"
)

type Config struct {
	EventTTL time.Duration
}

// Service serves the read side: events, bookings and their participants.
type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.EventTTL <= 0 {
		cfg.EventTTL = time.Minute
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// GetEvent retrieves one event, served from the cache when possible.
//
// Returns:
//   - error: query.ErrEventNotFound if the event does not exist.
func (s *Service) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "service.query.GetEvent"

	load := func(ctx context.Context) (*domain.Event, error) {
		return s.store.Events().Get(ctx, id)
	}

	var e *domain.Event
	var err error

	if s.cache != nil {
		e, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyEventSummary(id), s.cfg.EventTTL, load)
	} else {
		e, err = load(ctx)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return e, nil
}

func (s *Service) ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	const op = "service.query.ListEvents"

	events, err := s.store.Events().List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return events, nil
}

// GetBooking retrieves one booking with participants.
//
// Returns:
//   - error: query.ErrBookingNotFound if the booking does not exist.
func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.query.GetBooking"

	b, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

// ListBookings returns the bookings of one event, optionally narrowed to a
// status set. An empty set means every status.
func (s *Service) ListBookings(
	ctx context.Context,
	eventID int64,
	statuses []domain.BookingStatus,
) ([]domain.Booking, error) {
	const op = "service.query.ListBookings"

	if len(statuses) == 0 {
		statuses = []domain.BookingStatus{
			domain.BookingPending,
			domain.BookingConfirmed,
			domain.BookingVerified,
			domain.BookingCancelled,
		}
	}

	bookings, err := s.store.Bookings().ListByEventAndStatus(ctx, eventID, statuses)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return bookings, nil
}
