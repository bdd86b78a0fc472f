package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/fianchetto/clubtix/internal/domain"
	redisx "github.com/fianchetto/clubtix/internal/redis"
	"github.com/fianchetto/clubtix/internal/repository"
	postgresrepo "github.com/fianchetto/clubtix/internal/repository/postgres"
	redisrepo "github.com/fianchetto/clubtix/internal/repository/redis"
	"github.com/shopspring/decimal"
)

// Service covers the organizer side: event CRUD and discount management.
// Every write invalidates the event's cached snapshots and notifies other
// instances.
type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisx.EventsPubSub
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, pubsub *redisx.EventsPubSub) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
	}
}

func (s *Service) CreateEvent(ctx context.Context, e *domain.Event) (int64, error) {
	const op = "service.admin.CreateEvent"

	if e.Title == "" {
		return 0, fmt.Errorf("%s: title is required", op)
	}
	if !e.Ends.After(e.Starts) {
		return 0, fmt.Errorf("%s: event must end after it starts", op)
	}

	id, err := s.store.Events().Create(ctx, e)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, fmt.Errorf("%s:%w", op, ErrEventConflict)
		}
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return id, nil
}

func (s *Service) UpdateEvent(ctx context.Context, e *domain.Event) error {
	const op = "service.admin.UpdateEvent"

	if err := s.store.Events().Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	s.invalidate(ctx, e.ID)

	return nil
}

// CreateDiscount validates and stores a discount with its nested rules.
//
// Returns:
//   - int64: the new discount ID.
//   - error: admin.ErrEventNotFound if the target event does not exist.
//   - error: admin.ErrInvalidDiscount for a malformed definition.
func (s *Service) CreateDiscount(ctx context.Context, d *domain.EventDiscount) (int64, error) {
	const op = "service.admin.CreateDiscount"

	if err := validateDiscount(d); err != nil {
		return 0, fmt.Errorf("%s:%w: %s", op, ErrInvalidDiscount, err)
	}

	if _, err := s.store.Events().Get(ctx, d.EventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	id, err := s.store.Discounts().Create(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	s.invalidate(ctx, d.EventID)

	return id, nil
}

// SetDiscountActive flips a discount's activation flag.
//
// Returns:
//   - error: admin.ErrDiscountNotFound if the discount does not exist.
func (s *Service) SetDiscountActive(ctx context.Context, id int64, active bool) error {
	const op = "service.admin.SetDiscountActive"

	d, err := s.store.Discounts().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrDiscountNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Discounts().SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	s.invalidate(ctx, d.EventID)

	return nil
}

// ListDiscounts returns every discount of one event, including inactive ones.
func (s *Service) ListDiscounts(ctx context.Context, eventID int64) ([]domain.EventDiscount, error) {
	const op = "service.admin.ListDiscounts"

	discounts, err := s.store.Discounts().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return discounts, nil
}

func (s *Service) invalidate(ctx context.Context, eventID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, eventID)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishEventChanged(ctx, eventID)
	}
}

func validateDiscount(d *domain.EventDiscount) error {
	switch d.Type {
	case domain.DiscountParticipantBased, domain.DiscountSeatBased:
	default:
		return fmt.Errorf("unknown discount type %q", d.Type)
	}

	switch d.ValueType {
	case domain.ValuePercentage, domain.ValueFixed:
	default:
		return fmt.Errorf("unknown value type %q", d.ValueType)
	}

	if d.Value.LessThanOrEqual(decimal.Zero) {
		return errors.New("value must be positive")
	}
	if d.ValueType == domain.ValuePercentage && d.Value.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("percentage cannot exceed 100")
	}

	if d.StartDate != nil && d.EndDate != nil && d.EndDate.Before(*d.StartDate) {
		return errors.New("end date precedes start date")
	}
	if d.MinQuantity != nil && d.MaxQuantity != nil && *d.MaxQuantity < *d.MinQuantity {
		return errors.New("max quantity below min quantity")
	}
	if d.MaxUses != nil && *d.MaxUses < 1 {
		return errors.New("max uses must be at least 1")
	}

	for _, rule := range d.ParticipantRules {
		switch rule.Type {
		case domain.RuleNameMatch, domain.RuleDOBMatch, domain.RuleCustom:
		case domain.RulePreviousEvent:
			if rule.RelatedEventID == nil {
				return errors.New("previous_event rule requires a related event")
			}
		default:
			return fmt.Errorf("unknown rule type %q", rule.Type)
		}
	}

	for _, rule := range d.SeatRules {
		if rule.MinSeats < 1 {
			return errors.New("seat rule min_seats must be at least 1")
		}
		if rule.MaxSeats != nil && *rule.MaxSeats < rule.MinSeats {
			return errors.New("seat rule max_seats below min_seats")
		}
	}

	return nil
}
