package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/pdf"
	"github.com/fianchetto/clubtix/internal/repository"
	postgresrepo "github.com/fianchetto/clubtix/internal/repository/postgres"
	"github.com/google/uuid"
)

// Service renders downloadable booking documents.
type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

// Ticket renders the entry ticket PDF for a booking.
//
// Returns:
//   - []byte: the PDF document.
//   - error: tickets.ErrBookingNotFound if the booking does not exist.
func (s *Service) Ticket(ctx context.Context, bookingID uuid.UUID) ([]byte, error) {
	const op = "service.tickets.Ticket"

	e, b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	doc, err := pdf.Ticket(e, b)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return doc, nil
}

// Receipt renders the payment receipt PDF for a booking.
//
// Returns:
//   - []byte: the PDF document.
//   - error: tickets.ErrBookingNotFound if the booking does not exist.
func (s *Service) Receipt(ctx context.Context, bookingID uuid.UUID) ([]byte, error) {
	const op = "service.tickets.Receipt"

	e, b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	doc, err := pdf.Receipt(e, b)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return doc, nil
}

func (s *Service) load(ctx context.Context, bookingID uuid.UUID) (*domain.Event, *domain.Booking, error) {
	b, err := s.store.Bookings().Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, err
	}

	e, err := s.store.Events().Get(ctx, b.EventID)
	if err != nil {
		return nil, nil, err
	}

	return e, b, nil
}
