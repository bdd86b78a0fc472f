package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/repository"
	postgresrepo "github.com/fianchetto/clubtix/internal/repository/postgres"
	"github.com/google/uuid"
)

// Service handles the per-booking message thread between an attendee and the
// organizer.
type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

// Send appends a message to a booking's thread.
//
// Returns:
//   - int64: the new message ID.
//   - error: messaging.ErrBookingNotFound if the booking does not exist.
//   - error: messaging.ErrEmptyBody for a blank body.
func (s *Service) Send(ctx context.Context, bookingID uuid.UUID, sender domain.MessageSender, body string) (int64, error) {
	const op = "service.messaging.Send"

	if strings.TrimSpace(body) == "" {
		return 0, fmt.Errorf("%s:%w", op, ErrEmptyBody)
	}

	if _, err := s.store.Bookings().Get(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	id, err := s.store.Messages().Insert(ctx, &domain.Message{
		BookingID: bookingID,
		Sender:    sender,
		Body:      body,
	})
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return id, nil
}

// Thread returns a booking's messages, oldest first.
func (s *Service) Thread(ctx context.Context, bookingID uuid.UUID) ([]domain.Message, error) {
	const op = "service.messaging.Thread"

	if _, err := s.store.Bookings().Get(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	msgs, err := s.store.Messages().ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return msgs, nil
}

// MarkRead stamps a message as read. Repeated calls keep the original stamp.
func (s *Service) MarkRead(ctx context.Context, messageID int64) error {
	const op = "service.messaging.MarkRead"

	if err := s.store.Messages().MarkRead(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrMessageNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
