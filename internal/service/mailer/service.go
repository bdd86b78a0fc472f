package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/email"
	"github.com/fianchetto/clubtix/internal/metrics"
)

// Outbox is the slice of the outbox repository the worker needs.
type Outbox interface {
	ClaimDue(ctx context.Context, limit int, reclaimAfter time.Duration) ([]domain.ScheduledEmail, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, cause string) error
}

type Config struct {
	// Interval between polls of the outbox table.
	Interval time.Duration
	// BatchSize caps how many rows one poll claims.
	BatchSize int
	// ReclaimAfter is how long a claimed row may sit in 'processing' before a
	// later pass treats the claiming worker as dead and claims it again. Must
	// comfortably exceed the time one batch takes to deliver.
	ReclaimAfter time.Duration
}

// Service drains the scheduled_emails outbox: claims due rows, delivers them
// through the configured sender and records the outcome per row.
type Service struct {
	outbox Outbox
	sender email.Sender
	logger *slog.Logger
	cfg    Config
}

func New(outbox Outbox, sender email.Sender, logger *slog.Logger, cfg Config) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.ReclaimAfter <= 0 {
		cfg.ReclaimAfter = 10 * time.Minute
	}

	return &Service{
		outbox: outbox,
		sender: sender,
		logger: logger,
		cfg:    cfg,
	}
}

// Run polls the outbox until ctx is cancelled. A failed poll is logged and
// retried on the next tick; cancellation returns nil so the app's errgroup
// treats shutdown as clean.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.ProcessDue(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("outbox pass failed", "error", err)
			}
		}
	}
}

// ProcessDue claims and delivers one batch of due emails.
//
// Returns:
//   - int: how many emails were delivered.
//   - error: only when the claim itself fails. Per-email delivery failures
//     are recorded on the row and do not stop the batch.
func (s *Service) ProcessDue(ctx context.Context) (int, error) {
	const op = "service.mailer.ProcessDue"

	batch, err := s.outbox.ClaimDue(ctx, s.cfg.BatchSize, s.cfg.ReclaimAfter)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	sent := 0
	for _, row := range batch {
		if err := s.deliver(ctx, row); err != nil {
			metrics.OutboxEmails.WithLabelValues("error").Inc()
			s.logger.Error("email delivery failed",
				"email_id", row.ID, "recipient", row.Recipient, "error", err)

			if markErr := s.outbox.MarkFailed(ctx, row.ID, err.Error()); markErr != nil {
				s.logger.Error("failed to mark email as failed",
					"email_id", row.ID, "error", markErr)
			}
			continue
		}

		metrics.OutboxEmails.WithLabelValues("sent").Inc()
		sent++

		if err := s.outbox.MarkSent(ctx, row.ID); err != nil {
			// Delivered but not recorded; the row stays in 'processing' and
			// will be reclaimed and resent after ReclaimAfter.
			s.logger.Error("failed to mark email as sent",
				"email_id", row.ID, "error", err)
		}
	}

	s.logger.Info("outbox pass finished", "claimed", len(batch), "sent", sent)

	return sent, nil
}

func (s *Service) deliver(ctx context.Context, row domain.ScheduledEmail) error {
	// The row ID as Ref lets the provider collapse a reclaimed resend and the
	// original delivery into one message.
	_, err := s.sender.Send(ctx, email.Email{
		To:      row.Recipient,
		Subject: row.Subject,
		HTML:    row.HTMLBody,
		Text:    row.TextBody,
		Ref:     fmt.Sprintf("scheduled-email-%d", row.ID),
	})
	return err
}
