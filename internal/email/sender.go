package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
)

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
	// Ref is a stable caller-side identity for the message. Providers that
	// dedup on it collapse retries of the same message into one delivery.
	Ref string
}

// Sender delivers one email and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, e Email) (string, error)
}

// NopSender drops every email. Used when no delivery provider is configured,
// typically in local development.
type NopSender struct{}

func (NopSender) Send(_ context.Context, e Email) (string, error) {
	return "nop-" + uuid.New().String(), nil
}

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

func NewResendSender(apiKey, fromEmail, fromName string, logger *slog.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   fmt.Sprintf("%s <%s>", fromName, fromEmail),
		logger: logger,
	}
}

func (s *ResendSender) Send(ctx context.Context, e Email) (string, error) {
	const op = "email.ResendSender.Send"

	ref := e.Ref
	if ref == "" {
		ref = uuid.New().String()
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{e.To},
		Subject: e.Subject,
		Html:    e.HTML,
		Text:    e.Text,
		Headers: map[string]string{
			"X-Entity-Ref-ID": ref,
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "booking"},
		},
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("failed to send email", "to", e.To, "subject", e.Subject, "error", err)
		return "", fmt.Errorf("%s:%w", op, err)
	}

	s.logger.Info("email sent", "email_id", sent.Id, "to", e.To, "subject", e.Subject)

	return sent.Id, nil
}
