package mailer

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/fianchetto/clubtix/internal/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	due      []domain.ScheduledEmail
	claimErr error

	sentIDs    []int64
	failedIDs  []int64
	causes     []string
	gotLimit   int
	gotReclaim time.Duration
}

func (f *fakeOutbox) ClaimDue(_ context.Context, limit int, reclaimAfter time.Duration) ([]domain.ScheduledEmail, error) {
	f.gotLimit = limit
	f.gotReclaim = reclaimAfter
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	out := f.due
	f.due = nil
	return out, nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, id int64) error {
	f.sentIDs = append(f.sentIDs, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id int64, cause string) error {
	f.failedIDs = append(f.failedIDs, id)
	f.causes = append(f.causes, cause)
	return nil
}

type fakeSender struct {
	failFor map[string]error
	sent    []email.Email
}

func (f *fakeSender) Send(_ context.Context, e email.Email) (string, error) {
	if err, ok := f.failFor[e.To]; ok {
		return "", err
	}
	f.sent = append(f.sent, e)
	return "msg_1", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestProcessDue_EmptyOutbox(t *testing.T) {
	outbox := &fakeOutbox{}
	sender := &fakeSender{}
	svc := New(outbox, sender, discardLogger(), Config{BatchSize: 10})

	n, err := svc.ProcessDue(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 10, outbox.gotLimit)
	assert.Empty(t, sender.sent)
}

func TestProcessDue_PassesReclaimWindow(t *testing.T) {
	outbox := &fakeOutbox{}
	svc := New(outbox, &fakeSender{}, discardLogger(), Config{ReclaimAfter: 3 * time.Minute})

	_, err := svc.ProcessDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, outbox.gotReclaim)
}

func TestProcessDue_DefaultReclaimWindow(t *testing.T) {
	outbox := &fakeOutbox{}
	svc := New(outbox, &fakeSender{}, discardLogger(), Config{})

	_, err := svc.ProcessDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, outbox.gotReclaim)
}

func TestProcessDue_DeliversBatch(t *testing.T) {
	outbox := &fakeOutbox{
		due: []domain.ScheduledEmail{
			{ID: 1, Recipient: "a@club.test", Subject: "Booking confirmed"},
			{ID: 2, Recipient: "b@club.test", Subject: "Booking confirmed"},
		},
	}
	sender := &fakeSender{}
	svc := New(outbox, sender, discardLogger(), Config{})

	n, err := svc.ProcessDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 2}, outbox.sentIDs)
	assert.Empty(t, outbox.failedIDs)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "a@club.test", sender.sent[0].To)
	assert.Equal(t, "scheduled-email-1", sender.sent[0].Ref)
}

func TestProcessDue_FailureDoesNotStopBatch(t *testing.T) {
	outbox := &fakeOutbox{
		due: []domain.ScheduledEmail{
			{ID: 1, Recipient: "bounce@club.test"},
			{ID: 2, Recipient: "ok@club.test"},
		},
	}
	sender := &fakeSender{
		failFor: map[string]error{"bounce@club.test": errors.New("mailbox full")},
	}
	svc := New(outbox, sender, discardLogger(), Config{})

	n, err := svc.ProcessDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{2}, outbox.sentIDs)
	assert.Equal(t, []int64{1}, outbox.failedIDs)
	require.Len(t, outbox.causes, 1)
	assert.Contains(t, outbox.causes[0], "mailbox full")
}

func TestProcessDue_ClaimErrorPropagates(t *testing.T) {
	outbox := &fakeOutbox{claimErr: errors.New("connection refused")}
	svc := New(outbox, &fakeSender{}, discardLogger(), Config{})

	_, err := svc.ProcessDue(context.Background())

	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	outbox := &fakeOutbox{}
	svc := New(outbox, &fakeSender{}, discardLogger(), Config{Interval: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := svc.Run(ctx)

	assert.NoError(t, err)
}
