package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepo_CreateReturnsDBCreatedAt(t *testing.T) {
	ctx := context.Background()
	tx := testTx(t)

	eventID, err := (&EventRepo{}).With(tx).Create(ctx, &domain.Event{
		Title:    "Autumn Blitz Open",
		Location: "Club hall",
		Starts:   time.Now().Add(24 * time.Hour),
		Ends:     time.Now().Add(28 * time.Hour),
	})
	require.NoError(t, err)

	repo := (&BookingRepo{}).With(tx)

	b := &domain.Booking{
		ID:            uuid.New(),
		EventID:       eventID,
		Status:        domain.BookingPending,
		ContactEmail:  "member@club.test",
		Quantity:      2,
		BaseAmount:    decimal.NewFromInt(100),
		TotalDiscount: decimal.Zero,
		FinalAmount:   decimal.NewFromInt(100),
	}
	require.NoError(t, repo.Create(ctx, b))

	assert.False(t, b.CreatedAt.IsZero())

	got, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(b.CreatedAt))
}
