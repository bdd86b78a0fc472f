package pdf

import (
	"testing"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureBooking() (*domain.Event, *domain.Booking) {
	starts := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	e := &domain.Event{
		ID:       1,
		Title:    "Spring Rapid Open",
		Location: "Clubhouse, Main Hall",
		Starts:   starts,
		Ends:     starts.Add(4 * time.Hour),
	}
	b := &domain.Booking{
		ID:            uuid.New(),
		EventID:       1,
		Status:        domain.BookingConfirmed,
		ContactEmail:  "captain@club.test",
		Quantity:      2,
		BaseAmount:    decimal.NewFromInt(50),
		TotalDiscount: decimal.NewFromInt(10),
		FinalAmount:   decimal.NewFromInt(40),
		CreatedAt:     starts.AddDate(0, -1, 0),
		Participants: []domain.Participant{
			{FirstName: "Vera", LastName: "Menchik"},
			{FirstName: "Paul", LastName: "Keres"},
		},
	}
	return e, b
}

func TestTicket(t *testing.T) {
	e, b := fixtureBooking()

	doc, err := Ticket(e, b)

	require.NoError(t, err)
	require.NotEmpty(t, doc)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestReceipt(t *testing.T) {
	e, b := fixtureBooking()

	doc, err := Receipt(e, b)

	require.NoError(t, err)
	require.NotEmpty(t, doc)
	assert.Equal(t, "%PDF", string(doc[:4]))
}
