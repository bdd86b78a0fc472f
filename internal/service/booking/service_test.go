package booking

import (
	"testing"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to domain.BookingStatus
		want     bool
	}{
		{domain.BookingPending, domain.BookingConfirmed, true},
		{domain.BookingConfirmed, domain.BookingVerified, true},
		{domain.BookingPending, domain.BookingVerified, false},
		{domain.BookingVerified, domain.BookingConfirmed, false},
		{domain.BookingPending, domain.BookingCancelled, true},
		{domain.BookingConfirmed, domain.BookingCancelled, true},
		{domain.BookingVerified, domain.BookingCancelled, true},
		{domain.BookingCancelled, domain.BookingCancelled, false},
		{domain.BookingCancelled, domain.BookingConfirmed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, transitionAllowed(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
