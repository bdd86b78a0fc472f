package admin

import (
	"testing"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validBase() *domain.EventDiscount {
	return &domain.EventDiscount{
		EventID:   1,
		Name:      "early bird",
		Type:      domain.DiscountSeatBased,
		ValueType: domain.ValuePercentage,
		Value:     decimal.NewFromInt(10),
		Active:    true,
	}
}

func TestValidateDiscount(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	timePtr := func(t time.Time) *time.Time { return &t }
	relID := int64(2)

	tests := []struct {
		name    string
		mutate  func(d *domain.EventDiscount)
		wantErr bool
	}{
		{"valid seat percentage", func(d *domain.EventDiscount) {}, false},
		{"unknown discount type", func(d *domain.EventDiscount) { d.Type = "bulk" }, true},
		{"unknown value type", func(d *domain.EventDiscount) { d.ValueType = "points" }, true},
		{"zero value", func(d *domain.EventDiscount) { d.Value = decimal.Zero }, true},
		{"percentage over 100", func(d *domain.EventDiscount) { d.Value = decimal.NewFromInt(150) }, true},
		{"fixed over 100 is fine", func(d *domain.EventDiscount) {
			d.ValueType = domain.ValueFixed
			d.Value = decimal.NewFromInt(150)
		}, false},
		{"end before start", func(d *domain.EventDiscount) {
			now := time.Now()
			d.StartDate = timePtr(now)
			d.EndDate = timePtr(now.Add(-time.Hour))
		}, true},
		{"inverted quantity window", func(d *domain.EventDiscount) {
			d.MinQuantity = intPtr(5)
			d.MaxQuantity = intPtr(2)
		}, true},
		{"zero max uses", func(d *domain.EventDiscount) { d.MaxUses = intPtr(0) }, true},
		{"previous_event rule without related event", func(d *domain.EventDiscount) {
			d.Type = domain.DiscountParticipantBased
			d.ParticipantRules = []domain.ParticipantRule{{Type: domain.RulePreviousEvent}}
		}, true},
		{"previous_event rule with related event", func(d *domain.EventDiscount) {
			d.Type = domain.DiscountParticipantBased
			d.ParticipantRules = []domain.ParticipantRule{
				{Type: domain.RulePreviousEvent, RelatedEventID: &relID},
			}
		}, false},
		{"unknown rule type", func(d *domain.EventDiscount) {
			d.ParticipantRules = []domain.ParticipantRule{{Type: "astrological"}}
		}, true},
		{"seat rule with zero min", func(d *domain.EventDiscount) {
			d.SeatRules = []domain.SeatRule{{MinSeats: 0, Value: decimal.NewFromInt(5)}}
		}, true},
		{"seat rule inverted window", func(d *domain.EventDiscount) {
			d.SeatRules = []domain.SeatRule{{MinSeats: 4, MaxSeats: intPtr(2), Value: decimal.NewFromInt(5)}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validBase()
			tt.mutate(d)

			err := validateDiscount(d)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
