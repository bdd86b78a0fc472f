package discount

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fakePrior struct {
	bookings []domain.Booking
	err      error

	gotEventID  int64
	gotStatuses []domain.BookingStatus
}

func (f *fakePrior) ListByEventAndStatus(
	_ context.Context,
	eventID int64,
	statuses []domain.BookingStatus,
) ([]domain.Booking, error) {
	f.gotEventID = eventID
	f.gotStatuses = statuses

	if f.err != nil {
		return nil, f.err
	}

	var out []domain.Booking
	for _, b := range f.bookings {
		for _, s := range statuses {
			if b.Status == s {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func newTestEngine(prior PriorBookings) *Engine {
	if prior == nil {
		prior = &fakePrior{}
	}
	logger := slog.New(slog.DiscardHandler)
	return NewEngine(prior, logger, Config{Now: func() time.Time { return testNow }})
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func seatDiscount(id int64, vt domain.ValueType, value string) domain.EventDiscount {
	return domain.EventDiscount{
		ID:        id,
		Name:      "seat discount",
		Type:      domain.DiscountSeatBased,
		ValueType: vt,
		Value:     dec(value),
		Active:    true,
	}
}

func participantDiscount(id int64, vt domain.ValueType, value string, rules ...domain.ParticipantRule) domain.EventDiscount {
	return domain.EventDiscount{
		ID:               id,
		Name:             "participant discount",
		Type:             domain.DiscountParticipantBased,
		ValueType:        vt,
		Value:            dec(value),
		Active:           true,
		ParticipantRules: rules,
	}
}

func TestApplicable(t *testing.T) {
	tests := []struct {
		name     string
		discount domain.EventDiscount
		quantity int
		want     bool
	}{
		{
			name:     "no restrictions",
			discount: seatDiscount(1, domain.ValueFixed, "10"),
			quantity: 1,
			want:     true,
		},
		{
			name: "inactive",
			discount: func() domain.EventDiscount {
				d := seatDiscount(1, domain.ValueFixed, "10")
				d.Active = false
				return d
			}(),
			quantity: 1,
			want:     false,
		},
		{
			name: "start date in the future",
			discount: func() domain.EventDiscount {
				d := seatDiscount(1, domain.ValueFixed, "10")
				d.StartDate = timePtr(testNow.Add(time.Hour))
				return d
			}(),
			quantity: 1,
			want:     false,
		},
		{
			name: "end date in the past",
			discount: func() domain.EventDiscount {
				d := seatDiscount(1, domain.ValueFixed, "10")
				d.EndDate = timePtr(testNow.Add(-time.Hour))
				return d
			}(),
			quantity: 1,
			want:     false,
		},
		{
			name: "inside date window",
			discount: func() domain.EventDiscount {
				d := seatDiscount(1, domain.ValueFixed, "10")
				d.StartDate = timePtr(testNow.Add(-time.Hour))
				d.EndDate = timePtr(testNow.Add(time.Hour))
				return d
			}(),
			quantity: 1,
			want:     true,
		},
		{
			name: "below min quantity",
			discount: func() domain.EventDiscount {
				d := seatDiscount(1, domain.ValueFixed, "10")
				d.MinQuantity = intPtr(3)
				return d
			}(),
			quantity: 2,
			want:     false,
		},
		{
			name: "above max quantity",
			discount: func() domain.EventDiscount {
				d := seatDiscount(1, domain.ValueFixed, "10")
				d.MaxQuantity = intPtr(4)
				return d
			}(),
			quantity: 5,
			want:     false,
		},
		{
			name: "usage cap reached",
			discount: func() domain.EventDiscount {
				d := seatDiscount(1, domain.ValueFixed, "10")
				d.MaxUses = intPtr(5)
				d.CurrentUses = 5
				return d
			}(),
			quantity: 1,
			want:     false,
		},
		{
			name: "usage below cap",
			discount: func() domain.EventDiscount {
				d := seatDiscount(1, domain.ValueFixed, "10")
				d.MaxUses = intPtr(5)
				d.CurrentUses = 4
				return d
			}(),
			quantity: 1,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Applicable(tt.discount, tt.quantity, testNow))
		})
	}
}

func TestAmount(t *testing.T) {
	base := dec("100")

	t.Run("percentage is of the whole base, not per unit", func(t *testing.T) {
		d := seatDiscount(1, domain.ValuePercentage, "15")
		assert.True(t, dec("15").Equal(Amount(d, base, 1)))
		assert.True(t, dec("15").Equal(Amount(d, base, 7)))
	})

	t.Run("fixed is per eligible unit", func(t *testing.T) {
		d := seatDiscount(1, domain.ValueFixed, "10")
		assert.True(t, dec("30").Equal(Amount(d, base, 3)))
	})

	t.Run("clamped to base amount", func(t *testing.T) {
		d := seatDiscount(1, domain.ValueFixed, "60")
		assert.True(t, base.Equal(Amount(d, base, 5)))

		p := seatDiscount(2, domain.ValuePercentage, "150")
		assert.True(t, base.Equal(Amount(p, base, 1)))
	})
}

func TestEvaluate_NoDiscounts(t *testing.T) {
	e := newTestEngine(nil)

	q := e.Evaluate(context.Background(), Input{
		Participants: []domain.Participant{{FirstName: "A"}},
		Quantity:     2,
		BaseAmount:   dec("100"),
	})

	assert.True(t, q.TotalDiscount.IsZero())
	assert.Empty(t, q.Applied)
	assert.True(t, dec("100").Equal(q.FinalAmount))
}

// The fixed seat-based scenario from the pricing contract: a fixed value of 10
// with quantity 3 contributes 30, not 10, because fixed amounts are per
// eligible unit and seat-based discounts use the full requested quantity.
func TestEvaluate_SeatBasedFixedScalesWithQuantity(t *testing.T) {
	e := newTestEngine(nil)

	q := e.Evaluate(context.Background(), Input{
		Discounts:  []domain.EventDiscount{seatDiscount(1, domain.ValueFixed, "10")},
		Quantity:   3,
		BaseAmount: dec("100"),
	})

	require.Len(t, q.Applied, 1)
	assert.True(t, dec("30").Equal(q.TotalDiscount))
	assert.True(t, dec("30").Equal(q.Applied[0].Amount))
	assert.Equal(t, 3, q.Applied[0].Quantity)
	assert.True(t, dec("70").Equal(q.FinalAmount))
}

func TestEvaluate_FinalAmountNeverNegative(t *testing.T) {
	e := newTestEngine(nil)

	// Two 60% discounts each clamp independently against the original base,
	// so the total may exceed the base before the final floor.
	q := e.Evaluate(context.Background(), Input{
		Discounts: []domain.EventDiscount{
			seatDiscount(1, domain.ValuePercentage, "60"),
			seatDiscount(2, domain.ValuePercentage, "60"),
		},
		Quantity:   1,
		BaseAmount: dec("100"),
	})

	assert.True(t, dec("120").Equal(q.TotalDiscount))
	assert.True(t, q.FinalAmount.IsZero())
}

func TestEvaluate_SkipsInactiveAndCapped(t *testing.T) {
	e := newTestEngine(nil)

	inactive := seatDiscount(1, domain.ValueFixed, "10")
	inactive.Active = false

	capped := seatDiscount(2, domain.ValueFixed, "10")
	capped.MaxUses = intPtr(1)
	capped.CurrentUses = 1

	future := seatDiscount(3, domain.ValueFixed, "10")
	future.StartDate = timePtr(testNow.Add(24 * time.Hour))

	q := e.Evaluate(context.Background(), Input{
		Discounts:  []domain.EventDiscount{inactive, capped, future},
		Quantity:   1,
		BaseAmount: dec("100"),
	})

	assert.Empty(t, q.Applied)
	assert.True(t, q.TotalDiscount.IsZero())
	assert.True(t, dec("100").Equal(q.FinalAmount))
}

func TestEvaluate_ParticipantBased(t *testing.T) {
	dob := time.Date(2012, 6, 1, 9, 30, 0, 0, time.FixedZone("ICT", 7*3600))

	participants := []domain.Participant{
		{FirstName: "Magnus", LastName: "Carlsen", DateOfBirth: &dob},
		{FirstName: "Judit", LastName: "Polgar"},
		{FirstName: "Magnus", LastName: "Smith"},
	}

	tests := []struct {
		name         string
		rules        []domain.ParticipantRule
		wantEligible int
	}{
		{
			name:         "no rules means nobody is eligible",
			rules:        nil,
			wantEligible: 0,
		},
		{
			name: "first name equality",
			rules: []domain.ParticipantRule{
				{ID: 1, Type: domain.RuleNameMatch, FieldName: "first_name", FieldValue: "Magnus"},
			},
			wantEligible: 2,
		},
		{
			name: "last name equality",
			rules: []domain.ParticipantRule{
				{ID: 1, Type: domain.RuleNameMatch, FieldName: "last_name", FieldValue: "Polgar"},
			},
			wantEligible: 1,
		},
		{
			name: "rules are conjunctive",
			rules: []domain.ParticipantRule{
				{ID: 1, Type: domain.RuleNameMatch, FieldName: "first_name", FieldValue: "Magnus"},
				{ID: 2, Type: domain.RuleNameMatch, FieldName: "last_name", FieldValue: "Carlsen"},
			},
			wantEligible: 1,
		},
		{
			name: "dob match uses timezone-naive calendar date",
			rules: []domain.ParticipantRule{
				{ID: 1, Type: domain.RuleDOBMatch, FieldValue: "2012-06-01"},
			},
			wantEligible: 1,
		},
		{
			name: "dob match fails for missing dob",
			rules: []domain.ParticipantRule{
				{ID: 1, Type: domain.RuleDOBMatch, FieldValue: ""},
			},
			wantEligible: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(nil)
			d := participantDiscount(7, domain.ValueFixed, "5", tt.rules...)

			q := e.Evaluate(context.Background(), Input{
				Discounts:    []domain.EventDiscount{d},
				Participants: participants,
				Quantity:     3,
				BaseAmount:   dec("300"),
			})

			if tt.wantEligible == 0 {
				assert.Empty(t, q.Applied)
				return
			}

			require.Len(t, q.Applied, 1)
			assert.Equal(t, tt.wantEligible, q.Applied[0].EligibleParticipants)

			want := dec("5").Mul(decimal.NewFromInt(int64(tt.wantEligible)))
			assert.True(t, want.Equal(q.Applied[0].Amount))
		})
	}
}

func TestEvaluate_CustomRules(t *testing.T) {
	participants := []domain.Participant{
		{FirstName: "A", CustomData: map[string]string{"club": "Kings Gambit CC", "rating": "1850"}},
		{FirstName: "B", CustomData: map[string]string{"club": "Queens Indian"}},
		{FirstName: "C"},
	}

	tests := []struct {
		name         string
		rule         domain.ParticipantRule
		wantEligible int
	}{
		{
			name:         "equals",
			rule:         domain.ParticipantRule{ID: 1, Type: domain.RuleCustom, FieldName: "club", FieldValue: "Queens Indian", Operator: domain.OpEquals},
			wantEligible: 1,
		},
		{
			name:         "contains",
			rule:         domain.ParticipantRule{ID: 1, Type: domain.RuleCustom, FieldName: "club", FieldValue: "Gambit", Operator: domain.OpContains},
			wantEligible: 1,
		},
		{
			name:         "starts_with",
			rule:         domain.ParticipantRule{ID: 1, Type: domain.RuleCustom, FieldName: "club", FieldValue: "Kings", Operator: domain.OpStartsWith},
			wantEligible: 1,
		},
		{
			name:         "ends_with",
			rule:         domain.ParticipantRule{ID: 1, Type: domain.RuleCustom, FieldName: "club", FieldValue: "Indian", Operator: domain.OpEndsWith},
			wantEligible: 1,
		},
		{
			name:         "unknown operator falls back to equals",
			rule:         domain.ParticipantRule{ID: 1, Type: domain.RuleCustom, FieldName: "rating", FieldValue: "1850"},
			wantEligible: 1,
		},
		{
			name:         "missing key fails the rule",
			rule:         domain.ParticipantRule{ID: 1, Type: domain.RuleCustom, FieldName: "federation", FieldValue: "", Operator: domain.OpEquals},
			wantEligible: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(nil)
			d := participantDiscount(9, domain.ValueFixed, "2", tt.rule)

			q := e.Evaluate(context.Background(), Input{
				Discounts:    []domain.EventDiscount{d},
				Participants: participants,
				Quantity:     3,
				BaseAmount:   dec("90"),
			})

			if tt.wantEligible == 0 {
				assert.Empty(t, q.Applied)
				return
			}
			require.Len(t, q.Applied, 1)
			assert.Equal(t, tt.wantEligible, q.Applied[0].EligibleParticipants)
		})
	}
}

func TestEvaluate_PreviousEventRule(t *testing.T) {
	dob := time.Date(2010, 1, 2, 0, 0, 0, 0, time.UTC)
	relID := int64(42)

	prior := &fakePrior{
		bookings: []domain.Booking{
			{
				Status: domain.BookingConfirmed,
				Participants: []domain.Participant{
					{FirstName: "Judit", LastName: "Polgar", DateOfBirth: &dob},
				},
			},
			{
				Status: domain.BookingPending,
				Participants: []domain.Participant{
					{FirstName: "Magnus", LastName: "Carlsen"},
				},
			},
		},
	}

	rule := func(status string, fields ...string) domain.ParticipantRule {
		return domain.ParticipantRule{
			ID:                  1,
			Type:                domain.RulePreviousEvent,
			RelatedEventID:      &relID,
			ParticipationStatus: status,
			MatchFields:         fields,
		}
	}

	t.Run("any status matches pending attendance", func(t *testing.T) {
		e := newTestEngine(prior)
		d := participantDiscount(1, domain.ValueFixed, "5", rule("any"))

		q := e.Evaluate(context.Background(), Input{
			Discounts:    []domain.EventDiscount{d},
			Participants: []domain.Participant{{FirstName: "Magnus", LastName: "Carlsen"}},
			Quantity:     1,
			BaseAmount:   dec("50"),
		})

		require.Len(t, q.Applied, 1)
		assert.Equal(t, relID, prior.gotEventID)
		assert.ElementsMatch(t, []domain.BookingStatus{
			domain.BookingPending, domain.BookingConfirmed, domain.BookingVerified,
		}, prior.gotStatuses)
	})

	t.Run("confirmed requirement excludes pending attendance", func(t *testing.T) {
		e := newTestEngine(prior)
		d := participantDiscount(1, domain.ValueFixed, "5", rule("confirmed"))

		q := e.Evaluate(context.Background(), Input{
			Discounts:    []domain.EventDiscount{d},
			Participants: []domain.Participant{{FirstName: "Magnus", LastName: "Carlsen"}},
			Quantity:     1,
			BaseAmount:   dec("50"),
		})

		assert.Empty(t, q.Applied)
	})

	t.Run("unrecognized status defaults to the any set", func(t *testing.T) {
		e := newTestEngine(prior)
		d := participantDiscount(1, domain.ValueFixed, "5", rule("whatever"))

		e.Evaluate(context.Background(), Input{
			Discounts:    []domain.EventDiscount{d},
			Participants: []domain.Participant{{FirstName: "Magnus", LastName: "Carlsen"}},
			Quantity:     1,
			BaseAmount:   dec("50"),
		})

		assert.ElementsMatch(t, []domain.BookingStatus{
			domain.BookingPending, domain.BookingConfirmed, domain.BookingVerified,
		}, prior.gotStatuses)
	})

	t.Run("a single cross-pair match makes every participant eligible", func(t *testing.T) {
		e := newTestEngine(prior)
		d := participantDiscount(1, domain.ValueFixed, "5", rule("any"))

		// The second participant is the returning one; the rule still counts
		// both, since any current participant may satisfy it.
		q := e.Evaluate(context.Background(), Input{
			Discounts: []domain.EventDiscount{d},
			Participants: []domain.Participant{
				{FirstName: "New", LastName: "Member"},
				{FirstName: "Judit", LastName: "Polgar"},
			},
			Quantity:   2,
			BaseAmount: dec("100"),
		})

		require.Len(t, q.Applied, 1)
		assert.Equal(t, 2, q.Applied[0].EligibleParticipants)
		assert.True(t, dec("10").Equal(q.Applied[0].Amount))
	})

	t.Run("dob match field compares calendar dates", func(t *testing.T) {
		e := newTestEngine(prior)
		d := participantDiscount(1, domain.ValueFixed, "5",
			rule("any", "first_name", "last_name", "date_of_birth"))

		sameDay := time.Date(2010, 1, 2, 18, 45, 0, 0, time.FixedZone("CET", 3600))

		q := e.Evaluate(context.Background(), Input{
			Discounts: []domain.EventDiscount{d},
			Participants: []domain.Participant{
				{FirstName: "Judit", LastName: "Polgar", DateOfBirth: &sameDay},
			},
			Quantity:   1,
			BaseAmount: dec("50"),
		})

		require.Len(t, q.Applied, 1)
	})

	t.Run("no qualifying pair", func(t *testing.T) {
		e := newTestEngine(prior)
		d := participantDiscount(1, domain.ValueFixed, "5", rule("any"))

		q := e.Evaluate(context.Background(), Input{
			Discounts:    []domain.EventDiscount{d},
			Participants: []domain.Participant{{FirstName: "Nobody", LastName: "Here"}},
			Quantity:     1,
			BaseAmount:   dec("50"),
		})

		assert.Empty(t, q.Applied)
	})
}

func TestEvaluate_FailClosedOnLookupError(t *testing.T) {
	relID := int64(42)
	prior := &fakePrior{err: errors.New("connection refused")}
	e := newTestEngine(prior)

	broken := participantDiscount(1, domain.ValueFixed, "5", domain.ParticipantRule{
		ID:             1,
		Type:           domain.RulePreviousEvent,
		RelatedEventID: &relID,
	})
	healthy := seatDiscount(2, domain.ValueFixed, "10")

	q := e.Evaluate(context.Background(), Input{
		Discounts:    []domain.EventDiscount{broken, healthy},
		Participants: []domain.Participant{{FirstName: "A"}},
		Quantity:     1,
		BaseAmount:   dec("100"),
	})

	// The broken discount is treated as not eligible; the rest of the
	// evaluation proceeds.
	require.Len(t, q.Applied, 1)
	assert.Equal(t, int64(2), q.Applied[0].DiscountID)
	assert.True(t, dec("10").Equal(q.TotalDiscount))
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := newTestEngine(nil)

	in := Input{
		Discounts: []domain.EventDiscount{
			seatDiscount(1, domain.ValuePercentage, "10"),
			seatDiscount(2, domain.ValueFixed, "3"),
		},
		Participants: []domain.Participant{{FirstName: "A"}},
		Quantity:     2,
		BaseAmount:   dec("80"),
	}

	first := e.Evaluate(context.Background(), in)
	second := e.Evaluate(context.Background(), in)

	assert.True(t, first.TotalDiscount.Equal(second.TotalDiscount))
	assert.True(t, first.FinalAmount.Equal(second.FinalAmount))
	assert.Equal(t, len(first.Applied), len(second.Applied))
}
