package httpgin

import (
	"encoding/json"
	"testing"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDiscountsRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "valid",
			payload: `{"participants": [], "quantity": 2, "baseAmount": 100}`,
		},
		{
			name:    "missing participants",
			payload: `{"quantity": 2, "baseAmount": 100}`,
			wantErr: "participants",
		},
		{
			name:    "missing quantity",
			payload: `{"participants": [], "baseAmount": 100}`,
			wantErr: "quantity",
		},
		{
			name:    "zero quantity",
			payload: `{"participants": [], "quantity": 0, "baseAmount": 100}`,
			wantErr: "quantity",
		},
		{
			name:    "missing baseAmount",
			payload: `{"participants": [], "quantity": 1}`,
			wantErr: "baseAmount",
		},
		{
			name:    "negative baseAmount",
			payload: `{"participants": [], "quantity": 1, "baseAmount": -5}`,
			wantErr: "baseAmount",
		},
		{
			name:    "zero baseAmount is valid",
			payload: `{"participants": [], "quantity": 1, "baseAmount": 0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CalculateDiscountsRequest
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &req))

			err := req.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCalculateDiscountsRequestRejectsWrongTypes(t *testing.T) {
	var req CalculateDiscountsRequest

	// participants as object
	assert.Error(t, json.Unmarshal(
		[]byte(`{"participants": {}, "quantity": 1, "baseAmount": 10}`), &req))

	// fractional quantity
	assert.Error(t, json.Unmarshal(
		[]byte(`{"participants": [], "quantity": 1.5, "baseAmount": 10}`), &req))

	// baseAmount as string
	assert.Error(t, json.Unmarshal(
		[]byte(`{"participants": [], "quantity": 1, "baseAmount": "10"}`), &req))
}

func TestToParticipants(t *testing.T) {
	got, err := toParticipants([]ParticipantInput{
		{FirstName: "Judit", LastName: "Polgar", DateOfBirth: "1976-07-23"},
		{FirstName: "No", LastName: "Birthday", CustomData: map[string]string{"membership": "gold"}},
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].DateOfBirth)
	assert.Equal(t, "1976-07-23", domain.FormatDOB(got[0].DateOfBirth))
	assert.Nil(t, got[1].DateOfBirth)
	assert.Equal(t, "gold", got[1].CustomData["membership"])
}

func TestToParticipantsInvalidDOB(t *testing.T) {
	_, err := toParticipants([]ParticipantInput{
		{FirstName: "Bad", LastName: "Date", DateOfBirth: "23/07/1976"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "participants[0]")
}

func TestToQuoteResponse(t *testing.T) {
	q := &domain.Quote{
		TotalDiscount: decimal.NewFromInt(30),
		Applied: []domain.AppliedDiscount{
			{
				DiscountID:           7,
				Name:                 "junior",
				Type:                 domain.DiscountParticipantBased,
				Amount:               decimal.NewFromInt(20),
				EligibleParticipants: 2,
			},
			{
				DiscountID: 8,
				Name:       "group",
				Type:       domain.DiscountSeatBased,
				Amount:     decimal.NewFromInt(10),
				Quantity:   4,
			},
		},
		FinalAmount: decimal.NewFromInt(70),
	}

	resp := toQuoteResponse(q)

	assert.InDelta(t, 30.0, resp.TotalDiscount, 1e-9)
	assert.InDelta(t, 70.0, resp.FinalAmount, 1e-9)
	require.Len(t, resp.AppliedDiscounts, 2)

	junior := resp.AppliedDiscounts[0]
	assert.Equal(t, int64(7), junior.Discount.ID)
	assert.Equal(t, "participant_based", junior.Type)
	require.NotNil(t, junior.EligibleParticipants)
	assert.Equal(t, 2, *junior.EligibleParticipants)
	assert.Nil(t, junior.Quantity)

	group := resp.AppliedDiscounts[1]
	require.NotNil(t, group.Quantity)
	assert.Equal(t, 4, *group.Quantity)
	assert.Nil(t, group.EligibleParticipants)
}

func TestToQuoteResponseEmptyQuote(t *testing.T) {
	q := &domain.Quote{
		TotalDiscount: decimal.Zero,
		Applied:       []domain.AppliedDiscount{},
		FinalAmount:   decimal.NewFromInt(100),
	}

	resp := toQuoteResponse(q)

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalDiscount":0,"appliedDiscounts":[],"finalAmount":100}`, string(b))
}
