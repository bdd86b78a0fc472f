package discount

import (
	"strings"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Applicable decides whether a discount takes part in evaluation at all.
// All checks are independent; any failing check skips the discount entirely.
func Applicable(d domain.EventDiscount, quantity int, now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.StartDate != nil && now.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && now.After(*d.EndDate) {
		return false
	}
	if d.MinQuantity != nil && quantity < *d.MinQuantity {
		return false
	}
	if d.MaxQuantity != nil && quantity > *d.MaxQuantity {
		return false
	}
	if d.MaxUses != nil && d.CurrentUses >= *d.MaxUses {
		return false
	}
	return true
}

// Amount converts a matched discount and an eligible quantity into a currency
// amount. Percentage discounts take their cut of the whole base amount and do
// not scale with the eligible quantity; fixed discounts are per eligible unit.
// The result is clamped so one discount never exceeds the base amount.
func Amount(d domain.EventDiscount, base decimal.Decimal, eligibleQty int) decimal.Decimal {
	var amt decimal.Decimal
	if d.ValueType == domain.ValuePercentage {
		amt = base.Mul(d.Value).Div(hundred)
	} else {
		amt = d.Value.Mul(decimal.NewFromInt(int64(eligibleQty)))
	}

	if amt.GreaterThan(base) {
		return base
	}
	return amt
}

// matchRule evaluates a single non-previous_event rule against one
// participant.
func matchRule(rule domain.ParticipantRule, p domain.Participant) bool {
	switch rule.Type {
	case domain.RuleNameMatch:
		v := p.FirstName
		if rule.FieldName == "last_name" {
			v = p.LastName
		}
		return v == rule.FieldValue
	case domain.RuleDOBMatch:
		return p.DateOfBirth != nil && domain.FormatDOB(p.DateOfBirth) == rule.FieldValue
	case domain.RuleCustom:
		// A missing custom-data key fails the rule, it is never skipped.
		v, ok := p.CustomData[rule.FieldName]
		if !ok {
			return false
		}
		switch rule.Operator {
		case domain.OpContains:
			return strings.Contains(v, rule.FieldValue)
		case domain.OpStartsWith:
			return strings.HasPrefix(v, rule.FieldValue)
		case domain.OpEndsWith:
			return strings.HasSuffix(v, rule.FieldValue)
		default:
			return v == rule.FieldValue
		}
	default:
		return false
	}
}

// statusesFor maps a previous_event participation requirement to the booking
// statuses that satisfy it. Unrecognized values fall back to the "any" set.
func statusesFor(s string) []domain.BookingStatus {
	switch s {
	case "confirmed":
		return []domain.BookingStatus{domain.BookingConfirmed, domain.BookingVerified}
	case "verified":
		return []domain.BookingStatus{domain.BookingVerified}
	default:
		return []domain.BookingStatus{
			domain.BookingPending,
			domain.BookingConfirmed,
			domain.BookingVerified,
		}
	}
}

// matchAcross reports whether a and b agree on every listed field.
func matchAcross(fields []string, a, b domain.Participant) bool {
	for _, f := range fields {
		if !fieldEqual(f, a, b) {
			return false
		}
	}
	return true
}

func fieldEqual(field string, a, b domain.Participant) bool {
	switch field {
	case "first_name":
		return a.FirstName == b.FirstName
	case "last_name":
		return a.LastName == b.LastName
	case "date_of_birth", "dob":
		// compared as normalized calendar dates; a missing date never matches
		if a.DateOfBirth == nil || b.DateOfBirth == nil {
			return false
		}
		return domain.FormatDOB(a.DateOfBirth) == domain.FormatDOB(b.DateOfBirth)
	default:
		av, aok := a.CustomData[field]
		bv, bok := b.CustomData[field]
		return aok && bok && av == bv
	}
}
