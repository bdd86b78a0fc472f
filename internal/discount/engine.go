package discount

import (
	"context"
	"log/slog"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/shopspring/decimal"
)

// PriorBookings resolves previous_event rules against historical bookings.
type PriorBookings interface {
	// ListByEventAndStatus returns bookings for eventID, with participants
	// loaded, whose status is one of statuses.
	ListByEventAndStatus(
		ctx context.Context,
		eventID int64,
		statuses []domain.BookingStatus,
	) ([]domain.Booking, error)
}

type Config struct {
	// Now overrides the evaluation clock. Defaults to time.Now.
	Now func() time.Time
}

// Engine evaluates the discounts of one event against a booking attempt.
// Evaluation is a pure function of the discount snapshot, the submitted
// participants, the requested quantity and the base amount, given a fixed
// "now"; previous_event rules additionally read historical bookings through
// PriorBookings.
type Engine struct {
	prior  PriorBookings
	logger *slog.Logger
	cfg    Config
}

func NewEngine(prior PriorBookings, logger *slog.Logger, cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Engine{
		prior:  prior,
		logger: logger,
		cfg:    cfg,
	}
}

type Input struct {
	Discounts    []domain.EventDiscount
	Participants []domain.Participant
	Quantity     int
	BaseAmount   decimal.Decimal
}

// Evaluate computes the quote for one booking attempt.
//
// Discounts are processed in the order given (the repository returns them in
// created_at order). Each discount's amount is clamped against the original
// base amount independently of the running total; the final amount is floored
// at zero afterwards. A discount whose rules fail to evaluate is skipped
// entirely and logged, never propagated.
func (e *Engine) Evaluate(ctx context.Context, in Input) domain.Quote {
	now := e.cfg.Now()

	total := decimal.Zero
	applied := []domain.AppliedDiscount{}

	for _, d := range in.Discounts {
		if !Applicable(d, in.Quantity, now) {
			continue
		}

		ad := domain.AppliedDiscount{
			DiscountID: d.ID,
			Name:       d.Name,
			Type:       d.Type,
		}

		var amount decimal.Decimal

		switch d.Type {
		case domain.DiscountParticipantBased:
			n, err := e.eligibleCount(ctx, d, in.Participants)
			if err != nil {
				e.logger.Warn("discount rule evaluation failed, skipping discount",
					"discount_id", d.ID, "error", err)
				continue
			}
			if n == 0 {
				continue
			}
			amount = Amount(d, in.BaseAmount, n)
			ad.EligibleParticipants = n
		case domain.DiscountSeatBased:
			amount = Amount(d, in.BaseAmount, in.Quantity)
			ad.Quantity = in.Quantity
		default:
			continue
		}

		if !amount.IsPositive() {
			continue
		}

		ad.Amount = amount
		total = total.Add(amount)
		applied = append(applied, ad)
	}

	final := in.BaseAmount.Sub(total)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return domain.Quote{
		TotalDiscount: total,
		Applied:       applied,
		FinalAmount:   final,
	}
}

// eligibleCount returns how many of the submitted participants satisfy every
// rule of d. A discount with no rules makes nobody eligible. previous_event
// rules have booking-level semantics (any current participant may match), so
// each one is resolved once and its result shared across participants.
func (e *Engine) eligibleCount(
	ctx context.Context,
	d domain.EventDiscount,
	participants []domain.Participant,
) (int, error) {
	if len(d.ParticipantRules) == 0 {
		return 0, nil
	}

	prevResults := make(map[int64]bool)
	for _, rule := range d.ParticipantRules {
		if rule.Type != domain.RulePreviousEvent {
			continue
		}
		ok, err := e.previousEventSatisfied(ctx, rule, participants)
		if err != nil {
			return 0, err
		}
		prevResults[rule.ID] = ok
	}

	count := 0
	for i := range participants {
		eligible := true
		for _, rule := range d.ParticipantRules {
			if rule.Type == domain.RulePreviousEvent {
				if !prevResults[rule.ID] {
					eligible = false
					break
				}
				continue
			}
			if !matchRule(rule, participants[i]) {
				eligible = false
				break
			}
		}
		if eligible {
			count++
		}
	}

	return count, nil
}

// previousEventSatisfied reports whether any current participant fully
// matches any participant of a qualifying booking on the related event,
// across the rule's match fields.
func (e *Engine) previousEventSatisfied(
	ctx context.Context,
	rule domain.ParticipantRule,
	current []domain.Participant,
) (bool, error) {
	if rule.RelatedEventID == nil {
		return false, nil
	}

	prev, err := e.prior.ListByEventAndStatus(
		ctx,
		*rule.RelatedEventID,
		statusesFor(rule.ParticipationStatus),
	)
	if err != nil {
		return false, err
	}

	fields := rule.MatchFields
	if len(fields) == 0 {
		fields = []string{"first_name", "last_name"}
	}

	for _, b := range prev {
		for _, pp := range b.Participants {
			for _, cp := range current {
				if matchAcross(fields, cp, pp) {
					return true, nil
				}
			}
		}
	}

	return false, nil
}
