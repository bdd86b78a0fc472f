package httpgin

import (
	"errors"
	"fmt"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/shopspring/decimal"
)

// --- Requests ---

type ParticipantInput struct {
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	DateOfBirth string            `json:"dateOfBirth"`
	CustomData  map[string]string `json:"customData"`
}

// CalculateDiscountsRequest is the booking attempt submitted for evaluation.
// Pointer fields distinguish "absent" from zero so each one can be rejected
// with a field-level message.
type CalculateDiscountsRequest struct {
	Participants *[]ParticipantInput `json:"participants"`
	Quantity     *int                `json:"quantity"`
	BaseAmount   *float64            `json:"baseAmount"`
}

func (r *CalculateDiscountsRequest) validate() error {
	if r.Participants == nil {
		return errors.New("participants must be an array")
	}
	if r.Quantity == nil || *r.Quantity < 1 {
		return errors.New("quantity must be an integer of at least 1")
	}
	if r.BaseAmount == nil || *r.BaseAmount < 0 {
		return errors.New("baseAmount must be a non-negative number")
	}
	return nil
}

func (r *CalculateDiscountsRequest) toDomain() ([]domain.Participant, int, decimal.Decimal, error) {
	participants, err := toParticipants(*r.Participants)
	if err != nil {
		return nil, 0, decimal.Decimal{}, err
	}
	return participants, *r.Quantity, decimal.NewFromFloat(*r.BaseAmount), nil
}

type CreateBookingRequest struct {
	ContactEmail string              `json:"contactEmail" binding:"required,email"`
	Participants *[]ParticipantInput `json:"participants"`
	Quantity     *int                `json:"quantity"`
	BaseAmount   *float64            `json:"baseAmount"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SendMessageRequest struct {
	Sender string `json:"sender" binding:"required,oneof=organizer attendee"`
	Body   string `json:"body" binding:"required"`
}

type CreateEventRequest struct {
	Title    string `json:"title" binding:"required"`
	Location string `json:"location"`
	StartsAt string `json:"startsAt" binding:"required"`
	EndsAt   string `json:"endsAt" binding:"required"`
}

type UpdateEventRequest struct {
	Title    string `json:"title" binding:"required"`
	Location string `json:"location"`
	StartsAt string `json:"startsAt" binding:"required"`
	EndsAt   string `json:"endsAt" binding:"required"`
}

type ParticipantRuleInput struct {
	Type                string   `json:"type" binding:"required"`
	FieldName           string   `json:"fieldName"`
	FieldValue          string   `json:"fieldValue"`
	Operator            string   `json:"operator"`
	RelatedEventID      *int64   `json:"relatedEventId"`
	ParticipationStatus string   `json:"participationStatus"`
	MatchFields         []string `json:"matchFields"`
}

type SeatRuleInput struct {
	MinSeats int     `json:"minSeats" binding:"required"`
	MaxSeats *int    `json:"maxSeats"`
	Value    float64 `json:"value" binding:"required"`
}

type CreateDiscountRequest struct {
	Name        string  `json:"name" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	ValueType   string  `json:"valueType" binding:"required"`
	Value       float64 `json:"value" binding:"required"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	MinQuantity *int    `json:"minQuantity"`
	MaxQuantity *int    `json:"maxQuantity"`
	MaxUses     *int    `json:"maxUses"`
	Active      *bool   `json:"active"`

	ParticipantRules []ParticipantRuleInput `json:"participantRules"`
	SeatRules        []SeatRuleInput        `json:"seatRules"`
}

type SetDiscountActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// --- Responses ---

type ErrorResponse struct {
	Error string `json:"error"`
}

type DiscountRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AppliedDiscountResponse struct {
	Discount             DiscountRef `json:"discount"`
	Type                 string      `json:"type"`
	Amount               float64     `json:"amount"`
	EligibleParticipants *int        `json:"eligibleParticipants,omitempty"`
	Quantity             *int        `json:"quantity,omitempty"`
}

type CalculateDiscountsResponse struct {
	TotalDiscount    float64                   `json:"totalDiscount"`
	AppliedDiscounts []AppliedDiscountResponse `json:"appliedDiscounts"`
	FinalAmount      float64                   `json:"finalAmount"`
}

type EventResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

type ParticipantRuleResponse struct {
	ID                  int64    `json:"id"`
	Type                string   `json:"type"`
	FieldName           string   `json:"fieldName,omitempty"`
	FieldValue          string   `json:"fieldValue,omitempty"`
	Operator            string   `json:"operator,omitempty"`
	RelatedEventID      *int64   `json:"relatedEventId,omitempty"`
	ParticipationStatus string   `json:"participationStatus,omitempty"`
	MatchFields         []string `json:"matchFields,omitempty"`
}

type SeatRuleResponse struct {
	ID       int64   `json:"id"`
	MinSeats int     `json:"minSeats"`
	MaxSeats *int    `json:"maxSeats,omitempty"`
	Value    float64 `json:"value"`
}

type DiscountResponse struct {
	ID          int64   `json:"id"`
	EventID     int64   `json:"eventId"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	ValueType   string  `json:"valueType"`
	Value       float64 `json:"value"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	MinQuantity *int    `json:"minQuantity,omitempty"`
	MaxQuantity *int    `json:"maxQuantity,omitempty"`
	MaxUses     *int    `json:"maxUses,omitempty"`
	CurrentUses int     `json:"currentUses"`
	Active      bool    `json:"active"`

	ParticipantRules []ParticipantRuleResponse `json:"participantRules"`
	SeatRules        []SeatRuleResponse        `json:"seatRules"`
}

type ParticipantResponse struct {
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	DateOfBirth string            `json:"dateOfBirth,omitempty"`
	CustomData  map[string]string `json:"customData,omitempty"`
}

type BookingResponse struct {
	ID            string                `json:"id"`
	EventID       int64                 `json:"eventId"`
	Status        string                `json:"status"`
	ContactEmail  string                `json:"contactEmail"`
	Quantity      int                   `json:"quantity"`
	BaseAmount    float64               `json:"baseAmount"`
	TotalDiscount float64               `json:"totalDiscount"`
	FinalAmount   float64               `json:"finalAmount"`
	CreatedAt     string                `json:"createdAt"`
	Participants  []ParticipantResponse `json:"participants"`
}

type MessageResponse struct {
	ID        int64   `json:"id"`
	BookingID string  `json:"bookingId"`
	Sender    string  `json:"sender"`
	Body      string  `json:"body"`
	ReadAt    *string `json:"readAt,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type CreateEventResponse struct {
	EventID int64 `json:"eventId"`
}

type CreateDiscountResponse struct {
	DiscountID int64 `json:"discountId"`
}

type SendMessageResponse struct {
	MessageID int64 `json:"messageId"`
}

// --- Mapping ---

func toParticipants(inputs []ParticipantInput) ([]domain.Participant, error) {
	out := make([]domain.Participant, 0, len(inputs))
	for i, in := range inputs {
		p := domain.Participant{
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			CustomData: in.CustomData,
		}
		if in.DateOfBirth != "" {
			dob, err := parseDOB(in.DateOfBirth)
			if err != nil {
				return nil, fmt.Errorf("participants[%d]: invalid dateOfBirth", i)
			}
			p.DateOfBirth = &dob
		}
		out = append(out, p)
	}
	return out, nil
}

// parseDOB accepts a bare calendar date or a full RFC3339 timestamp. Either
// way only the calendar date matters downstream.
func parseDOB(s string) (time.Time, error) {
	if t, err := time.Parse(domain.DOBLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func toQuoteResponse(q *domain.Quote) CalculateDiscountsResponse {
	applied := make([]AppliedDiscountResponse, 0, len(q.Applied))
	for _, a := range q.Applied {
		r := AppliedDiscountResponse{
			Discount: DiscountRef{ID: a.DiscountID, Name: a.Name},
			Type:     string(a.Type),
			Amount:   a.Amount.InexactFloat64(),
		}
		switch a.Type {
		case domain.DiscountParticipantBased:
			n := a.EligibleParticipants
			r.EligibleParticipants = &n
		case domain.DiscountSeatBased:
			n := a.Quantity
			r.Quantity = &n
		}
		applied = append(applied, r)
	}

	return CalculateDiscountsResponse{
		TotalDiscount:    q.TotalDiscount.InexactFloat64(),
		AppliedDiscounts: applied,
		FinalAmount:      q.FinalAmount.InexactFloat64(),
	}
}

func toEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:       e.ID,
		Title:    e.Title,
		Location: e.Location,
		StartsAt: e.Starts.Format(time.RFC3339),
		EndsAt:   e.Ends.Format(time.RFC3339),
	}
}

func toDiscountResponse(d *domain.EventDiscount) DiscountResponse {
	resp := DiscountResponse{
		ID:          d.ID,
		EventID:     d.EventID,
		Name:        d.Name,
		Type:        string(d.Type),
		ValueType:   string(d.ValueType),
		Value:       d.Value.InexactFloat64(),
		MinQuantity: d.MinQuantity,
		MaxQuantity: d.MaxQuantity,
		MaxUses:     d.MaxUses,
		CurrentUses: d.CurrentUses,
		Active:      d.Active,
	}
	if d.StartDate != nil {
		s := d.StartDate.Format(time.RFC3339)
		resp.StartDate = &s
	}
	if d.EndDate != nil {
		s := d.EndDate.Format(time.RFC3339)
		resp.EndDate = &s
	}

	resp.ParticipantRules = make([]ParticipantRuleResponse, 0, len(d.ParticipantRules))
	for _, rule := range d.ParticipantRules {
		resp.ParticipantRules = append(resp.ParticipantRules, ParticipantRuleResponse{
			ID:                  rule.ID,
			Type:                string(rule.Type),
			FieldName:           rule.FieldName,
			FieldValue:          rule.FieldValue,
			Operator:            string(rule.Operator),
			RelatedEventID:      rule.RelatedEventID,
			ParticipationStatus: rule.ParticipationStatus,
			MatchFields:         rule.MatchFields,
		})
	}

	resp.SeatRules = make([]SeatRuleResponse, 0, len(d.SeatRules))
	for _, rule := range d.SeatRules {
		resp.SeatRules = append(resp.SeatRules, SeatRuleResponse{
			ID:       rule.ID,
			MinSeats: rule.MinSeats,
			MaxSeats: rule.MaxSeats,
			Value:    rule.Value.InexactFloat64(),
		})
	}

	return resp
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	participants := make([]ParticipantResponse, 0, len(b.Participants))
	for _, p := range b.Participants {
		participants = append(participants, ParticipantResponse{
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DateOfBirth: domain.FormatDOB(p.DateOfBirth),
			CustomData:  p.CustomData,
		})
	}

	return BookingResponse{
		ID:            b.ID.String(),
		EventID:       b.EventID,
		Status:        string(b.Status),
		ContactEmail:  b.ContactEmail,
		Quantity:      b.Quantity,
		BaseAmount:    b.BaseAmount.InexactFloat64(),
		TotalDiscount: b.TotalDiscount.InexactFloat64(),
		FinalAmount:   b.FinalAmount.InexactFloat64(),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		Participants:  participants,
	}
}

func toMessageResponse(m *domain.Message) MessageResponse {
	resp := MessageResponse{
		ID:        m.ID,
		BookingID: m.BookingID.String(),
		Sender:    string(m.Sender),
		Body:      m.Body,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.ReadAt != nil {
		s := m.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &s
	}
	return resp
}

func toDiscount(eventID int64, req *CreateDiscountRequest) (*domain.EventDiscount, error) {
	d := &domain.EventDiscount{
		EventID:     eventID,
		Name:        req.Name,
		Type:        domain.DiscountType(req.Type),
		ValueType:   domain.ValueType(req.ValueType),
		Value:       decimal.NewFromFloat(req.Value),
		MinQuantity: req.MinQuantity,
		MaxQuantity: req.MaxQuantity,
		MaxUses:     req.MaxUses,
		Active:      true,
	}
	if req.Active != nil {
		d.Active = *req.Active
	}

	var err error
	if d.StartDate, err = parseOptionalTime(req.StartDate); err != nil {
		return nil, errors.New("invalid startDate (RFC3339)")
	}
	if d.EndDate, err = parseOptionalTime(req.EndDate); err != nil {
		return nil, errors.New("invalid endDate (RFC3339)")
	}

	for _, in := range req.ParticipantRules {
		d.ParticipantRules = append(d.ParticipantRules, domain.ParticipantRule{
			Type:                domain.RuleType(in.Type),
			FieldName:           in.FieldName,
			FieldValue:          in.FieldValue,
			Operator:            domain.RuleOperator(in.Operator),
			RelatedEventID:      in.RelatedEventID,
			ParticipationStatus: in.ParticipationStatus,
			MatchFields:         in.MatchFields,
		})
	}
	for _, in := range req.SeatRules {
		d.SeatRules = append(d.SeatRules, domain.SeatRule{
			MinSeats: in.MinSeats,
			MaxSeats: in.MaxSeats,
			Value:    decimal.NewFromFloat(in.Value),
		})
	}

	return d, nil
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
