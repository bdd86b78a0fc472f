package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountParticipantBased DiscountType = "participant_based"
	DiscountSeatBased        DiscountType = "seat_based"
)

type ValueType string

const (
	ValuePercentage ValueType = "percentage"
	ValueFixed      ValueType = "fixed"
)

type RuleType string

const (
	RuleNameMatch     RuleType = "name_match"
	RuleDOBMatch      RuleType = "dob_match"
	RuleCustom        RuleType = "custom"
	RulePreviousEvent RuleType = "previous_event"
)

type RuleOperator string

const (
	OpEquals     RuleOperator = "equals"
	OpContains   RuleOperator = "contains"
	OpStartsWith RuleOperator = "starts_with"
	OpEndsWith   RuleOperator = "ends_with"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingVerified  BookingStatus = "verified"
	BookingCancelled BookingStatus = "cancelled"
)

type Event struct {
	ID        int64
	Title     string
	Location  string
	Starts    time.Time
	Ends      time.Time
	CreatedAt time.Time
}

// EventDiscount is a promotional rule attached to one event. It is applicable
// only while Active is set, "now" falls inside its date window, the requested
// quantity falls inside its quantity window, and CurrentUses is below MaxUses.
// Nil pointer fields mean "no restriction".
type EventDiscount struct {
	ID          int64
	EventID     int64
	Name        string
	Type        DiscountType
	ValueType   ValueType
	Value       decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	MinQuantity *int
	MaxQuantity *int
	MaxUses     *int
	CurrentUses int
	Active      bool
	CreatedAt   time.Time

	ParticipantRules []ParticipantRule
	SeatRules        []SeatRule
}

// ParticipantRule is one conjunctive condition of a participant-based
// discount: every rule attached to a discount must match a participant for
// that participant to count as eligible.
type ParticipantRule struct {
	ID         int64
	DiscountID int64
	Type       RuleType
	FieldName  string
	FieldValue string
	Operator   RuleOperator

	// previous_event rules only.
	RelatedEventID      *int64
	ParticipationStatus string
	MatchFields         []string
}

// SeatRule is a quantity-tier condition for seat-based discounts. Tiers are
// stored and served to organizers; seat-based discounts apply uniformly to the
// whole requested quantity during evaluation.
type SeatRule struct {
	ID         int64
	DiscountID int64
	MinSeats   int
	MaxSeats   *int
	Value      decimal.Decimal
}

// Participant is one attendee record submitted with a booking attempt.
type Participant struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	CustomData  map[string]string
}

// AppliedDiscount is the per-matched-discount result of an evaluation. Never
// persisted.
type AppliedDiscount struct {
	DiscountID           int64
	Name                 string
	Type                 DiscountType
	Amount               decimal.Decimal
	EligibleParticipants int // participant_based only
	Quantity             int // seat_based only
}

// Quote is the aggregated evaluation result for one booking attempt.
type Quote struct {
	TotalDiscount decimal.Decimal
	Applied       []AppliedDiscount
	FinalAmount   decimal.Decimal
}

type Booking struct {
	ID            uuid.UUID
	EventID       int64
	Status        BookingStatus
	ContactEmail  string
	Quantity      int
	BaseAmount    decimal.Decimal
	TotalDiscount decimal.Decimal
	FinalAmount   decimal.Decimal
	CreatedAt     time.Time

	Participants []Participant
}

type MessageSender string

const (
	SenderOrganizer MessageSender = "organizer"
	SenderAttendee  MessageSender = "attendee"
)

type Message struct {
	ID        int64
	BookingID uuid.UUID
	Sender    MessageSender
	Body      string
	ReadAt    *time.Time
	CreatedAt time.Time
}

type EmailStatus string

const (
	EmailPending    EmailStatus = "pending"
	EmailProcessing EmailStatus = "processing"
	EmailSent       EmailStatus = "sent"
	EmailError      EmailStatus = "error"
)

// ScheduledEmail is one outbox row. Pending rows whose ScheduledAt has passed
// are claimed in batches by the mailer worker.
type ScheduledEmail struct {
	ID          int64
	BookingID   *uuid.UUID
	Recipient   string
	Subject     string
	HTMLBody    string
	TextBody    string
	ScheduledAt time.Time
	Status      EmailStatus
	LastError   string
	SentAt      *time.Time
	CreatedAt   time.Time
}

// DOBLayout is the calendar-date form used everywhere a date of birth is
// compared: timezone-naive truncation to YYYY-MM-DD.
const DOBLayout = "2006-01-02"

// FormatDOB normalizes a date of birth for comparison. Nil yields "".
func FormatDOB(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DOBLayout)
}
