package event

import (
	"time"

	"gorm.io/datatypes"
)

// Date mode values: how the required slots must relate to each other.
const (
	DateModeConsecutive  = "consecutive"
	DateModeFlexible     = "flexible"
	DateModeWithinPeriod = "within_period"
)

// Time slot restriction values.
const (
	RestrictionBoth        = "both"
	RestrictionDaytimeOnly = "daytime_only"
	RestrictionEveningOnly = "evening_only"
)

// Confirmation modes.
const (
	ConfirmationCreatorOnly  = "creator_only"
	ConfirmationAll          = "all"
	ConfirmationMajority     = "majority"
	ConfirmationMinimumCount = "minimum_count"
)

// Participant priorities, used only during cross-event conflict resolution.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Reservation status tracks external booking confirmation independently of
// the matching lifecycle.
const (
	ReservationOpen     = "open"
	ReservationReserved = "reserved"
	ReservationReleased = "released"
)

// ============================
// MatchingPolicy
//
// Immutable per-event matching configuration, validated at creation time and
// embedded in the event row. Fields never change after the event is created.
type MatchingPolicy struct {
	AllowPartialMatching   bool `gorm:"not null;default:false" json:"allow_partial_matching"`
	MinimumTimeSlots       int  `gorm:"not null;default:0" json:"minimum_time_slots"` // 0 = fall back to RequiredSlots
	SuggestMultipleOptions bool `gorm:"not null;default:false" json:"suggest_multiple_options"`
	MaxSuggestions         int  `gorm:"not null;default:3" json:"max_suggestions"`
	RequireAllParticipants bool `gorm:"not null;default:false" json:"require_all_participants"`
}

// ============================
// Event Model (central aggregate)
type Event struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CreatorID   uint   `gorm:"not null;index" json:"creator_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// Requirements
	MinParticipants     int    `gorm:"not null" json:"min_participants"`
	MaxParticipants     *int   `json:"max_participants,omitempty"` // nil = unlimited
	RequiredSlots       int    `gorm:"not null" json:"required_slots"`
	DateMode            string `gorm:"type:varchar(20);not null" json:"date_mode"`
	MinimumConsecutive  int    `gorm:"not null;default:1" json:"minimum_consecutive"`
	TimeSlotRestriction string `gorm:"type:varchar(20);not null;default:'both'" json:"time_slot_restriction"`

	// Temporal bounds
	Deadline    *time.Time `gorm:"index" json:"deadline,omitempty"`
	PeriodStart *time.Time `gorm:"type:date" json:"period_start,omitempty"`
	PeriodEnd   *time.Time `gorm:"type:date" json:"period_end,omitempty"`

	// Confirmation policy
	RequireCreatorConfirmation     bool   `gorm:"not null;default:false" json:"require_creator_confirmation"`
	RequireParticipantConfirmation bool   `gorm:"not null;default:false" json:"require_participant_confirmation"`
	ConfirmationMode               string `gorm:"type:varchar(20);not null;default:'creator_only'" json:"confirmation_mode"`
	MinimumConfirmations           int    `gorm:"not null;default:1" json:"minimum_confirmations"`
	ConfirmationTimeoutHours       int    `gorm:"not null;default:24" json:"confirmation_timeout_hours"`
	GracePeriodHours               int    `gorm:"not null;default:0" json:"grace_period_hours"`

	// Matching policy (immutable, embedded)
	Policy MatchingPolicy `gorm:"embedded;embeddedPrefix:policy_" json:"policy"`

	// Outcome
	Status            string         `gorm:"type:varchar(30);not null;default:'open';index" json:"status"`
	MatchedSlots      datatypes.JSON `gorm:"type:jsonb" json:"matched_slots,omitempty"`
	MatchedAt         *time.Time     `json:"matched_at,omitempty"`
	ReservationStatus string         `gorm:"type:varchar(20);not null;default:'open'" json:"reservation_status"`

	// Participation (creator is inserted as the first participant)
	Participants []Participant `gorm:"foreignKey:EventID" json:"participants,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

// MinimumSlotFloor is the partial-matching floor: the configured minimum when
// set, otherwise the full requirement.
func (e *Event) MinimumSlotFloor() int {
	if e.Policy.MinimumTimeSlots > 0 {
		return e.Policy.MinimumTimeSlots
	}
	return e.RequiredSlots
}

// RequiresConfirmation reports whether a successful match must pass through
// pending_confirmation instead of going straight to confirmed.
func (e *Event) RequiresConfirmation() bool {
	return e.RequireCreatorConfirmation || e.RequireParticipantConfirmation
}

// ConfirmationDeadline returns the instant after which a pending confirmation
// is considered timed out (timeout + grace, measured from the match).
func (e *Event) ConfirmationDeadline() *time.Time {
	if e.MatchedAt == nil {
		return nil
	}
	d := e.MatchedAt.Add(time.Duration(e.ConfirmationTimeoutHours+e.GracePeriodHours) * time.Hour)
	return &d
}

// ============================
// Participant (join-time relation; priority is an annotation on the
// participation, not a property of the user)
type Participant struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	EventID  uint      `gorm:"not null;uniqueIndex:idx_event_user" json:"event_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_event_user" json:"user_id"`
	Priority string    `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (Participant) TableName() string {
	return "event_participants"
}

// PriorityWeight maps a participant priority to its conflict-resolution weight.
func PriorityWeight(priority string) int {
	switch priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ============================
// Confirmation record, one per (event, user)
type Confirmation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     uint      `gorm:"not null;uniqueIndex:idx_event_user_conf" json:"event_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_event_user_conf" json:"user_id"`
	ConfirmedAt time.Time `gorm:"autoCreateTime" json:"confirmed_at"`
}

func (Confirmation) TableName() string {
	return "event_confirmations"
}

// ============================
// Request DTOs
type CreateEventRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	MinParticipants     int    `json:"min_participants" binding:"required"`
	MaxParticipants     *int   `json:"max_participants,omitempty"`
	RequiredSlots       int    `json:"required_slots" binding:"required"`
	DateMode            string `json:"date_mode" binding:"required"`
	MinimumConsecutive  int    `json:"minimum_consecutive,omitempty"`
	TimeSlotRestriction string `json:"time_slot_restriction,omitempty"`

	Deadline    string `json:"deadline,omitempty"`     // RFC3339
	PeriodStart string `json:"period_start,omitempty"` // "2006-01-02"
	PeriodEnd   string `json:"period_end,omitempty"`   // "2006-01-02"

	RequireCreatorConfirmation     bool   `json:"require_creator_confirmation"`
	RequireParticipantConfirmation bool   `json:"require_participant_confirmation"`
	ConfirmationMode               string `json:"confirmation_mode,omitempty"`
	MinimumConfirmations           int    `json:"minimum_confirmations,omitempty"`
	ConfirmationTimeoutHours       int    `json:"confirmation_timeout_hours,omitempty"`
	GracePeriodHours               int    `json:"grace_period_hours,omitempty"`

	AllowPartialMatching   bool `json:"allow_partial_matching"`
	MinimumTimeSlots       int  `json:"minimum_time_slots,omitempty"`
	SuggestMultipleOptions bool `json:"suggest_multiple_options"`
	MaxSuggestions         int  `json:"max_suggestions,omitempty"`
	RequireAllParticipants bool `json:"require_all_participants"`

	CreatorPriority string `json:"creator_priority,omitempty"`
}

type JoinEventRequest struct {
	Priority string `json:"priority,omitempty"`
}
