package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taroc/schedule-service-sub002/internal/auditlog"
)

const dateLayout = "2006-01-02"

var (
	ErrEventNotOpen      = errors.New("event is not open")
	ErrEventFull         = errors.New("event has reached its participant limit")
	ErrAlreadyJoined     = errors.New("user already joined this event")
	ErrDeadlinePassed    = errors.New("event deadline has passed")
	ErrNotCreator        = errors.New("only the creator may perform this action")
	ErrNotParticipant    = errors.New("user is not a participant of this event")
	ErrNotAwaitingAction = errors.New("event is not awaiting confirmation")
	ErrAlreadyConfirmed  = errors.New("user already confirmed this event")
)

// Service wraps business logic for scheduling events.
type Service struct {
	Repo     *Repository
	AuditSvc auditlog.Service
}

func NewService(r *Repository, auditSvc auditlog.Service) *Service {
	return &Service{Repo: r, AuditSvc: auditSvc}
}

// ===========================
// Validation (event-creation boundary; bad configurations never reach the
// matching engine)

// BuildEvent validates a creation request against the rules of the aggregate
// and returns the event ready to persist. Pure with respect to storage.
func BuildEvent(req *CreateEventRequest, creatorID uint, now time.Time) (*Event, error) {
	if req.MinParticipants < 1 {
		return nil, errors.New("min_participants must be at least 1")
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < req.MinParticipants {
		return nil, errors.New("max_participants must be greater than or equal to min_participants")
	}
	if req.RequiredSlots < 1 {
		return nil, errors.New("required_slots must be at least 1")
	}

	switch req.DateMode {
	case DateModeConsecutive, DateModeFlexible, DateModeWithinPeriod:
	default:
		return nil, fmt.Errorf("invalid date_mode %q", req.DateMode)
	}

	restriction := req.TimeSlotRestriction
	if restriction == "" {
		restriction = RestrictionBoth
	}
	switch restriction {
	case RestrictionBoth, RestrictionDaytimeOnly, RestrictionEveningOnly:
	default:
		return nil, fmt.Errorf("invalid time_slot_restriction %q", req.TimeSlotRestriction)
	}

	minConsecutive := req.MinimumConsecutive
	if minConsecutive < 1 {
		minConsecutive = 1
	}

	var deadline *time.Time
	if req.Deadline != "" {
		parsed, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			return nil, errors.New("invalid deadline, use RFC3339")
		}
		if !parsed.After(now) {
			return nil, errors.New("deadline must be in the future")
		}
		deadline = &parsed
	}

	var periodStart, periodEnd *time.Time
	if req.DateMode == DateModeWithinPeriod {
		if req.PeriodStart == "" || req.PeriodEnd == "" {
			return nil, errors.New("period_start and period_end are required for within_period")
		}
	}
	if req.PeriodStart != "" {
		parsed, err := time.Parse(dateLayout, req.PeriodStart)
		if err != nil {
			return nil, errors.New("invalid period_start, use YYYY-MM-DD")
		}
		periodStart = &parsed
	}
	if req.PeriodEnd != "" {
		parsed, err := time.Parse(dateLayout, req.PeriodEnd)
		if err != nil {
			return nil, errors.New("invalid period_end, use YYYY-MM-DD")
		}
		periodEnd = &parsed
	}
	if periodStart != nil && periodEnd != nil && !periodStart.Before(*periodEnd) {
		return nil, errors.New("period_start must be before period_end")
	}

	confirmationMode := req.ConfirmationMode
	if confirmationMode == "" {
		confirmationMode = ConfirmationCreatorOnly
	}
	switch confirmationMode {
	case ConfirmationCreatorOnly, ConfirmationAll, ConfirmationMajority, ConfirmationMinimumCount:
	default:
		return nil, fmt.Errorf("invalid confirmation_mode %q", req.ConfirmationMode)
	}

	minConfirmations := req.MinimumConfirmations
	if minConfirmations < 1 {
		minConfirmations = 1
	}
	confirmationTimeout := req.ConfirmationTimeoutHours
	if confirmationTimeout < 1 {
		confirmationTimeout = 24
	}
	if req.GracePeriodHours < 0 {
		return nil, errors.New("grace_period_hours must not be negative")
	}

	if req.MinimumTimeSlots < 0 {
		return nil, errors.New("minimum_time_slots must not be negative")
	}
	if req.MinimumTimeSlots > req.RequiredSlots {
		return nil, errors.New("minimum_time_slots must not exceed required_slots")
	}
	maxSuggestions := req.MaxSuggestions
	if maxSuggestions < 1 {
		maxSuggestions = 3
	}

	return &Event{
		CreatorID:   creatorID,
		Name:        req.Name,
		Description: req.Description,

		MinParticipants:     req.MinParticipants,
		MaxParticipants:     req.MaxParticipants,
		RequiredSlots:       req.RequiredSlots,
		DateMode:            req.DateMode,
		MinimumConsecutive:  minConsecutive,
		TimeSlotRestriction: restriction,

		Deadline:    deadline,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,

		RequireCreatorConfirmation:     req.RequireCreatorConfirmation,
		RequireParticipantConfirmation: req.RequireParticipantConfirmation,
		ConfirmationMode:               confirmationMode,
		MinimumConfirmations:           minConfirmations,
		ConfirmationTimeoutHours:       confirmationTimeout,
		GracePeriodHours:               req.GracePeriodHours,

		Policy: MatchingPolicy{
			AllowPartialMatching:   req.AllowPartialMatching,
			MinimumTimeSlots:       req.MinimumTimeSlots,
			SuggestMultipleOptions: req.SuggestMultipleOptions,
			MaxSuggestions:         maxSuggestions,
			RequireAllParticipants: req.RequireAllParticipants,
		},

		Status:            StatusOpen,
		ReservationStatus: ReservationOpen,
	}, nil
}

// ===========================
// Create Event (creator becomes the first participant)
func (s *Service) CreateEvent(ctx context.Context, req *CreateEventRequest, creatorID uint, ip string) (*Event, error) {
	e, err := BuildEvent(req, creatorID, time.Now())
	if err != nil {
		s.AuditSvc.LogAction(ctx, &creatorID, nil, "EVENT_CREATED",
			map[string]interface{}{"name": req.Name, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	if err := s.Repo.CreateEvent(ctx, e); err != nil {
		s.AuditSvc.LogAction(ctx, &creatorID, nil, "EVENT_CREATED",
			map[string]interface{}{"name": req.Name, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	creatorPriority := req.CreatorPriority
	if !validPriority(creatorPriority) {
		creatorPriority = PriorityMedium
	}
	participant := &Participant{
		EventID:  e.ID,
		UserID:   creatorID,
		Priority: creatorPriority,
	}
	if err := s.Repo.AddParticipant(ctx, participant); err != nil {
		return nil, err
	}
	e.Participants = []Participant{*participant}

	s.AuditSvc.LogAction(ctx, &creatorID, &e.ID, "EVENT_CREATED",
		map[string]interface{}{
			"name":           e.Name,
			"date_mode":      e.DateMode,
			"required_slots": e.RequiredSlots,
		}, ip, "success")

	return e, nil
}

// ===========================
// Join Event
func (s *Service) JoinEvent(ctx context.Context, eventID, userID uint, priority, ip string) error {
	e, err := s.Repo.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	if e.Status != StatusOpen {
		return ErrEventNotOpen
	}
	if e.Deadline != nil && e.Deadline.Before(time.Now()) {
		return ErrDeadlinePassed
	}
	for _, p := range e.Participants {
		if p.UserID == userID {
			return ErrAlreadyJoined
		}
	}
	if e.MaxParticipants != nil && len(e.Participants) >= *e.MaxParticipants {
		return ErrEventFull
	}

	if !validPriority(priority) {
		priority = PriorityMedium
	}

	err = s.Repo.AddParticipant(ctx, &Participant{
		EventID:  eventID,
		UserID:   userID,
		Priority: priority,
	})
	if err != nil {
		return err
	}

	s.AuditSvc.LogAction(ctx, &userID, &eventID, "EVENT_JOINED",
		map[string]interface{}{"priority": priority}, ip, "success")
	return nil
}

// ===========================
// Confirm Event (confirmation sub-state handling)
//
// Records the caller's confirmation and promotes the event to confirmed once
// the configured confirmation mode's threshold is reached.
func (s *Service) ConfirmEvent(ctx context.Context, eventID, userID uint, ip string) (*Event, error) {
	e, err := s.Repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if e.Status != StatusPendingConfirmation {
		return nil, ErrNotAwaitingAction
	}
	if !isParticipant(e, userID) {
		return nil, ErrNotParticipant
	}

	already, err := s.Repo.HasConfirmation(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyConfirmed
	}

	if err := s.Repo.AddConfirmation(ctx, &Confirmation{EventID: eventID, UserID: userID}); err != nil {
		return nil, err
	}

	count, err := s.Repo.CountConfirmations(ctx, eventID)
	if err != nil {
		return nil, err
	}
	creatorConfirmed, err := s.Repo.HasConfirmation(ctx, eventID, e.CreatorID)
	if err != nil {
		return nil, err
	}

	if ConfirmationThresholdMet(e, int(count), creatorConfirmed) {
		ok, err := s.Repo.UpdateEventStatus(ctx, eventID, StatusPendingConfirmation, StatusConfirmed, e.MatchedSlots)
		if err != nil {
			return nil, err
		}
		if ok {
			e.Status = StatusConfirmed
			s.AuditSvc.LogAction(ctx, &userID, &eventID, "EVENT_CONFIRMED",
				map[string]interface{}{"confirmations": count}, ip, "success")
		}
	}

	return e, nil
}

// ConfirmationThresholdMet evaluates the event's confirmation mode against the
// current confirmation count.
func ConfirmationThresholdMet(e *Event, confirmations int, creatorConfirmed bool) bool {
	if e.RequireCreatorConfirmation && !creatorConfirmed {
		return false
	}

	switch e.ConfirmationMode {
	case ConfirmationCreatorOnly:
		return creatorConfirmed
	case ConfirmationAll:
		return confirmations >= len(e.Participants)
	case ConfirmationMajority:
		return confirmations*2 > len(e.Participants)
	case ConfirmationMinimumCount:
		return confirmations >= e.MinimumConfirmations
	default:
		return false
	}
}

// ===========================
// Cancel Event (creator only; the lifecycle decides which states allow it)
func (s *Service) CancelEvent(ctx context.Context, eventID, userID uint, ip string) error {
	e, err := s.Repo.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e.CreatorID != userID {
		return ErrNotCreator
	}
	if !CanTransition(e.Status, StatusCancelled) {
		return fmt.Errorf("cannot cancel event in status %q", e.Status)
	}

	ok, err := s.Repo.UpdateEventStatus(ctx, eventID, e.Status, StatusCancelled, nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrEventNotOpen
	}

	s.AuditSvc.LogAction(ctx, &userID, &eventID, "EVENT_CANCELLED", nil, ip, "success")
	return nil
}

// ===========================
// Update Reservation (creator records the external booking outcome for a
// confirmed schedule; independent of the matching lifecycle)
func (s *Service) UpdateReservation(ctx context.Context, eventID, userID uint, status, ip string) error {
	if status != ReservationReserved && status != ReservationReleased {
		return fmt.Errorf("invalid reservation_status %q", status)
	}

	e, err := s.Repo.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e.CreatorID != userID {
		return ErrNotCreator
	}
	if status == ReservationReserved && e.Status != StatusConfirmed && e.Status != StatusMatched {
		return fmt.Errorf("cannot reserve event in status %q", e.Status)
	}

	if err := s.Repo.UpdateReservationStatus(ctx, eventID, status); err != nil {
		return err
	}

	s.AuditSvc.LogAction(ctx, &userID, &eventID, "EVENT_RESERVATION_UPDATED",
		map[string]interface{}{"reservation_status": status}, ip, "success")
	return nil
}

// ===========================
// Queries
func (s *Service) GetEvent(ctx context.Context, id uint) (*Event, error) {
	return s.Repo.GetEventByID(ctx, id)
}

func (s *Service) ListEvents(ctx context.Context, status string, creatorID, participantID uint) ([]Event, error) {
	switch {
	case creatorID != 0:
		return s.Repo.GetEventsByCreator(ctx, creatorID)
	case participantID != 0:
		return s.Repo.GetEventsByParticipant(ctx, participantID)
	case status != "":
		if !IsValidStatus(status) {
			return nil, fmt.Errorf("unrecognized event status %q", status)
		}
		return s.Repo.GetEventsByStatus(ctx, status)
	default:
		return s.Repo.GetEventsByStatus(ctx, StatusOpen)
	}
}

func isParticipant(e *Event, userID uint) bool {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func validPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}
