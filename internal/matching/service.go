package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/taroc/schedule-service-sub002/internal/auditlog"
	"github.com/taroc/schedule-service-sub002/internal/availability"
	"github.com/taroc/schedule-service-sub002/internal/event"
	"github.com/taroc/schedule-service-sub002/utils"
)

// ===========================
// Collaborator contracts (the engine only talks to stores through these)

type EventStore interface {
	GetEventByID(ctx context.Context, id uint) (*event.Event, error)
	GetOpenEvents(ctx context.Context) ([]event.Event, error)
	GetEventsWithDeadlinePassed(ctx context.Context, now time.Time) ([]event.Event, error)
	GetEventsWithDeadlineApproaching(ctx context.Context, now, until time.Time) ([]event.Event, error)
	GetPendingConfirmationEvents(ctx context.Context) ([]event.Event, error)
	GetEventsByCreator(ctx context.Context, creatorID uint) ([]event.Event, error)
	GetEventsByParticipant(ctx context.Context, userID uint) ([]event.Event, error)
	UpdateEventStatus(ctx context.Context, id uint, from, to string, matchedSlots datatypes.JSON) (bool, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type AvailabilityStore interface {
	GetByUsersAndRange(ctx context.Context, userIDs []uint, from, to time.Time) ([]availability.Availability, error)
}

// Notifier receives engine state transitions. Delivery is external; the
// engine never blocks on it.
type Notifier interface {
	EventMatched(ctx context.Context, e *event.Event, slots []Coordinate, partial bool)
	ConfirmationRequired(ctx context.Context, e *event.Event, slots []Coordinate)
	DeadlineApproaching(ctx context.Context, e *event.Event)
}

// ===========================
// Results

type CheckResult struct {
	EventID      uint           `json:"event_id"`
	IsMatched    bool           `json:"is_matched"`
	IsPartial    bool           `json:"is_partial,omitempty"`
	Status       string         `json:"status"`
	MatchedSlots []Coordinate   `json:"matched_slots,omitempty"`
	Suggestions  [][]Coordinate `json:"suggestions,omitempty"`
	Reason       string         `json:"reason"`
}

type BatchFailure struct {
	EventID uint   `json:"event_id"`
	Reason  string `json:"reason"`
}

type BatchResult struct {
	RunID               string         `json:"run_id"`
	Total               int            `json:"total"`
	Matched             int            `json:"matched"`
	PendingConfirmation int            `json:"pending_confirmation"`
	Unmatched           int            `json:"unmatched"`
	Failed              int            `json:"failed"`
	ConflictsResolved   int            `json:"conflicts_resolved,omitempty"`
	Results             []CheckResult  `json:"results"`
	Failures            []BatchFailure `json:"failures,omitempty"`
}

type SweepResult struct {
	RunID                string         `json:"run_id"`
	Matched              int            `json:"matched"`
	Expired              int            `json:"expired"`
	ConfirmationsExpired int            `json:"confirmations_expired"`
	Results              []CheckResult  `json:"results"`
	Failures             []BatchFailure `json:"failures,omitempty"`
}

// evaluation carries one event through phase one of a run: counted
// participants, their mutually available sequence, and the decision.
type evaluation struct {
	event      *event.Event
	counted    []event.Participant
	candidates []Coordinate
	decision   Decision
}

// ===========================
// Service

type Service struct {
	events       EventStore
	availability AvailabilityStore
	notifier     Notifier
	audit        auditlog.Service
	horizonDays  int
	now          func() time.Time
}

func NewService(events EventStore, avail AvailabilityStore, notifier Notifier, audit auditlog.Service, horizonDays int) *Service {
	if horizonDays < 1 {
		horizonDays = 56
	}
	return &Service{
		events:       events,
		availability: avail,
		notifier:     notifier,
		audit:        audit,
		horizonDays:  horizonDays,
		now:          time.Now,
	}
}

// ===========================
// Single-event check
func (s *Service) CheckEventMatching(ctx context.Context, eventID uint) (*CheckResult, error) {
	e, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if e.Status != event.StatusOpen {
		return &CheckResult{
			EventID: e.ID,
			Status:  e.Status,
			Reason:  fmt.Sprintf("event is not open (status=%s)", e.Status),
		}, nil
	}

	eval, err := s.evaluateEvent(ctx, e)
	if err != nil {
		log.Printf("⚠️ Evaluation failed for event %d: %v", e.ID, err)
		return &CheckResult{
			EventID: e.ID,
			Status:  e.Status,
			Reason:  "evaluation failed: data access error",
		}, nil
	}

	res := s.applyDecision(ctx, eval)
	s.audit.LogAction(ctx, nil, &e.ID, "MATCHING_CHECK",
		map[string]interface{}{"is_matched": res.IsMatched, "reason": res.Reason}, "", "success")
	return &res, nil
}

// ===========================
// Batch check: every open event, creation order, isolated failures
func (s *Service) CheckAllEvents(ctx context.Context) (*BatchResult, error) {
	events, err := s.events.GetOpenEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open events: %w", err)
	}

	batch := &BatchResult{RunID: uuid.NewString(), Total: len(events)}
	for i := range events {
		e := &events[i]
		eval, err := s.evaluateEvent(ctx, e)
		if err != nil {
			log.Printf("⚠️ Batch %s: evaluation failed for event %d: %v", batch.RunID, e.ID, err)
			batch.Failed++
			batch.Failures = append(batch.Failures, BatchFailure{EventID: e.ID, Reason: "data access failure"})
			continue
		}
		batch.tally(s.applyDecision(ctx, eval))
	}

	s.audit.LogAction(ctx, nil, nil, "MATCHING_BATCH",
		map[string]interface{}{
			"run_id": batch.RunID, "total": batch.Total,
			"matched": batch.Matched, "failed": batch.Failed,
		}, "", "success")
	return batch, nil
}

// ===========================
// Global matching: parallel independent evaluation, then serialized
// cross-event double-booking resolution
func (s *Service) GlobalMatching(ctx context.Context) (*BatchResult, error) {
	events, err := s.events.GetOpenEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open events: %w", err)
	}

	batch := &BatchResult{RunID: uuid.NewString(), Total: len(events)}

	// phase one: per-event evaluations only read store data, so they can
	// run concurrently
	evals := make([]*evaluation, len(events))
	errs := make([]error, len(events))
	var wg sync.WaitGroup
	for i := range events {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			evals[i], errs[i] = s.evaluateEvent(ctx, &events[i])
		}(i)
	}
	wg.Wait()

	succeeded := make([]*evaluation, 0, len(events))
	for i := range events {
		if errs[i] != nil {
			log.Printf("⚠️ Global %s: evaluation failed for event %d: %v", batch.RunID, events[i].ID, errs[i])
			batch.Failed++
			batch.Failures = append(batch.Failures, BatchFailure{EventID: events[i].ID, Reason: "data access failure"})
			continue
		}
		succeeded = append(succeeded, evals[i])
	}

	// phase two: single-threaded conflict resolution over the collected
	// candidates
	batch.ConflictsResolved = resolveConflicts(succeeded)

	for _, eval := range succeeded {
		batch.tally(s.applyDecision(ctx, eval))
	}

	s.audit.LogAction(ctx, nil, nil, "MATCHING_GLOBAL",
		map[string]interface{}{
			"run_id": batch.RunID, "total": batch.Total, "matched": batch.Matched,
			"conflicts_resolved": batch.ConflictsResolved, "failed": batch.Failed,
		}, "", "success")
	return batch, nil
}

// ===========================
// Deadline sweep: match-or-expire every open event past its deadline, plus
// confirmation timeouts
func (s *Service) SweepExpiredEvents(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	events, err := s.events.GetEventsWithDeadlinePassed(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("load deadline-passed events: %w", err)
	}

	sweep := &SweepResult{RunID: uuid.NewString()}
	for i := range events {
		e := &events[i]
		eval, err := s.evaluateEvent(ctx, e)
		if err != nil {
			log.Printf("⚠️ Sweep %s: evaluation failed for event %d: %v", sweep.RunID, e.ID, err)
			sweep.Failures = append(sweep.Failures, BatchFailure{EventID: e.ID, Reason: "data access failure"})
			continue
		}

		if eval.decision.IsMatched {
			// the deadline has passed, so suggestion mode no longer applies:
			// the primary selection is committed
			res := s.commitMatch(ctx, eval)
			if res.Status == event.StatusMatched || res.Status == event.StatusPendingConfirmation {
				sweep.Matched++
			}
			sweep.Results = append(sweep.Results, res)
			continue
		}

		res := CheckResult{
			EventID:   e.ID,
			Status:    event.StatusExpired,
			IsMatched: false,
			Reason:    eval.decision.Reason,
		}
		ok, uerr := s.events.UpdateEventStatus(ctx, e.ID, event.StatusOpen, event.StatusExpired, nil)
		if uerr != nil {
			// the computed decision stands; only the write is reported
			res.Status = e.Status
			res.Reason = fmt.Sprintf("%s; expiry update failed", eval.decision.Reason)
		} else if !ok {
			res.Status = e.Status
			res.Reason = fmt.Sprintf("%s; event changed concurrently", eval.decision.Reason)
		} else {
			sweep.Expired++
		}
		sweep.Results = append(sweep.Results, res)
	}

	sweep.ConfirmationsExpired = s.sweepConfirmationTimeouts(ctx, now)

	s.audit.LogAction(ctx, nil, nil, "MATCHING_SWEEP",
		map[string]interface{}{
			"run_id": sweep.RunID, "matched": sweep.Matched, "expired": sweep.Expired,
			"confirmations_expired": sweep.ConfirmationsExpired,
		}, "", "success")
	return sweep, nil
}

// sweepConfirmationTimeouts expires pending_confirmation events whose
// confirmation window (timeout + grace) has elapsed.
func (s *Service) sweepConfirmationTimeouts(ctx context.Context, now time.Time) int {
	pending, err := s.events.GetPendingConfirmationEvents(ctx)
	if err != nil {
		log.Printf("⚠️ Confirmation sweep skipped: %v", err)
		return 0
	}

	expired := 0
	for i := range pending {
		e := &pending[i]
		deadline := e.ConfirmationDeadline()
		if deadline == nil || deadline.After(now) {
			continue
		}
		ok, err := s.events.UpdateEventStatus(ctx, e.ID, event.StatusPendingConfirmation, event.StatusExpired, nil)
		if err != nil {
			log.Printf("⚠️ Confirmation expiry failed for event %d: %v", e.ID, err)
			continue
		}
		if ok {
			expired++
		}
	}
	return expired
}

// ===========================
// Deadline reminders
func (s *Service) SendDeadlineReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	events, err := s.events.GetEventsWithDeadlineApproaching(ctx, now, now.Add(window))
	if err != nil {
		return 0, fmt.Errorf("load deadline-approaching events: %w", err)
	}

	sent := 0
	for i := range events {
		key := fmt.Sprintf("deadline_reminder:%d", events[i].ID)
		if !utils.MarkOnce(ctx, key, 24*time.Hour) {
			continue
		}
		s.notifier.DeadlineApproaching(ctx, &events[i])
		sent++
	}
	return sent, nil
}

// ===========================
// Commit a caller-chosen selection (suggestion mode hands the choice to the
// caller; this is the write path once they have chosen)
func (s *Service) CommitSelection(ctx context.Context, eventID uint, slots []Coordinate) (*CheckResult, error) {
	if len(slots) == 0 {
		return nil, errors.New("no slots provided")
	}

	e, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.Status != event.StatusOpen {
		return &CheckResult{
			EventID: e.ID,
			Status:  e.Status,
			Reason:  fmt.Sprintf("event is not open (status=%s)", e.Status),
		}, nil
	}
	if len(slots) < e.MinimumSlotFloor() || len(slots) > e.RequiredSlots {
		return nil, fmt.Errorf("selection must contain between %d and %d slots", e.MinimumSlotFloor(), e.RequiredSlots)
	}

	eval, err := s.evaluateEvent(ctx, e)
	if err != nil {
		return &CheckResult{EventID: e.ID, Status: e.Status, Reason: "evaluation failed: data access error"}, nil
	}

	// every chosen slot must still be mutually available to the counted set
	availableKeys := make(map[string]bool, len(eval.candidates))
	for _, c := range eval.candidates {
		availableKeys[c.Key()] = true
	}
	for _, c := range slots {
		if !availableKeys[c.Key()] {
			return &CheckResult{
				EventID: e.ID,
				Status:  e.Status,
				Reason:  fmt.Sprintf("slot %s is no longer mutually available", c.Key()),
			}, nil
		}
	}

	SortCoordinates(slots)
	eval.decision = Decision{
		IsMatched:    true,
		IsPartial:    len(slots) < e.RequiredSlots,
		MatchedSlots: slots,
		Reason:       fmt.Sprintf("caller-selected %d slots committed", len(slots)),
	}
	res := s.commitMatch(ctx, eval)
	s.audit.LogAction(ctx, nil, &e.ID, "MATCHING_COMMIT",
		map[string]interface{}{"slots": len(slots), "status": res.Status}, "", "success")
	return &res, nil
}

// ===========================
// Stats: pure store-derived counters with graceful partial failure
type StatusCounts struct {
	Open                int64 `json:"open"`
	Matched             int64 `json:"matched"`
	PendingConfirmation int64 `json:"pending_confirmation"`
	Confirmed           int64 `json:"confirmed"`
	Cancelled           int64 `json:"cancelled"`
	Expired             int64 `json:"expired"`
	RolledBack          int64 `json:"rolled_back"`
}

type UserEventStats struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Matched   int `json:"matched"`
	Confirmed int `json:"confirmed"`
}

type StatsResponse struct {
	GeneratedAt   time.Time      `json:"generated_at"`
	Overall       StatusCounts   `json:"overall"`
	Created       UserEventStats `json:"created"`
	Participating UserEventStats `json:"participating"`
	Degraded      []string       `json:"degraded,omitempty"`
}

// GetStats aggregates event counters. Each dependent dataset degrades
// independently: a failed sub-query zeroes its fields and is listed in
// Degraded; only total failure of every sub-query is a hard error.
func (s *Service) GetStats(ctx context.Context, userID uint) (*StatsResponse, error) {
	stats := &StatsResponse{GeneratedAt: s.now()}

	overallOK := s.collectOverall(ctx, &stats.Overall)
	if !overallOK {
		stats.Degraded = append(stats.Degraded, "overall")
	}

	createdOK := true
	if created, err := s.events.GetEventsByCreator(ctx, userID); err != nil {
		log.Printf("⚠️ Stats: created-events query failed for user %d: %v", userID, err)
		createdOK = false
		stats.Degraded = append(stats.Degraded, "created")
	} else {
		stats.Created = tallyUserEvents(created)
	}

	participatingOK := true
	if participating, err := s.events.GetEventsByParticipant(ctx, userID); err != nil {
		log.Printf("⚠️ Stats: participating-events query failed for user %d: %v", userID, err)
		participatingOK = false
		stats.Degraded = append(stats.Degraded, "participating")
	} else {
		stats.Participating = tallyUserEvents(participating)
	}

	if !overallOK && !createdOK && !participatingOK {
		return nil, errors.New("statistics unavailable")
	}
	return stats, nil
}

func (s *Service) collectOverall(ctx context.Context, out *StatusCounts) bool {
	targets := []struct {
		status string
		field  *int64
	}{
		{event.StatusOpen, &out.Open},
		{event.StatusMatched, &out.Matched},
		{event.StatusPendingConfirmation, &out.PendingConfirmation},
		{event.StatusConfirmed, &out.Confirmed},
		{event.StatusCancelled, &out.Cancelled},
		{event.StatusExpired, &out.Expired},
		{event.StatusRolledBack, &out.RolledBack},
	}
	for _, t := range targets {
		count, err := s.events.CountByStatus(ctx, t.status)
		if err != nil {
			*out = StatusCounts{}
			return false
		}
		*t.field = count
	}
	return true
}

func tallyUserEvents(events []event.Event) UserEventStats {
	stats := UserEventStats{Total: len(events)}
	for _, e := range events {
		switch e.Status {
		case event.StatusOpen:
			stats.Open++
		case event.StatusMatched, event.StatusPendingConfirmation:
			stats.Matched++
		case event.StatusConfirmed:
			stats.Confirmed++
		}
	}
	return stats
}

// ===========================
// Evaluation internals

// evaluateEvent computes the matching decision for one event without writing
// anything. The counted participant set starts as everyone who joined; when
// the policy allows it, the lowest-priority participants (never the creator)
// are dropped one at a time down to min_participants in search of a
// satisfiable subset.
func (s *Service) evaluateEvent(ctx context.Context, e *event.Event) (*evaluation, error) {
	participants := e.Participants

	if len(participants) < e.MinParticipants {
		return &evaluation{
			event:    e,
			counted:  participants,
			decision: Decision{IsMatched: false, Reason: ReasonInsufficientParticipants},
		}, nil
	}

	now := s.now()
	from, to := CandidateWindow(e, now, s.horizonDays)
	rows, err := s.availability.GetByUsersAndRange(ctx, participantIDs(participants), from, to)
	if err != nil {
		return nil, err
	}
	idx := buildAvailabilityIndex(rows)
	candidates := GenerateCandidates(e, now, s.horizonDays)

	counted := participants
	var best *evaluation
	for {
		shared := MutuallyAvailable(candidates, participantIDs(counted), idx)
		cur := &evaluation{
			event:      e,
			counted:    counted,
			candidates: shared,
			decision:   Decide(e, shared),
		}

		if cur.decision.IsMatched && !cur.decision.IsPartial {
			return cur, nil
		}
		if best == nil || (cur.decision.IsMatched && !best.decision.IsMatched) {
			best = cur
		}

		if e.Policy.RequireAllParticipants || len(counted) <= e.MinParticipants {
			return best, nil
		}
		counted = dropLowestPriority(counted)
	}
}

// dropLowestPriority removes the weakest-priority, latest-joined participant.
// The creator (always first) is never dropped.
func dropLowestPriority(participants []event.Participant) []event.Participant {
	dropIdx := -1
	for i := len(participants) - 1; i >= 1; i-- {
		if dropIdx == -1 || event.PriorityWeight(participants[i].Priority) < event.PriorityWeight(participants[dropIdx].Priority) {
			dropIdx = i
		}
	}
	if dropIdx == -1 {
		return participants
	}

	out := make([]event.Participant, 0, len(participants)-1)
	out = append(out, participants[:dropIdx]...)
	out = append(out, participants[dropIdx+1:]...)
	return out
}

func participantIDs(participants []event.Participant) []uint {
	ids := make([]uint, len(participants))
	for i, p := range participants {
		ids[i] = p.UserID
	}
	return ids
}

// applyDecision writes the transition a decision implies and notifies. A
// not-matched decision leaves the event open for the next run. In suggestion
// mode a full match is reported but not committed: the caller chooses via
// CommitSelection.
func (s *Service) applyDecision(ctx context.Context, eval *evaluation) CheckResult {
	e := eval.event
	d := eval.decision

	res := CheckResult{
		EventID:      e.ID,
		IsMatched:    d.IsMatched,
		IsPartial:    d.IsPartial,
		Status:       e.Status,
		MatchedSlots: d.MatchedSlots,
		Suggestions:  d.Suggestions,
		Reason:       d.Reason,
	}

	if !d.IsMatched {
		return res
	}

	if e.Policy.SuggestMultipleOptions && len(d.Suggestions) > 0 {
		res.Reason += " (suggestions returned, awaiting selection)"
		return res
	}

	return s.writeMatch(ctx, eval, res)
}

// commitMatch writes a match unconditionally (sweep and caller-selection
// paths, where suggestion mode no longer defers the write).
func (s *Service) commitMatch(ctx context.Context, eval *evaluation) CheckResult {
	res := CheckResult{
		EventID:      eval.event.ID,
		IsMatched:    true,
		IsPartial:    eval.decision.IsPartial,
		Status:       eval.event.Status,
		MatchedSlots: eval.decision.MatchedSlots,
		Reason:       eval.decision.Reason,
	}
	return s.writeMatch(ctx, eval, res)
}

func (s *Service) writeMatch(ctx context.Context, eval *evaluation, res CheckResult) CheckResult {
	e := eval.event
	d := eval.decision

	target := event.StatusMatched
	if e.RequiresConfirmation() {
		target = event.StatusPendingConfirmation
	}

	payload, err := json.Marshal(d.MatchedSlots)
	if err != nil {
		res.Reason += " (slot serialization failed)"
		return res
	}

	ok, err := s.events.UpdateEventStatus(ctx, e.ID, event.StatusOpen, target, datatypes.JSON(payload))
	if err != nil {
		log.Printf("⚠️ Status update failed for event %d: %v", e.ID, err)
		res.Reason += " (status update failed)"
		return res
	}
	if !ok {
		// lost the optimistic write; the event moved on and is left for the
		// next run
		res.Reason += " (event changed concurrently, left for next run)"
		return res
	}

	res.Status = target
	if target == event.StatusPendingConfirmation {
		s.notifier.ConfirmationRequired(ctx, e, d.MatchedSlots)
	} else {
		s.notifier.EventMatched(ctx, e, d.MatchedSlots, d.IsPartial)
	}
	return res
}

func (b *BatchResult) tally(res CheckResult) {
	b.Results = append(b.Results, res)
	switch {
	case res.Status == event.StatusPendingConfirmation:
		b.PendingConfirmation++
	case res.Status == event.StatusMatched:
		b.Matched++
	case res.IsMatched:
		// matched but uncommitted (suggestion mode or a lost optimistic write)
		b.Matched++
	default:
		b.Unmatched++
	}
}
