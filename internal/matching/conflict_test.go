package matching

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/taroc/schedule-service-sub002/internal/event"
)

func TestAggregatePriority(t *testing.T) {
	participants := []event.Participant{
		{Priority: event.PriorityHigh},
		{Priority: event.PriorityMedium},
		{Priority: event.PriorityLow},
		{Priority: "unknown"},
	}
	if got := AggregatePriority(participants); got != 6 {
		t.Errorf("AggregatePriority = %d, want 6", got)
	}
}

func newEvaluation(id uint, createdAt time.Time, priorities []string, candidates []Coordinate, required int) *evaluation {
	e := &event.Event{
		ID:            id,
		CreatedAt:     createdAt,
		DateMode:      event.DateModeFlexible,
		RequiredSlots: required,
	}
	counted := make([]event.Participant, len(priorities))
	for i, p := range priorities {
		counted[i] = event.Participant{Priority: p}
	}
	return &evaluation{
		event:      e,
		counted:    counted,
		candidates: candidates,
		decision:   Decide(e, candidates),
	}
}

func TestResolveConflictsPriorityWins(t *testing.T) {
	contested := seq(coord("2026-09-10", SlotDaytime))
	t0 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// the stronger event was created later; priority must still win
	weak := newEvaluation(1, t0, []string{event.PriorityLow}, contested, 1)
	strong := newEvaluation(2, t0.Add(time.Hour), []string{event.PriorityHigh, event.PriorityHigh}, contested, 1)

	conflicts := resolveConflicts([]*evaluation{weak, strong})
	if conflicts != 1 {
		t.Fatalf("conflicts = %d, want 1", conflicts)
	}

	if !strong.decision.IsMatched {
		t.Error("high-priority event lost its slot")
	}
	if weak.decision.IsMatched {
		t.Errorf("low-priority event kept %v despite the conflict", weak.decision.MatchedSlots)
	}
	if !strings.Contains(weak.decision.Reason, "after conflict resolution") {
		t.Errorf("Reason = %q, want conflict-resolution marker", weak.decision.Reason)
	}
}

func TestResolveConflictsCreationTimeTieBreak(t *testing.T) {
	contested := seq(coord("2026-09-10", SlotDaytime))
	t0 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	older := newEvaluation(5, t0, []string{event.PriorityMedium}, contested, 1)
	newer := newEvaluation(3, t0.Add(time.Minute), []string{event.PriorityMedium}, contested, 1)

	resolveConflicts([]*evaluation{newer, older})

	if !older.decision.IsMatched {
		t.Error("earlier-created event lost the tie")
	}
	if newer.decision.IsMatched {
		t.Error("later-created event won the tie")
	}
}

func TestResolveConflictsLoserFallsBackToFreeSlots(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	shared := coord("2026-09-10", SlotDaytime)

	winner := newEvaluation(1, t0, []string{event.PriorityHigh}, seq(shared), 1)
	// the loser has an alternative coordinate to retreat to
	loser := newEvaluation(2, t0, []string{event.PriorityLow},
		seq(shared, coord("2026-09-11", SlotDaytime)), 1)

	conflicts := resolveConflicts([]*evaluation{winner, loser})
	if conflicts != 1 {
		t.Fatalf("conflicts = %d, want 1", conflicts)
	}

	if !winner.decision.IsMatched || !reflect.DeepEqual(winner.decision.MatchedSlots, seq(shared)) {
		t.Errorf("winner decision = %+v, want the contested slot", winner.decision)
	}
	if !loser.decision.IsMatched {
		t.Fatalf("loser decision = %+v, want fallback match", loser.decision)
	}
	want := seq(coord("2026-09-11", SlotDaytime))
	if !reflect.DeepEqual(loser.decision.MatchedSlots, want) {
		t.Errorf("loser slots = %v, want %v", loser.decision.MatchedSlots, want)
	}
}

// A slot freed by a shrinking re-evaluation is not re-offered in the same
// run: each event gets at most one re-pass.
func TestResolveConflictsNoFixpointIteration(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	slotA := coord("2026-09-10", SlotDaytime)
	slotB := coord("2026-09-11", SlotDaytime)

	first := newEvaluation(1, t0, []string{event.PriorityHigh}, seq(slotA), 1)
	// second wanted A, retreats to B
	second := newEvaluation(2, t0, []string{event.PriorityMedium}, seq(slotA, slotB), 1)
	// third wanted B and has no alternative
	third := newEvaluation(3, t0, []string{event.PriorityLow}, seq(slotB), 1)

	conflicts := resolveConflicts([]*evaluation{first, second, third})
	if conflicts != 2 {
		t.Fatalf("conflicts = %d, want 2", conflicts)
	}

	if !first.decision.IsMatched {
		t.Error("first event must keep slot A")
	}
	if !second.decision.IsMatched || !reflect.DeepEqual(second.decision.MatchedSlots, seq(slotB)) {
		t.Errorf("second decision = %+v, want retreat to slot B", second.decision)
	}
	if third.decision.IsMatched {
		t.Errorf("third decision = %+v, want no match without iteration", third.decision)
	}
}

func TestResolveConflictsNoOverlapNoConflicts(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	a := newEvaluation(1, t0, []string{event.PriorityMedium}, seq(coord("2026-09-10", SlotDaytime)), 1)
	b := newEvaluation(2, t0, []string{event.PriorityMedium}, seq(coord("2026-09-11", SlotDaytime)), 1)

	if conflicts := resolveConflicts([]*evaluation{a, b}); conflicts != 0 {
		t.Errorf("conflicts = %d, want 0", conflicts)
	}
	if !a.decision.IsMatched || !b.decision.IsMatched {
		t.Error("disjoint events must both stay matched")
	}
}
