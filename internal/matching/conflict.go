package matching

import (
	"sort"

	"github.com/taroc/schedule-service-sub002/internal/event"
)

// AggregatePriority sums the join-priority weights of the counted
// participants. Used only for cross-event conflict resolution.
func AggregatePriority(participants []event.Participant) int {
	total := 0
	for _, p := range participants {
		total += event.PriorityWeight(p.Priority)
	}
	return total
}

// candidateOutranks decides which of two events keeps a contested
// coordinate: higher aggregate participant priority wins, ties go to the
// earlier-created event, and the event id is the final stable tie-break.
func candidateOutranks(a, b *evaluation) bool {
	pa, pb := AggregatePriority(a.counted), AggregatePriority(b.counted)
	if pa != pb {
		return pa > pb
	}
	if !a.event.CreatedAt.Equal(b.event.CreatedAt) {
		return a.event.CreatedAt.Before(b.event.CreatedAt)
	}
	return a.event.ID < b.event.ID
}

// resolveConflicts is phase two of global matching: single-threaded
// double-booking resolution over the independently computed candidates.
//
// Matched events claim their coordinates in rank order (aggregate priority,
// then creation time). An event that finds any of its chosen coordinates
// already claimed by a stronger event is re-evaluated exactly once against
// its candidate sequence minus everything already claimed, falling back to a
// lesser match or no match. There is no fixpoint iteration: a slot freed by
// a shrinking re-evaluation is not re-offered within the same run.
func resolveConflicts(evals []*evaluation) (conflicts int) {
	matched := make([]*evaluation, 0, len(evals))
	for _, ev := range evals {
		if ev.decision.IsMatched {
			matched = append(matched, ev)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return candidateOutranks(matched[i], matched[j])
	})

	claimed := map[string]bool{}
	for _, ev := range matched {
		contested := false
		for _, slot := range ev.decision.MatchedSlots {
			if claimed[slot.Key()] {
				contested = true
				break
			}
		}

		if contested {
			conflicts++
			remaining := make([]Coordinate, 0, len(ev.candidates))
			for _, c := range ev.candidates {
				if !claimed[c.Key()] {
					remaining = append(remaining, c)
				}
			}

			ev.decision = Decide(ev.event, remaining)
			if !ev.decision.IsMatched {
				ev.decision.Reason += " (after conflict resolution)"
			}
		}

		for _, slot := range ev.decision.MatchedSlots {
			claimed[slot.Key()] = true
		}
	}

	return conflicts
}
