package matching

import (
	"fmt"

	"github.com/taroc/schedule-service-sub002/internal/event"
)

// Not-matched reasons surfaced to callers. Business outcomes, not errors.
const (
	ReasonInsufficientParticipants = "insufficient participants"
	ReasonInsufficientConsecutive  = "insufficient consecutive availability"
	ReasonInsufficientOverlap      = "insufficient overlapping availability"
	ReasonInsufficientInPeriod     = "no sufficient slots within the specified period"
)

// Decision is the outcome of evaluating one event against the mutually
// available coordinate sequence of its counted participants.
type Decision struct {
	IsMatched    bool           `json:"is_matched"`
	IsPartial    bool           `json:"is_partial,omitempty"`
	MatchedSlots []Coordinate   `json:"matched_slots,omitempty"`
	Suggestions  [][]Coordinate `json:"suggestions,omitempty"`
	Reason       string         `json:"reason"`
}

// Decide runs the per-mode matching algorithm over the mutually available
// sequence. Pure and deterministic: the same event and sequence always yield
// the same decision, and the first-ranked suggestion always equals the
// primary selection.
func Decide(e *event.Event, available []Coordinate) Decision {
	switch e.DateMode {
	case event.DateModeConsecutive:
		return decideConsecutive(e, available)
	case event.DateModeWithinPeriod:
		return decideFlexible(e, available, ReasonInsufficientInPeriod)
	default:
		return decideFlexible(e, available, ReasonInsufficientOverlap)
	}
}

// ===========================
// consecutive: earliest run long enough, earliest-start tie-break
func decideConsecutive(e *event.Event, available []Coordinate) Decision {
	runs := MaximalRuns(available)

	for _, run := range runs {
		if len(run) >= e.RequiredSlots {
			d := Decision{
				IsMatched:    true,
				MatchedSlots: run[:e.RequiredSlots],
				Reason:       fmt.Sprintf("matched %d consecutive slots", e.RequiredSlots),
			}
			if e.Policy.SuggestMultipleOptions {
				d.Suggestions = consecutiveSuggestions(runs, e.RequiredSlots, e.Policy.MaxSuggestions)
			}
			return d
		}
	}

	return partialFallback(e, longestOf(runs), ReasonInsufficientConsecutive)
}

// consecutiveSuggestions ranks alternative windows: earlier runs first, then
// earlier start offsets within a run.
func consecutiveSuggestions(runs [][]Coordinate, required, limit int) [][]Coordinate {
	var out [][]Coordinate
	for _, run := range runs {
		for offset := 0; offset+required <= len(run); offset++ {
			out = append(out, run[offset:offset+required])
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// ===========================
// flexible / within_period: earliest slots, consecutive-run preference
func decideFlexible(e *event.Event, available []Coordinate, failReason string) Decision {
	if len(available) < e.RequiredSlots {
		return partialFallback(e, available, failReason)
	}

	selection := available[:e.RequiredSlots]
	reason := fmt.Sprintf("matched %d slots", e.RequiredSlots)

	if e.MinimumConsecutive > 1 && LongestRun(selection) < e.MinimumConsecutive {
		if reselected, ok := selectAroundRun(available, e.RequiredSlots, e.MinimumConsecutive); ok {
			selection = reselected
		} else {
			// no run of the preferred length exists anywhere; fall back to the
			// chronologically earliest selection
			reason = fmt.Sprintf("matched %d slots (consecutive run of %d unavailable)",
				e.RequiredSlots, e.MinimumConsecutive)
		}
	}

	d := Decision{
		IsMatched:    true,
		MatchedSlots: selection,
		Reason:       reason,
	}
	if e.Policy.SuggestMultipleOptions {
		d.Suggestions = flexibleSuggestions(selection, available, e.RequiredSlots, e.Policy.MaxSuggestions)
	}
	return d
}

// selectAroundRun builds a selection anchored on the earliest run of at least
// minRun slots, topped up with the earliest remaining coordinates.
func selectAroundRun(available []Coordinate, required, minRun int) ([]Coordinate, bool) {
	var anchor []Coordinate
	for _, run := range MaximalRuns(available) {
		if len(run) >= minRun {
			anchor = run
			break
		}
	}
	if anchor == nil {
		return nil, false
	}

	if len(anchor) > required {
		anchor = anchor[:required]
	}

	selected := make([]Coordinate, 0, required)
	inAnchor := make(map[string]bool, len(anchor))
	for _, c := range anchor {
		inAnchor[c.Key()] = true
		selected = append(selected, c)
	}
	for _, c := range available {
		if len(selected) == required {
			break
		}
		if !inAnchor[c.Key()] {
			selected = append(selected, c)
		}
	}

	SortCoordinates(selected)
	return selected, true
}

// flexibleSuggestions ranks sliding windows over the available sequence,
// always placing the primary selection first.
func flexibleSuggestions(primary, available []Coordinate, required, limit int) [][]Coordinate {
	out := [][]Coordinate{primary}
	primaryKey := selectionKey(primary)

	for i := 0; i+required <= len(available) && len(out) < limit; i++ {
		window := available[i : i+required]
		if selectionKey(window) != primaryKey {
			out = append(out, window)
		}
	}
	return out
}

func selectionKey(slots []Coordinate) string {
	key := ""
	for _, s := range slots {
		key += s.Key() + ";"
	}
	return key
}

// ===========================
// partial matching
func partialFallback(e *event.Event, usable []Coordinate, failReason string) Decision {
	floor := e.MinimumSlotFloor()
	if e.Policy.AllowPartialMatching && len(usable) >= floor && len(usable) > 0 {
		slots := usable
		if len(slots) > e.RequiredSlots {
			slots = slots[:e.RequiredSlots]
		}
		return Decision{
			IsMatched:    true,
			IsPartial:    true,
			MatchedSlots: slots,
			Reason: fmt.Sprintf("partial match: %d of %d required slots",
				len(slots), e.RequiredSlots),
		}
	}
	return Decision{IsMatched: false, Reason: failReason}
}

func longestOf(runs [][]Coordinate) []Coordinate {
	var longest []Coordinate
	for _, run := range runs {
		if len(run) > len(longest) {
			longest = run
		}
	}
	return longest
}
