package matching

import (
	"reflect"
	"strings"
	"testing"

	"github.com/taroc/schedule-service-sub002/internal/event"
)

func seq(coords ...Coordinate) []Coordinate {
	return coords
}

func TestDecideConsecutive(t *testing.T) {
	e := &event.Event{DateMode: event.DateModeConsecutive, RequiredSlots: 3}

	t.Run("earliest sufficient run wins", func(t *testing.T) {
		available := seq(
			coord("2026-09-10", SlotDaytime),
			// gap
			coord("2026-09-12", SlotDaytime),
			coord("2026-09-12", SlotEvening),
			coord("2026-09-13", SlotDaytime),
			coord("2026-09-13", SlotEvening),
		)
		d := Decide(e, available)
		if !d.IsMatched || d.IsPartial {
			t.Fatalf("decision = %+v, want full match", d)
		}
		want := seq(
			coord("2026-09-12", SlotDaytime),
			coord("2026-09-12", SlotEvening),
			coord("2026-09-13", SlotDaytime),
		)
		if !reflect.DeepEqual(d.MatchedSlots, want) {
			t.Errorf("MatchedSlots = %v, want %v", d.MatchedSlots, want)
		}
	})

	t.Run("no run long enough", func(t *testing.T) {
		available := seq(
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-10", SlotEvening),
			coord("2026-09-14", SlotDaytime),
			coord("2026-09-14", SlotEvening),
		)
		d := Decide(e, available)
		if d.IsMatched {
			t.Fatalf("decision = %+v, want no match", d)
		}
		if d.Reason != ReasonInsufficientConsecutive {
			t.Errorf("Reason = %q, want %q", d.Reason, ReasonInsufficientConsecutive)
		}
	})

	t.Run("single required slot matches any availability", func(t *testing.T) {
		single := &event.Event{DateMode: event.DateModeConsecutive, RequiredSlots: 1}
		d := Decide(single, seq(coord("2026-09-20", SlotEvening)))
		if !d.IsMatched || len(d.MatchedSlots) != 1 {
			t.Fatalf("decision = %+v, want one matched slot", d)
		}
	})

	t.Run("empty availability", func(t *testing.T) {
		d := Decide(e, nil)
		if d.IsMatched {
			t.Fatalf("decision = %+v, want no match", d)
		}
	})
}

// Both users free on one full day: daytime and evening of the same date are
// adjacent, so a two-slot consecutive event matches within that day.
func TestDecideConsecutiveWithinOneDay(t *testing.T) {
	e := &event.Event{DateMode: event.DateModeConsecutive, RequiredSlots: 2}
	available := seq(
		coord("2026-09-10", SlotDaytime),
		coord("2026-09-10", SlotEvening),
	)

	d := Decide(e, available)
	if !d.IsMatched {
		t.Fatalf("decision = %+v, want match", d)
	}
	if !reflect.DeepEqual(d.MatchedSlots, available) {
		t.Errorf("MatchedSlots = %v, want %v", d.MatchedSlots, available)
	}
}

func TestDecideFlexible(t *testing.T) {
	e := &event.Event{DateMode: event.DateModeFlexible, RequiredSlots: 3}

	t.Run("earliest slots regardless of gaps", func(t *testing.T) {
		available := seq(
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-13", SlotEvening),
			coord("2026-09-17", SlotDaytime),
			coord("2026-09-20", SlotDaytime),
		)
		d := Decide(e, available)
		if !d.IsMatched || d.IsPartial {
			t.Fatalf("decision = %+v, want full match", d)
		}
		if !reflect.DeepEqual(d.MatchedSlots, available[:3]) {
			t.Errorf("MatchedSlots = %v, want first three", d.MatchedSlots)
		}
	})

	t.Run("insufficient overlap", func(t *testing.T) {
		d := Decide(e, seq(coord("2026-09-10", SlotDaytime)))
		if d.IsMatched {
			t.Fatalf("decision = %+v, want no match", d)
		}
		if d.Reason != ReasonInsufficientOverlap {
			t.Errorf("Reason = %q, want %q", d.Reason, ReasonInsufficientOverlap)
		}
	})

	t.Run("minimum consecutive prefers anchored selection", func(t *testing.T) {
		anchored := &event.Event{
			DateMode:           event.DateModeFlexible,
			RequiredSlots:      3,
			MinimumConsecutive: 2,
		}
		available := seq(
			coord("2026-09-10", SlotDaytime), // isolated
			coord("2026-09-12", SlotDaytime), // isolated
			coord("2026-09-15", SlotDaytime),
			coord("2026-09-15", SlotEvening), // run of 2
		)
		d := Decide(anchored, available)
		if !d.IsMatched {
			t.Fatalf("decision = %+v, want match", d)
		}
		if LongestRun(d.MatchedSlots) < 2 {
			t.Errorf("selection %v lacks the preferred run of 2", d.MatchedSlots)
		}
	})

	t.Run("minimum consecutive falls back when no run exists", func(t *testing.T) {
		anchored := &event.Event{
			DateMode:           event.DateModeFlexible,
			RequiredSlots:      2,
			MinimumConsecutive: 2,
		}
		available := seq(
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-12", SlotDaytime),
			coord("2026-09-14", SlotDaytime),
		)
		d := Decide(anchored, available)
		if !d.IsMatched {
			t.Fatalf("decision = %+v, want fallback match", d)
		}
		if !reflect.DeepEqual(d.MatchedSlots, available[:2]) {
			t.Errorf("MatchedSlots = %v, want earliest two", d.MatchedSlots)
		}
		if !strings.Contains(d.Reason, "unavailable") {
			t.Errorf("Reason = %q, want a note about the missing run", d.Reason)
		}
	})
}

func TestDecideWithinPeriodReason(t *testing.T) {
	e := &event.Event{DateMode: event.DateModeWithinPeriod, RequiredSlots: 4}
	d := Decide(e, seq(coord("2026-09-10", SlotDaytime)))
	if d.IsMatched {
		t.Fatalf("decision = %+v, want no match", d)
	}
	if d.Reason != ReasonInsufficientInPeriod {
		t.Errorf("Reason = %q, want %q", d.Reason, ReasonInsufficientInPeriod)
	}
}

func TestPartialMatching(t *testing.T) {
	e := &event.Event{
		DateMode:      event.DateModeFlexible,
		RequiredSlots: 4,
		Policy: event.MatchingPolicy{
			AllowPartialMatching: true,
			MinimumTimeSlots:     2,
		},
	}

	t.Run("above the floor", func(t *testing.T) {
		available := seq(
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-12", SlotDaytime),
			coord("2026-09-14", SlotDaytime),
		)
		d := Decide(e, available)
		if !d.IsMatched || !d.IsPartial {
			t.Fatalf("decision = %+v, want partial match", d)
		}
		if len(d.MatchedSlots) != 3 {
			t.Errorf("got %d slots, want 3", len(d.MatchedSlots))
		}
	})

	t.Run("below the floor", func(t *testing.T) {
		d := Decide(e, seq(coord("2026-09-10", SlotDaytime)))
		if d.IsMatched {
			t.Fatalf("decision = %+v, want no match below floor", d)
		}
	})

	t.Run("partial disabled", func(t *testing.T) {
		strict := &event.Event{DateMode: event.DateModeFlexible, RequiredSlots: 4}
		available := seq(
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-12", SlotDaytime),
			coord("2026-09-14", SlotDaytime),
		)
		d := Decide(strict, available)
		if d.IsMatched {
			t.Fatalf("decision = %+v, want no match with partial disabled", d)
		}
	})
}

func TestSuggestions(t *testing.T) {
	t.Run("primary selection ranks first", func(t *testing.T) {
		e := &event.Event{
			DateMode:      event.DateModeFlexible,
			RequiredSlots: 2,
			Policy:        event.MatchingPolicy{SuggestMultipleOptions: true, MaxSuggestions: 3},
		}
		available := seq(
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-11", SlotDaytime),
			coord("2026-09-12", SlotDaytime),
			coord("2026-09-13", SlotDaytime),
		)
		d := Decide(e, available)
		if !d.IsMatched {
			t.Fatalf("decision = %+v, want match", d)
		}
		if len(d.Suggestions) == 0 {
			t.Fatal("expected suggestions")
		}
		if !reflect.DeepEqual(d.Suggestions[0], d.MatchedSlots) {
			t.Errorf("first suggestion %v != primary selection %v", d.Suggestions[0], d.MatchedSlots)
		}
		if len(d.Suggestions) > 3 {
			t.Errorf("got %d suggestions, limit is 3", len(d.Suggestions))
		}
	})

	t.Run("consecutive suggestions slide within runs", func(t *testing.T) {
		e := &event.Event{
			DateMode:      event.DateModeConsecutive,
			RequiredSlots: 2,
			Policy:        event.MatchingPolicy{SuggestMultipleOptions: true, MaxSuggestions: 5},
		}
		available := seq(
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-10", SlotEvening),
			coord("2026-09-11", SlotDaytime),
		)
		d := Decide(e, available)
		if !d.IsMatched {
			t.Fatalf("decision = %+v, want match", d)
		}
		if len(d.Suggestions) != 2 {
			t.Fatalf("got %d suggestions, want 2 windows", len(d.Suggestions))
		}
		if !reflect.DeepEqual(d.Suggestions[0], d.MatchedSlots) {
			t.Errorf("first suggestion %v != primary %v", d.Suggestions[0], d.MatchedSlots)
		}
	})
}

// The same inputs must always produce the same decision.
func TestDecideDeterministic(t *testing.T) {
	e := &event.Event{
		DateMode:      event.DateModeFlexible,
		RequiredSlots: 3,
		Policy:        event.MatchingPolicy{SuggestMultipleOptions: true, MaxSuggestions: 4},
	}
	available := seq(
		coord("2026-09-10", SlotDaytime),
		coord("2026-09-10", SlotEvening),
		coord("2026-09-12", SlotDaytime),
		coord("2026-09-13", SlotEvening),
		coord("2026-09-15", SlotDaytime),
	)

	first := Decide(e, available)
	for i := 0; i < 5; i++ {
		if got := Decide(e, available); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %+v, first run produced %+v", i, got, first)
		}
	}
}
