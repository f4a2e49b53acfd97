package matching

import (
	"reflect"
	"testing"

	"github.com/taroc/schedule-service-sub002/internal/event"
)

func coord(date string, slot TimeSlot) Coordinate {
	return Coordinate{Date: date, TimeSlot: slot}
}

func TestIsAdjacent(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinate
		want bool
	}{
		{"daytime to evening same day", coord("2026-09-10", SlotDaytime), coord("2026-09-10", SlotEvening), true},
		{"evening to next morning", coord("2026-09-10", SlotEvening), coord("2026-09-11", SlotDaytime), true},
		{"daytime to next daytime", coord("2026-09-10", SlotDaytime), coord("2026-09-11", SlotDaytime), true},
		{"evening to next evening", coord("2026-09-10", SlotEvening), coord("2026-09-11", SlotEvening), true},
		{"daytime to next evening skips a slot", coord("2026-09-10", SlotDaytime), coord("2026-09-11", SlotEvening), false},
		{"evening then same day daytime is backwards", coord("2026-09-10", SlotEvening), coord("2026-09-10", SlotDaytime), false},
		{"two days apart", coord("2026-09-10", SlotDaytime), coord("2026-09-12", SlotDaytime), false},
		{"same coordinate", coord("2026-09-10", SlotDaytime), coord("2026-09-10", SlotDaytime), false},
		{"unparsable date", coord("bogus", SlotDaytime), coord("2026-09-10", SlotEvening), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAdjacent(tt.a, tt.b); got != tt.want {
				t.Errorf("IsAdjacent(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortCoordinates(t *testing.T) {
	slots := []Coordinate{
		coord("2026-09-11", SlotDaytime),
		coord("2026-09-10", SlotEvening),
		coord("2026-09-10", SlotDaytime),
		coord("2026-09-12", SlotEvening),
	}
	SortCoordinates(slots)

	want := []Coordinate{
		coord("2026-09-10", SlotDaytime),
		coord("2026-09-10", SlotEvening),
		coord("2026-09-11", SlotDaytime),
		coord("2026-09-12", SlotEvening),
	}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("SortCoordinates = %v, want %v", slots, want)
	}
}

func TestMaximalRuns(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if runs := MaximalRuns(nil); runs != nil {
			t.Errorf("MaximalRuns(nil) = %v, want nil", runs)
		}
	})

	t.Run("single run across a night", func(t *testing.T) {
		sorted := []Coordinate{
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-10", SlotEvening),
			coord("2026-09-11", SlotDaytime),
		}
		runs := MaximalRuns(sorted)
		if len(runs) != 1 || len(runs[0]) != 3 {
			t.Fatalf("runs = %v, want one run of 3", runs)
		}
	})

	t.Run("gap splits runs", func(t *testing.T) {
		sorted := []Coordinate{
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-10", SlotEvening),
			coord("2026-09-12", SlotDaytime),
			coord("2026-09-12", SlotEvening),
			coord("2026-09-15", SlotDaytime),
		}
		runs := MaximalRuns(sorted)
		if len(runs) != 3 {
			t.Fatalf("got %d runs, want 3: %v", len(runs), runs)
		}
		if len(runs[0]) != 2 || len(runs[1]) != 2 || len(runs[2]) != 1 {
			t.Errorf("run lengths = %d,%d,%d, want 2,2,1", len(runs[0]), len(runs[1]), len(runs[2]))
		}
	})

	t.Run("daytime-only chain counts as consecutive", func(t *testing.T) {
		sorted := []Coordinate{
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-11", SlotDaytime),
			coord("2026-09-12", SlotDaytime),
		}
		if got := LongestRun(sorted); got != 3 {
			t.Errorf("LongestRun = %d, want 3", got)
		}
	})
}

func TestRestrictByTimeSlot(t *testing.T) {
	slots := []Coordinate{
		coord("2026-09-10", SlotDaytime),
		coord("2026-09-10", SlotEvening),
		coord("2026-09-11", SlotDaytime),
	}

	both := RestrictByTimeSlot(slots, event.RestrictionBoth)
	if len(both) != 3 {
		t.Errorf("both kept %d slots, want 3", len(both))
	}

	daytime := RestrictByTimeSlot(slots, event.RestrictionDaytimeOnly)
	if len(daytime) != 2 {
		t.Fatalf("daytime_only kept %d slots, want 2", len(daytime))
	}
	for _, s := range daytime {
		if s.TimeSlot != SlotDaytime {
			t.Errorf("daytime_only kept %v", s)
		}
	}

	evening := RestrictByTimeSlot(slots, event.RestrictionEveningOnly)
	if len(evening) != 1 || evening[0].TimeSlot != SlotEvening {
		t.Errorf("evening_only kept %v, want the single evening slot", evening)
	}
}
