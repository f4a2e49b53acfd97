package matching

import (
	"sort"
	"time"

	"github.com/taroc/schedule-service-sub002/internal/event"
)

const dateLayout = "2006-01-02"

// TimeSlot identifies the half of a day a coordinate occupies.
type TimeSlot string

const (
	SlotDaytime TimeSlot = "daytime"
	SlotEvening TimeSlot = "evening"
)

// Coordinate is the unit the engine schedules: one time slot on one date.
type Coordinate struct {
	Date     string   `json:"date"` // "2006-01-02"
	TimeSlot TimeSlot `json:"time_slot"`
}

// NewCoordinate builds a coordinate from a concrete date.
func NewCoordinate(date time.Time, slot TimeSlot) Coordinate {
	return Coordinate{Date: date.Format(dateLayout), TimeSlot: slot}
}

// Key returns a stable string identity for map usage and conflict claims.
func (c Coordinate) Key() string {
	return c.Date + "/" + string(c.TimeSlot)
}

// index places the coordinate on a single total ordering: two slots per day,
// daytime before evening. Returns -1 for an unparsable date.
func (c Coordinate) index() int64 {
	t, err := time.Parse(dateLayout, c.Date)
	if err != nil {
		return -1
	}
	i := (t.Unix() / 86400) * 2
	if c.TimeSlot == SlotEvening {
		i++
	}
	return i
}

// IsAdjacent reports whether b directly continues a. Three shapes count:
// same-day daytime→evening, evening→next-day daytime, and the same slot on
// the next calendar day (the chain shape left after a daytime_only or
// evening_only restriction filters the sequence).
func IsAdjacent(a, b Coordinate) bool {
	ia, ib := a.index(), b.index()
	if ia < 0 || ib < 0 {
		return false
	}
	diff := ib - ia
	return diff == 1 || (diff == 2 && a.TimeSlot == b.TimeSlot)
}

// SortCoordinates orders slots chronologically: by date, daytime before
// evening. Input is sorted in place.
func SortCoordinates(slots []Coordinate) {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].index() < slots[j].index()
	})
}

// MaximalRuns splits a sorted coordinate sequence into its maximal
// consecutive runs, preserving chronological order.
func MaximalRuns(sorted []Coordinate) [][]Coordinate {
	if len(sorted) == 0 {
		return nil
	}

	var runs [][]Coordinate
	start := 0
	for i := 1; i < len(sorted); i++ {
		if !IsAdjacent(sorted[i-1], sorted[i]) {
			runs = append(runs, sorted[start:i])
			start = i
		}
	}
	runs = append(runs, sorted[start:])
	return runs
}

// LongestRun returns the length of the longest maximal consecutive run in a
// sorted coordinate sequence.
func LongestRun(sorted []Coordinate) int {
	longest := 0
	for _, run := range MaximalRuns(sorted) {
		if len(run) > longest {
			longest = len(run)
		}
	}
	return longest
}

// RestrictByTimeSlot filters out coordinates that violate the event's time
// slot restriction.
func RestrictByTimeSlot(slots []Coordinate, restriction string) []Coordinate {
	switch restriction {
	case event.RestrictionDaytimeOnly:
		return filterSlots(slots, SlotDaytime)
	case event.RestrictionEveningOnly:
		return filterSlots(slots, SlotEvening)
	default:
		return slots
	}
}

func filterSlots(slots []Coordinate, keep TimeSlot) []Coordinate {
	out := make([]Coordinate, 0, len(slots))
	for _, s := range slots {
		if s.TimeSlot == keep {
			out = append(out, s)
		}
	}
	return out
}
