package matching

import (
	"time"

	"github.com/taroc/schedule-service-sub002/internal/availability"
	"github.com/taroc/schedule-service-sub002/internal/event"
)

// daySlots is the availability of one user on one date.
type daySlots struct {
	daytime bool
	evening bool
}

// availabilityIndex answers "is user u available at coordinate c" lookups.
// A date missing from a user's map means unavailable: the engine fails
// closed on absent records.
type availabilityIndex map[uint]map[string]daySlots

func buildAvailabilityIndex(rows []availability.Availability) availabilityIndex {
	idx := make(availabilityIndex)
	for _, row := range rows {
		byDate, ok := idx[row.UserID]
		if !ok {
			byDate = make(map[string]daySlots)
			idx[row.UserID] = byDate
		}
		byDate[row.Date.Format(dateLayout)] = daySlots{daytime: row.Daytime, evening: row.Evening}
	}
	return idx
}

func (idx availabilityIndex) available(userID uint, c Coordinate) bool {
	byDate, ok := idx[userID]
	if !ok {
		return false
	}
	slots, ok := byDate[c.Date]
	if !ok {
		return false
	}
	if c.TimeSlot == SlotEvening {
		return slots.evening
	}
	return slots.daytime
}

// CandidateWindow returns the inclusive date range the engine considers for
// an event: the configured period for within_period, otherwise tomorrow
// through the scheduling horizon.
func CandidateWindow(e *event.Event, now time.Time, horizonDays int) (time.Time, time.Time) {
	tomorrow := now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)

	if e.DateMode == event.DateModeWithinPeriod && e.PeriodStart != nil && e.PeriodEnd != nil {
		from := *e.PeriodStart
		if from.Before(tomorrow) {
			from = tomorrow
		}
		return from, *e.PeriodEnd
	}

	return tomorrow, tomorrow.AddDate(0, 0, horizonDays-1)
}

// GenerateCandidates enumerates every coordinate inside the event's window
// that survives its time slot restriction, in chronological order.
func GenerateCandidates(e *event.Event, now time.Time, horizonDays int) []Coordinate {
	from, to := CandidateWindow(e, now, horizonDays)
	if to.Before(from) {
		return nil
	}

	var out []Coordinate
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, NewCoordinate(d, SlotDaytime), NewCoordinate(d, SlotEvening))
	}
	return RestrictByTimeSlot(out, e.TimeSlotRestriction)
}

// MutuallyAvailable keeps the candidates every counted participant has
// recorded as available, preserving chronological order. Missing records
// count as unavailable.
func MutuallyAvailable(candidates []Coordinate, userIDs []uint, idx availabilityIndex) []Coordinate {
	if len(userIDs) == 0 {
		return nil
	}

	out := make([]Coordinate, 0, len(candidates))
	for _, c := range candidates {
		shared := true
		for _, userID := range userIDs {
			if !idx.available(userID, c) {
				shared = false
				break
			}
		}
		if shared {
			out = append(out, c)
		}
	}
	return out
}
