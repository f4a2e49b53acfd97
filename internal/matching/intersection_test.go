package matching

import (
	"testing"
	"time"

	"github.com/taroc/schedule-service-sub002/internal/availability"
	"github.com/taroc/schedule-service-sub002/internal/event"
)

func day(date string) time.Time {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMutuallyAvailable(t *testing.T) {
	idx := buildAvailabilityIndex([]availability.Availability{
		{UserID: 1, Date: day("2026-09-10"), Daytime: true, Evening: true},
		{UserID: 1, Date: day("2026-09-11"), Daytime: true},
		{UserID: 2, Date: day("2026-09-10"), Daytime: true, Evening: true},
		{UserID: 2, Date: day("2026-09-11"), Evening: true},
	})

	candidates := seq(
		coord("2026-09-10", SlotDaytime),
		coord("2026-09-10", SlotEvening),
		coord("2026-09-11", SlotDaytime),
		coord("2026-09-11", SlotEvening),
		coord("2026-09-12", SlotDaytime),
	)

	t.Run("intersection keeps only shared slots", func(t *testing.T) {
		got := MutuallyAvailable(candidates, []uint{1, 2}, idx)
		want := seq(
			coord("2026-09-10", SlotDaytime),
			coord("2026-09-10", SlotEvening),
		)
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("slot %d = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("missing records count as busy", func(t *testing.T) {
		// user 3 has no rows at all
		if got := MutuallyAvailable(candidates, []uint{1, 3}, idx); len(got) != 0 {
			t.Errorf("got %v, want empty intersection", got)
		}
	})

	t.Run("no users yields nothing", func(t *testing.T) {
		if got := MutuallyAvailable(candidates, nil, idx); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}

func TestCandidateWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	tomorrow := day("2026-09-02")

	t.Run("default horizon starts tomorrow", func(t *testing.T) {
		e := &event.Event{DateMode: event.DateModeFlexible}
		from, to := CandidateWindow(e, now, 14)
		if !from.Equal(tomorrow) {
			t.Errorf("from = %v, want %v", from, tomorrow)
		}
		if want := day("2026-09-15"); !to.Equal(want) {
			t.Errorf("to = %v, want %v", to, want)
		}
	})

	t.Run("within_period clamps the past", func(t *testing.T) {
		start, end := day("2026-08-20"), day("2026-09-05")
		e := &event.Event{DateMode: event.DateModeWithinPeriod, PeriodStart: &start, PeriodEnd: &end}
		from, to := CandidateWindow(e, now, 14)
		if !from.Equal(tomorrow) {
			t.Errorf("from = %v, want clamped to %v", from, tomorrow)
		}
		if !to.Equal(end) {
			t.Errorf("to = %v, want %v", to, end)
		}
	})

	t.Run("future period kept as-is", func(t *testing.T) {
		start, end := day("2026-09-10"), day("2026-09-12")
		e := &event.Event{DateMode: event.DateModeWithinPeriod, PeriodStart: &start, PeriodEnd: &end}
		from, to := CandidateWindow(e, now, 14)
		if !from.Equal(start) || !to.Equal(end) {
			t.Errorf("window = %v..%v, want %v..%v", from, to, start, end)
		}
	})
}

func TestGenerateCandidates(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("two slots per day", func(t *testing.T) {
		e := &event.Event{DateMode: event.DateModeFlexible, TimeSlotRestriction: event.RestrictionBoth}
		got := GenerateCandidates(e, now, 3)
		if len(got) != 6 {
			t.Fatalf("got %d candidates, want 6", len(got))
		}
		if got[0] != coord("2026-09-02", SlotDaytime) || got[1] != coord("2026-09-02", SlotEvening) {
			t.Errorf("first day = %v, %v", got[0], got[1])
		}
	})

	t.Run("restriction filters candidates", func(t *testing.T) {
		e := &event.Event{DateMode: event.DateModeFlexible, TimeSlotRestriction: event.RestrictionEveningOnly}
		got := GenerateCandidates(e, now, 3)
		if len(got) != 3 {
			t.Fatalf("got %d candidates, want 3", len(got))
		}
		for _, c := range got {
			if c.TimeSlot != SlotEvening {
				t.Errorf("candidate %v violates evening_only", c)
			}
		}
	})

	t.Run("period already over", func(t *testing.T) {
		start, end := day("2026-08-01"), day("2026-08-15")
		e := &event.Event{DateMode: event.DateModeWithinPeriod, PeriodStart: &start, PeriodEnd: &end}
		if got := GenerateCandidates(e, now, 14); got != nil {
			t.Errorf("got %v, want nil for an elapsed period", got)
		}
	})
}
