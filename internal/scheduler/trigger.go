package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/taroc/schedule-service-sub002/internal/matching"
)

// Engine is the subset of the matching service the trigger drives.
type Engine interface {
	GlobalMatching(ctx context.Context) (*matching.BatchResult, error)
	SweepExpiredEvents(ctx context.Context) (*matching.SweepResult, error)
	SendDeadlineReminders(ctx context.Context, window time.Duration) (int, error)
}

// Trigger periodically drives the matching engine: global matching runs,
// deadline sweeps and reminder fan-out. Event-driven checks (join, API calls)
// happen elsewhere; the trigger is the time-driven safety net.
type Trigger struct {
	Engine Engine

	MatchInterval    time.Duration
	SweepInterval    time.Duration
	ReminderInterval time.Duration
	ReminderWindow   time.Duration
}

func NewTrigger(engine Engine, matchInterval, sweepInterval, reminderInterval time.Duration) *Trigger {
	return &Trigger{
		Engine:           engine,
		MatchInterval:    matchInterval,
		SweepInterval:    sweepInterval,
		ReminderInterval: reminderInterval,
		ReminderWindow:   24 * time.Hour,
	}
}

// Run blocks until the context is cancelled. Each cycle failure is logged and
// the next tick proceeds; a broken run never stops the loop.
func (t *Trigger) Run(ctx context.Context) {
	matchTicker := time.NewTicker(t.MatchInterval)
	sweepTicker := time.NewTicker(t.SweepInterval)
	reminderTicker := time.NewTicker(t.ReminderInterval)
	defer matchTicker.Stop()
	defer sweepTicker.Stop()
	defer reminderTicker.Stop()

	log.Printf("✅ Matching trigger started (match=%s sweep=%s reminders=%s)",
		t.MatchInterval, t.SweepInterval, t.ReminderInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Matching trigger stopped")
			return

		case <-matchTicker.C:
			batch, err := t.Engine.GlobalMatching(ctx)
			if err != nil {
				log.Printf("⚠️ Scheduled global matching failed: %v", err)
				continue
			}
			log.Printf("Global matching run %s: %d/%d matched, %d conflicts resolved",
				batch.RunID, batch.Matched+batch.PendingConfirmation, batch.Total, batch.ConflictsResolved)

		case <-sweepTicker.C:
			sweep, err := t.Engine.SweepExpiredEvents(ctx)
			if err != nil {
				log.Printf("⚠️ Scheduled sweep failed: %v", err)
				continue
			}
			log.Printf("Sweep run %s: %d matched, %d expired, %d confirmations expired",
				sweep.RunID, sweep.Matched, sweep.Expired, sweep.ConfirmationsExpired)

		case <-reminderTicker.C:
			if _, err := t.Engine.SendDeadlineReminders(ctx, t.ReminderWindow); err != nil {
				log.Printf("⚠️ Deadline reminders failed: %v", err)
			}
		}
	}
}
