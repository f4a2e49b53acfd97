package event

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// Create Event
func (r *Repository) CreateEvent(ctx context.Context, e *Event) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

// ===========================
// Get Event By ID (participants preloaded, stored status validated)
func (r *Repository) GetEventByID(ctx context.Context, id uint) (*Event, error) {
	var e Event
	err := r.DB.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC, id ASC")
		}).
		First(&e, id).Error
	if err != nil {
		return nil, err
	}
	if err := ValidateStoredStatus(e.Status); err != nil {
		return nil, err
	}
	return &e, nil
}

// ===========================
// Get Open Events in creation order (batch evaluation order)
func (r *Repository) GetOpenEvents(ctx context.Context) ([]Event, error) {
	return r.findWithParticipants(ctx, "status = ?", StatusOpen)
}

// ===========================
// Get Open Events whose deadline has passed
func (r *Repository) GetEventsWithDeadlinePassed(ctx context.Context, now time.Time) ([]Event, error) {
	return r.findWithParticipants(ctx, "status = ? AND deadline IS NOT NULL AND deadline < ?", StatusOpen, now)
}

// ===========================
// Get Open Events with a deadline inside the reminder window
func (r *Repository) GetEventsWithDeadlineApproaching(ctx context.Context, now, until time.Time) ([]Event, error) {
	return r.findWithParticipants(ctx, "status = ? AND deadline IS NOT NULL AND deadline >= ? AND deadline <= ?", StatusOpen, now, until)
}

// ===========================
// Get Events awaiting confirmation
func (r *Repository) GetPendingConfirmationEvents(ctx context.Context) ([]Event, error) {
	return r.findWithParticipants(ctx, "status = ?", StatusPendingConfirmation)
}

// ===========================
// List Events by creator / participant / status
func (r *Repository) GetEventsByCreator(ctx context.Context, creatorID uint) ([]Event, error) {
	return r.findWithParticipants(ctx, "creator_id = ?", creatorID)
}

func (r *Repository) GetEventsByParticipant(ctx context.Context, userID uint) ([]Event, error) {
	var events []Event
	err := r.DB.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC, id ASC")
		}).
		Joins("JOIN event_participants ON event_participants.event_id = events.id").
		Where("event_participants.user_id = ?", userID).
		Order("events.created_at ASC").
		Find(&events).Error
	return events, err
}

func (r *Repository) GetEventsByStatus(ctx context.Context, status string) ([]Event, error) {
	return r.findWithParticipants(ctx, "status = ?", status)
}

func (r *Repository) findWithParticipants(ctx context.Context, query string, args ...interface{}) ([]Event, error) {
	var events []Event
	err := r.DB.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC, id ASC")
		}).
		Where(query, args...).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

// ===========================
// Update Event Status (optimistic: only transitions from the expected state;
// a losing writer gets false and the event is left for the next run)
func (r *Repository) UpdateEventStatus(ctx context.Context, id uint, from, to string, matchedSlots datatypes.JSON) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}

	switch to {
	case StatusMatched, StatusPendingConfirmation:
		updates["matched_slots"] = matchedSlots
		updates["matched_at"] = now
	case StatusExpired, StatusCancelled, StatusRolledBack:
		// matched slots are only meaningful while a match is in force
		updates["matched_slots"] = nil
		updates["matched_at"] = nil
	}

	res := r.DB.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ===========================
// Update Reservation Status (external booking state, independent of matching)
func (r *Repository) UpdateReservationStatus(ctx context.Context, id uint, status string) error {
	return r.DB.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("reservation_status", status).Error
}

// ===========================
// Participants
func (r *Repository) AddParticipant(ctx context.Context, p *Participant) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repository) CountParticipants(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&Participant{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

// ===========================
// Confirmations
func (r *Repository) AddConfirmation(ctx context.Context, c *Confirmation) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *Repository) CountConfirmations(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&Confirmation{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

func (r *Repository) HasConfirmation(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&Confirmation{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

// ===========================
// Status counters for stats
func (r *Repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&Event{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
