package reports

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// GetEventRows loads events flattened for export, optionally filtered by
// status, newest first.
func (r *Repository) GetEventRows(ctx context.Context, status string) ([]EventReportRow, error) {
	query := r.DB.WithContext(ctx).
		Table("events e").
		Select(`e.id, e.name, e.creator_id, e.status, e.date_mode, e.required_slots,
			(SELECT COUNT(*) FROM event_participants p WHERE p.event_id = e.id) AS participant_count,
			COALESCE(e.matched_slots::text, '') AS matched_slots,
			e.deadline, e.matched_at, e.created_at`).
		Order("e.created_at DESC")
	if status != "" {
		query = query.Where("e.status = ?", status)
	}

	var rows []EventReportRow
	err := query.Scan(&rows).Error
	return rows, err
}

// GetParticipantRows loads event memberships for export, oldest join first.
func (r *Repository) GetParticipantRows(ctx context.Context, status string) ([]ParticipantReportRow, error) {
	query := r.DB.WithContext(ctx).
		Table("event_participants p").
		Select(`p.event_id, e.name AS event_name, e.status, p.user_id, p.priority, p.joined_at`).
		Joins("JOIN events e ON e.id = p.event_id").
		Order("p.event_id, p.joined_at")
	if status != "" {
		query = query.Where("e.status = ?", status)
	}

	var rows []ParticipantReportRow
	err := query.Scan(&rows).Error
	return rows, err
}
