package availability

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// Upsert Availability (unique per user+date, last write wins)
func (r *Repository) Upsert(ctx context.Context, rows []Availability) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"daytime", "evening", "updated_at"}),
	}).Create(&rows).Error
}

// ===========================
// Get Availability for one user inside a date range
func (r *Repository) GetByUserAndRange(ctx context.Context, userID uint, from, to time.Time) ([]Availability, error) {
	var rows []Availability
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

// ===========================
// Get Availability for a set of users inside a date range.
// This is the read the matching engine intersects over.
func (r *Repository) GetByUsersAndRange(ctx context.Context, userIDs []uint, from, to time.Time) ([]Availability, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []Availability
	err := r.DB.WithContext(ctx).
		Where("user_id IN ? AND date >= ? AND date <= ?", userIDs, from, to).
		Order("user_id ASC, date ASC").
		Find(&rows).Error
	return rows, err
}
