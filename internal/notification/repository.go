package notification

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

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

func (r *Repository) CreateBatch(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&notifications).Error
}

// GetByUser returns a user's notifications, newest first. unreadOnly narrows
// to unread rows.
func (r *Repository) GetByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []Notification
	err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (r *Repository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips one notification owned by userID. Returns gorm.ErrRecordNotFound
// when the row does not exist or belongs to someone else.
func (r *Repository) MarkRead(ctx context.Context, id, userID uint) error {
	result := r.DB.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
