package availability

import (
	"time"
)

// ============================
// Availability Model
//
// One row per (user, date). A missing row means the user is unavailable for
// that whole date: the matching engine treats absence as busy.
type Availability struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_date" json:"user_id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_user_date" json:"date"`
	Daytime   bool      `gorm:"not null;default:false" json:"daytime"`
	Evening   bool      `gorm:"not null;default:false" json:"evening"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Availability) TableName() string {
	return "availabilities"
}

// ============================
// Request DTOs
type DayAvailability struct {
	Date    string `json:"date" binding:"required"` // "2006-01-02"
	Daytime bool   `json:"daytime"`
	Evening bool   `json:"evening"`
}

type SetAvailabilityRequest struct {
	Days []DayAvailability `json:"days" binding:"required,dive"`
}
