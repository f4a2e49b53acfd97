package notification

import "time"

// Notification types mirror the transition message types on the wire.
const (
	TypeMatched              = "matched"
	TypeConfirmationRequired = "confirmation_required"
	TypeDeadlineApproaching  = "deadline_approaching"
	TypeExpired              = "expired"
	TypeRolledBack           = "rolled_back"
)

// Notification is an in-app notification row, one per recipient.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	EventID   *uint     `gorm:"index" json:"event_id,omitempty"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
