package notification

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ChannelEmail = "email"

	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// NotificationLog - each message sent to an organizer
type NotificationLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"` // recipient organizer
	InvitationID string         `gorm:"type:varchar(64);not null;index" json:"invitation_id"`
	ResponseID   string         `gorm:"type:varchar(36);index" json:"response_id,omitempty"`
	Channel      string         `gorm:"size:20;not null" json:"channel"`
	Subject      string         `gorm:"size:255" json:"subject,omitempty"`
	Body         string         `gorm:"type:text;not null" json:"body"`
	Recipients   datatypes.JSON `gorm:"not null" json:"recipients"`
	Status       string         `gorm:"size:20;not null" json:"status"`
	Error        *string        `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type PaginatedNotifications struct {
	Data  []NotificationLog `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
