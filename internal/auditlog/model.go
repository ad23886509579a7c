package auditlog

import (
	"time"

	"gorm.io/datatypes"
)

// Actions recorded by the services
const (
	ActionInvitationCreated  = "INVITATION_CREATED"
	ActionInvitationUpdated  = "INVITATION_UPDATED"
	ActionInvitationDeleted  = "INVITATION_DELETED"
	ActionBackgroundUploaded = "INVITATION_BACKGROUND_UPLOADED"
	ActionSurveyReplaced     = "SURVEY_REPLACED"
	ActionResponseSubmitted  = "RSVP_SUBMITTED"
	ActionResponseUpdated    = "RSVP_UPDATED"
	ActionResponseDeleted    = "RSVP_DELETED"
	ActionResponsesExported  = "RSVP_EXPORTED"
	ActionUserRegistered     = "USER_REGISTERED"
	ActionUserLogin          = "USER_LOGIN"
	ActionPasswordReset      = "PASSWORD_RESET"
	ActionNotificationSent   = "NOTIFICATION_SENT"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// AuditLog represents the audit_logs table
type AuditLog struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       *uint          `gorm:"index" json:"user_id"`                           // nil for guest actions
	InvitationID *string        `gorm:"type:varchar(64);index" json:"invitation_id"` // nil for account actions
	Action       string         `gorm:"size:100;not null;index" json:"action"`
	Details      datatypes.JSON `json:"details"`
	IPAddress    string         `gorm:"size:45" json:"ip_address"`
	Status       string         `gorm:"size:20;not null;index" json:"status"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName overrides table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter represents filters for querying audit logs
type AuditLogFilter struct {
	// OwnerID limits results to the organizer's own actions and
	// guest actions on invitations they own.
	OwnerID      uint
	InvitationID string
	Action       string
	Status       string
	FromDate     *time.Time
	ToDate       *time.Time
	Page         int
	Limit        int
}

// PaginatedAuditLogs represents paginated audit log response
type PaginatedAuditLogs struct {
	Data       []AuditLog `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}
