package rsvp

import (
	"time"

	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
)

// Response is one guest submission. Several responses may carry the same name.
type Response struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	InvitationID string    `gorm:"type:varchar(64);not null;index:idx_responses_invitation_created,priority:1" json:"invitation_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Accept       bool      `gorm:"not null" json:"accept"`
	NumAttendees int       `gorm:"not null" json:"num_attendees"`
	CreatedAt    time.Time `gorm:"index:idx_responses_invitation_created,priority:2" json:"created_at"`
}

func (Response) TableName() string { return "responses" }

// Submission is what a guest sends from the public form
type Submission struct {
	Name         string             `json:"name" example:"Sam Carter"`
	Accept       *bool              `json:"accept" example:"true"`
	NumAttendees *int               `json:"num_attendees,omitempty" example:"2"`
	Selections   []survey.Selection `json:"answers,omitempty"`
}

// ResponsePatch is an organizer correction
type ResponsePatch struct {
	Name         *string `json:"name,omitempty"`
	Accept       *bool   `json:"accept,omitempty"`
	NumAttendees *int    `json:"num_attendees,omitempty"`
}

// PublicInvitation is what guests see before answering
type PublicInvitation struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Address     string                `json:"address"`
	Latitude    *float64              `json:"latitude,omitempty"`
	Longitude   *float64              `json:"longitude,omitempty"`
	ActivityAt  time.Time             `json:"activity_at"`
	CloseAt     *time.Time            `json:"close_at,omitempty"`
	Closed      bool                  `json:"closed"`
	AcceptLabel string                `json:"accept_label"`
	RejectLabel string                `json:"reject_label"`
	Style       string                `json:"style"`
	FontFamily  string                `json:"font_family"`
	Italic      bool                  `json:"italic"`
	Secondary   string                `json:"secondary_color"`
	Background  invitation.Background `json:"background"`
	Primary     invitation.Background `json:"primary"`
	Questions   []survey.QuestionView `json:"questions"`
}
