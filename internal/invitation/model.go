package invitation

import (
	"time"
)

type Style string

const (
	StyleDefault Style = "DEFAULT"
	StyleFancy   Style = "FANCY"
)

func (s Style) Valid() bool {
	return s == StyleDefault || s == StyleFancy
}

// ============================
// 🔷 GORM Invitation Model
type Invitation struct {
	ID     string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`

	Title      string     `gorm:"type:varchar(255);not null" json:"title"`
	Address    string     `gorm:"type:text" json:"address"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	ActivityAt time.Time  `gorm:"not null;index" json:"activity_at"`
	CloseAt    *time.Time `json:"close_at,omitempty"`

	AcceptLabel string `gorm:"type:varchar(100)" json:"accept_label"`
	RejectLabel string `gorm:"type:varchar(100)" json:"reject_label"`

	PrimaryColor       string `gorm:"type:varchar(7)" json:"primary_color"`
	SecondaryColor     string `gorm:"type:varchar(7)" json:"secondary_color"`
	BackgroundColor    string `gorm:"type:varchar(7)" json:"background_color"`
	PrimaryGradient    bool   `json:"primary_gradient"`
	BackgroundGradient bool   `json:"background_gradient"`
	FontFamily         string `gorm:"type:varchar(100)" json:"font_family"`
	Italic             bool   `json:"italic"`
	Style              Style  `gorm:"type:varchar(16);not null" json:"style"`
	BackgroundImageURL string `gorm:"type:text" json:"background_image_url,omitempty"`

	NotifyOnResponse bool `json:"notify_on_response"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	ResponseCount int64 `gorm:"-" json:"response_count"`
}

// IsClosed reports whether responses are no longer accepted at now.
// The close instant itself still accepts responses.
func (i *Invitation) IsClosed(now time.Time) bool {
	return i.CloseAt != nil && now.After(*i.CloseAt)
}

// ============================
// 🟡 Create / Update Invitation Request
//
// Date-times accept RFC 3339, "2006-01-02T15:04" or "2006-01-02".
type InvitationRequest struct {
	ID         string   `json:"id,omitempty" example:"summer-bbq-2025"`
	Title      string   `json:"title" binding:"required,max=255" example:"Summer BBQ"`
	Address    string   `json:"address" example:"12 Harbour St, Sydney"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	ActivityAt string   `json:"activity_at" binding:"required" example:"2025-12-20T18:00:00Z"`
	CloseAt    string   `json:"close_at,omitempty" example:"2025-12-15T23:59:00Z"`

	AcceptLabel string `json:"accept_label,omitempty" example:"Count me in"`
	RejectLabel string `json:"reject_label,omitempty" example:"Can't make it"`

	PrimaryColor       string `json:"primary_color,omitempty" example:"#6c63ff"`
	SecondaryColor     string `json:"secondary_color,omitempty" example:"#ff6584"`
	BackgroundColor    string `json:"background_color,omitempty" example:"#ffffff"`
	PrimaryGradient    bool   `json:"primary_gradient"`
	BackgroundGradient bool   `json:"background_gradient"`
	FontFamily         string `json:"font_family,omitempty" example:"Playfair Display"`
	Italic             bool   `json:"italic"`
	Style              string `json:"style,omitempty" example:"FANCY"`

	NotifyOnResponse *bool `json:"notify_on_response,omitempty"`
	// Update only: drop the current background image
	RemoveBackground bool `json:"remove_background,omitempty"`
}

// PaginatedInvitations is the organizer's list view
type PaginatedInvitations struct {
	Data       []Invitation `json:"data"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"total_pages"`
}
