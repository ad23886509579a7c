package auth

import "time"

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is an organizer account
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Phone        string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Status       string    `gorm:"type:varchar(20);default:active" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Phone    string
}

type LoginInput struct {
	Email    string
	Password string
}
