package survey

import "time"

// Question is one survey question attached to an invitation
type Question struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InvitationID string    `gorm:"type:varchar(64);not null;index" json:"invitation_id"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	Position     int       `gorm:"not null" json:"position"`
	Choices      []Choice  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Question) TableName() string { return "survey_questions" }

type Choice struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Text       string `gorm:"type:text;not null" json:"text"`
	Position   int    `gorm:"not null" json:"position"`
}

func (Choice) TableName() string { return "survey_choices" }

// Answer links a response to the choice picked for one question
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ResponseID string    `gorm:"type:varchar(36);not null;index" json:"response_id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	ChoiceID   uint      `gorm:"not null" json:"choice_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Answer) TableName() string { return "survey_answers" }

// Selection is a guest's pick for one question
type Selection struct {
	QuestionID uint `json:"question_id" binding:"required"`
	ChoiceID   uint `json:"choice_id" binding:"required"`
}

// QuestionView is the projection shown on the public form
type QuestionView struct {
	ID       uint         `json:"id"`
	Text     string       `json:"text"`
	Position int          `json:"position"`
	Choices  []ChoiceView `json:"choices"`
}

type ChoiceView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionInput is the organizer's definition of one question
type QuestionInput struct {
	Text    string   `json:"text" binding:"required" example:"Main course?"`
	Choices []string `json:"choices" binding:"required,min=1" example:"Fish,Vegetarian"`
}
