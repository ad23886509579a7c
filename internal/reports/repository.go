package reports

import (
	"context"
	"time"

	"github.com/sharath018/invitation-rsvp-backend/internal/rsvp"
	"gorm.io/gorm"
)

type Repository interface {
	ListResponses(ctx context.Context, invitationID string, start, end *time.Time) ([]rsvp.Response, error)
	ListAnswerChoices(ctx context.Context, responseIDs []string) ([]AnswerChoice, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ListResponses returns the responses of an invitation in arrival order,
// optionally limited to a submission window
func (r *repository) ListResponses(ctx context.Context, invitationID string, start, end *time.Time) ([]rsvp.Response, error) {
	query := r.db.WithContext(ctx).Where("invitation_id = ?", invitationID)
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}

	var responses []rsvp.Response
	err := query.Order("created_at ASC, id ASC").Find(&responses).Error
	return responses, err
}

func (r *repository) ListAnswerChoices(ctx context.Context, responseIDs []string) ([]AnswerChoice, error) {
	var rows []AnswerChoice
	if len(responseIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Table("survey_answers AS a").
		Select("a.response_id, a.question_id, c.text AS choice_text").
		Joins("JOIN survey_choices AS c ON c.id = a.choice_id").
		Where("a.response_id IN ?", responseIDs).
		Order("a.id ASC").
		Scan(&rows).Error
	return rows, err
}
