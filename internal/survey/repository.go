package survey

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListQuestions(ctx context.Context, invitationID string) ([]Question, error)
	ReplaceQuestions(ctx context.Context, invitationID string, questions []Question) error
	CreateAnswers(ctx context.Context, answers []Answer) error
	ListAnswers(ctx context.Context, responseIDs []string) ([]Answer, error)
	CountAnswers(ctx context.Context, invitationID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListQuestions(ctx context.Context, invitationID string) ([]Question, error) {
	var questions []Question
	err := r.db.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("invitation_id = ?", invitationID).
		Order("position ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// ReplaceQuestions drops the current survey of an invitation and stores the
// given one in a single transaction.
func (r *repository) ReplaceQuestions(ctx context.Context, invitationID string, questions []Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := tx.Model(&Question{}).Select("id").Where("invitation_id = ?", invitationID)
		if err := tx.Where("question_id IN (?)", existing).Delete(&Choice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invitation_id = ?", invitationID).Delete(&Question{}).Error; err != nil {
			return err
		}

		for i := range questions {
			questions[i].InvitationID = invitationID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) CreateAnswers(ctx context.Context, answers []Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&answers).Error
}

func (r *repository) ListAnswers(ctx context.Context, responseIDs []string) ([]Answer, error) {
	var answers []Answer
	if len(responseIDs) == 0 {
		return answers, nil
	}
	err := r.db.WithContext(ctx).
		Where("response_id IN ?", responseIDs).
		Order("id ASC").
		Find(&answers).Error
	return answers, err
}

func (r *repository) CountAnswers(ctx context.Context, invitationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Answer{}).
		Joins("JOIN survey_questions ON survey_questions.id = survey_answers.question_id").
		Where("survey_questions.invitation_id = ?", invitationID).
		Count(&count).Error
	return count, err
}
