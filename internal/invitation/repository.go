package invitation

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Tables owned by other modules that hang off an invitation. They are cleared
// when the invitation is deleted.
const (
	responsesTable = "responses"
	questionsTable = "survey_questions"
	choicesTable   = "survey_choices"
	answersTable   = "survey_answers"
)

type Repository interface {
	Create(ctx context.Context, inv *Invitation) error
	Update(ctx context.Context, inv *Invitation) error
	// Delete removes the invitation with its responses and survey and returns
	// the ids of the removed responses
	Delete(ctx context.Context, id string) ([]string, error)
	GetByID(ctx context.Context, id string) (*Invitation, error)
	ListByOwner(ctx context.Context, userID uint, limit, offset int, search string) ([]Invitation, int64, error)
	CountResponses(ctx context.Context, ids []string) (map[string]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ===========================
// 🎯 Create Invitation
func (r *repository) Create(ctx context.Context, inv *Invitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

// ===========================
// 🔄 Update Invitation
func (r *repository) Update(ctx context.Context, inv *Invitation) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// ===========================
// ❌ Delete Invitation (with its responses and survey)
func (r *repository) Delete(ctx context.Context, id string) ([]string, error) {
	var responseIDs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(responsesTable).Where("invitation_id = ?", id).Pluck("id", &responseIDs).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+answersTable+" WHERE response_id IN (SELECT id FROM "+responsesTable+" WHERE invitation_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+choicesTable+" WHERE question_id IN (SELECT id FROM "+questionsTable+" WHERE invitation_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+questionsTable+" WHERE invitation_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+responsesTable+" WHERE invitation_id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&Invitation{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responseIDs, nil
}

// ===========================
// 🔍 Get Invitation by ID
func (r *repository) GetByID(ctx context.Context, id string) (*Invitation, error) {
	var inv Invitation
	err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ===========================
// 📦 List Invitations by Owner
func (r *repository) ListByOwner(ctx context.Context, userID uint, limit, offset int, search string) ([]Invitation, int64, error) {
	query := r.db.WithContext(ctx).Model(&Invitation{}).Where("user_id = ?", userID)

	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(address) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invitations []Invitation
	err := query.Order("activity_at DESC").Limit(limit).Offset(offset).Find(&invitations).Error
	return invitations, total, err
}

// CountResponses returns the response total per invitation id
func (r *repository) CountResponses(ctx context.Context, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		InvitationID string
		Total        int64
	}
	err := r.db.WithContext(ctx).Table(responsesTable).
		Select("invitation_id, COUNT(*) AS total").
		Where("invitation_id IN ?", ids).
		Group("invitation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.InvitationID] = row.Total
	}
	return counts, nil
}
