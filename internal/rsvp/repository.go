package rsvp

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrResponseNotFound = errors.New("response not found")

type Repository interface {
	Create(ctx context.Context, r *Response) error
	GetByID(ctx context.Context, invitationID, id string) (*Response, error)
	Update(ctx context.Context, r *Response) error
	Delete(ctx context.Context, invitationID, id string) error
	// ListByInvitation returns responses in arrival order
	ListByInvitation(ctx context.Context, invitationID string) ([]Response, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, resp *Response) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

func (r *repository) GetByID(ctx context.Context, invitationID, id string) (*Response, error) {
	var resp Response
	err := r.db.WithContext(ctx).
		Where("invitation_id = ? AND id = ?", invitationID, id).
		First(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResponseNotFound
	}
	return &resp, err
}

func (r *repository) Update(ctx context.Context, resp *Response) error {
	res := r.db.WithContext(ctx).Model(&Response{}).
		Where("invitation_id = ? AND id = ?", resp.InvitationID, resp.ID).
		Updates(map[string]interface{}{
			"name":          resp.Name,
			"accept":        resp.Accept,
			"num_attendees": resp.NumAttendees,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrResponseNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, invitationID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM survey_answers WHERE response_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("invitation_id = ? AND id = ?", invitationID, id).Delete(&Response{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrResponseNotFound
		}
		return nil
	})
}

func (r *repository) ListByInvitation(ctx context.Context, invitationID string) ([]Response, error) {
	var responses []Response
	err := r.db.WithContext(ctx).
		Where("invitation_id = ?", invitationID).
		Order("created_at ASC, id ASC").
		Find(&responses).Error
	return responses, err
}
