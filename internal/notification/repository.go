package notification

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateNotificationLog(ctx context.Context, log *NotificationLog) error
	UpdateNotificationLog(ctx context.Context, log *NotificationLog) error
	GetNotificationsByUser(ctx context.Context, userID uint, limit, offset int) ([]NotificationLog, int64, error)
	// HasNotified reports whether a response already produced a sent notification
	HasNotified(ctx context.Context, responseID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateNotificationLog(ctx context.Context, log *NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) UpdateNotificationLog(ctx context.Context, log *NotificationLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

func (r *repository) GetNotificationsByUser(ctx context.Context, userID uint, limit, offset int) ([]NotificationLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&NotificationLog{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []NotificationLog
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, total, err
}

func (r *repository) HasNotified(ctx context.Context, responseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&NotificationLog{}).
		Where("response_id = ? AND status = ?", responseID, StatusSent).
		Count(&count).Error
	return count > 0, err
}
