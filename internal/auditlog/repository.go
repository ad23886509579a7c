package auditlog

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error)
	GetByID(ctx context.Context, ownerID, id uint) (*AuditLog, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new audit log entry
func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) ownedBy(ctx context.Context, ownerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&AuditLog{}).
		Where("user_id = ? OR invitation_id IN (?)",
			ownerID,
			r.db.Table("invitations").Select("id").Where("user_id = ?", ownerID),
		)
}

// GetByFilter retrieves audit logs with filtering and pagination
func (r *repository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error) {
	var logs []AuditLog
	var total int64

	query := r.ownedBy(ctx, filter.OwnerID)

	if filter.InvitationID != "" {
		query = query.Where("invitation_id = ?", filter.InvitationID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// GetByID retrieves a specific audit log visible to the owner
func (r *repository) GetByID(ctx context.Context, ownerID, id uint) (*AuditLog, error) {
	var log AuditLog
	if err := r.ownedBy(ctx, ownerID).Where("id = ?", id).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}
