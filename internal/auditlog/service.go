package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"
)

type Service interface {
	LogAction(ctx context.Context, userID *uint, invitationID *string, action string, details map[string]interface{}, ip string, status string) error
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error)
	GetAuditLogByID(ctx context.Context, ownerID, id uint) (*AuditLog, error)
}

type service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, log: log}
}

// LogAction creates a new audit log entry. Storage failures are logged and
// returned, callers are free to ignore them.
func (s *service) LogAction(ctx context.Context, userID *uint, invitationID *string, action string, details map[string]interface{}, ip string, status string) error {
	if details == nil {
		details = make(map[string]interface{})
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := &AuditLog{
		UserID:       userID,
		InvitationID: invitationID,
		Action:       action,
		Details:      detailsJSON,
		IPAddress:    ip,
		Status:       status,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

// GetAuditLogs retrieves paginated audit logs with filters
func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &PaginatedAuditLogs{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// GetAuditLogByID retrieves a specific audit log by ID
func (s *service) GetAuditLogByID(ctx context.Context, ownerID, id uint) (*AuditLog, error) {
	log, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("audit log not found: %w", err)
	}
	return log, nil
}

// Nop discards every entry. Useful where auditing is not wired, e.g. tests.
type Nop struct{}

func (Nop) LogAction(context.Context, *uint, *string, string, map[string]interface{}, string, string) error {
	return nil
}

func (Nop) GetAuditLogs(context.Context, AuditLogFilter) (*PaginatedAuditLogs, error) {
	return &PaginatedAuditLogs{}, nil
}

func (Nop) GetAuditLogByID(context.Context, uint, uint) (*AuditLog, error) {
	return nil, fmt.Errorf("audit log not found")
}
