package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	logs      []AuditLog
	lastQuery AuditLogFilter
	err       error
}

func (r *memRepo) Create(_ context.Context, log *AuditLog) error {
	if r.err != nil {
		return r.err
	}
	log.ID = uint(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memRepo) GetByFilter(_ context.Context, f AuditLogFilter) ([]AuditLog, int64, error) {
	r.lastQuery = f
	return r.logs, int64(len(r.logs)), nil
}

func (r *memRepo) GetByID(_ context.Context, _, id uint) (*AuditLog, error) {
	for i := range r.logs {
		if r.logs[i].ID == id {
			return &r.logs[i], nil
		}
	}
	return nil, errors.New("record not found")
}

func TestLogActionStoresDetails(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil)
	uid := uint(3)
	inv := "inv-1"

	err := svc.LogAction(context.Background(), &uid, &inv, ActionInvitationCreated,
		map[string]interface{}{"title": "Picnic"}, "10.0.0.1", StatusSuccess)
	require.NoError(t, err)
	require.Len(t, repo.logs, 1)

	var details map[string]string
	require.NoError(t, json.Unmarshal(repo.logs[0].Details, &details))
	assert.Equal(t, "Picnic", details["title"])
	assert.Equal(t, "inv-1", *repo.logs[0].InvitationID)
}

func TestLogActionNilDetails(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil)

	require.NoError(t, svc.LogAction(context.Background(), nil, nil, ActionResponseSubmitted, nil, "", StatusFailure))
	assert.JSONEq(t, `{}`, string(repo.logs[0].Details))
}

func TestGetAuditLogsDefaults(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil)
	for i := 0; i < 45; i++ {
		_ = svc.LogAction(context.Background(), nil, nil, ActionUserLogin, nil, "", StatusSuccess)
	}

	page, err := svc.GetAuditLogs(context.Background(), AuditLogFilter{OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastQuery.Page)
	assert.Equal(t, 20, repo.lastQuery.Limit)
	assert.Equal(t, 3, page.TotalPages)
}
