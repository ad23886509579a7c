package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"github.com/sharath018/invitation-rsvp-backend/internal/auth"
	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/rsvp"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Mailer sends one message to a list of addresses
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type InvitationReader interface {
	Get(ctx context.Context, id string) (*invitation.Invitation, error)
}

type UserReader interface {
	GetUserByID(ctx context.Context, userID uint) (*auth.User, error)
}

type Service interface {
	// HandleChange emails the organizer about a new response, when the
	// invitation asks for it. Other events are ignored.
	HandleChange(ctx context.Context, ev changefeed.Event) error
	GetNotificationsByUser(ctx context.Context, userID uint, page, limit int) (*PaginatedNotifications, error)
}

type service struct {
	repo        Repository
	invitations InvitationReader
	users       UserReader
	mailer      Mailer
	auditSvc    auditlog.Service
	dashboard   string
	log         *zap.Logger
}

// NewService builds the notifier; dashboardURL prefixes the links in emails.
func NewService(repo Repository, invitations InvitationReader, users UserReader, mailer Mailer, auditSvc auditlog.Service, dashboardURL string, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		repo:        repo,
		invitations: invitations,
		users:       users,
		mailer:      mailer,
		auditSvc:    auditSvc,
		dashboard:   strings.TrimRight(dashboardURL, "/"),
		log:         log,
	}
}

func (s *service) HandleChange(ctx context.Context, ev changefeed.Event) error {
	if ev.Collection != changefeed.CollectionResponses || ev.Op != changefeed.OpInsert {
		return nil
	}

	var resp rsvp.Response
	if err := ev.Decode(&resp); err != nil {
		return fmt.Errorf("decode response %s: %w", ev.ID, err)
	}

	// the topic is consumed at least once
	if done, err := s.repo.HasNotified(ctx, resp.ID); err != nil {
		return err
	} else if done {
		return nil
	}

	inv, err := s.invitations.Get(ctx, resp.InvitationID)
	if err != nil {
		return fmt.Errorf("load invitation %s: %w", resp.InvitationID, err)
	}
	if !inv.NotifyOnResponse {
		return nil
	}

	owner, err := s.users.GetUserByID(ctx, inv.UserID)
	if err != nil {
		return fmt.Errorf("load organizer %d: %w", inv.UserID, err)
	}

	subject, body := s.compose(inv, &resp)
	recipients, _ := json.Marshal([]string{owner.Email})
	log := &NotificationLog{
		UserID:       owner.ID,
		InvitationID: inv.ID,
		ResponseID:   resp.ID,
		Channel:      ChannelEmail,
		Subject:      subject,
		Body:         body,
		Recipients:   datatypes.JSON(recipients),
		Status:       StatusPending,
	}
	if err := s.repo.CreateNotificationLog(ctx, log); err != nil {
		return err
	}

	sendErr := s.mailer.Send(ctx, []string{owner.Email}, subject, body)
	status := auditlog.StatusSuccess
	if sendErr != nil {
		msg := sendErr.Error()
		log.Status = StatusFailed
		log.Error = &msg
		status = auditlog.StatusFailure
		s.log.Warn("response notification failed", zap.String("invitation_id", inv.ID), zap.String("response_id", resp.ID), zap.Error(sendErr))
	} else {
		log.Status = StatusSent
	}

	updateErr := s.repo.UpdateNotificationLog(ctx, log)

	s.auditSvc.LogAction(ctx, &owner.ID, &inv.ID, auditlog.ActionNotificationSent, map[string]interface{}{
		"channel":     ChannelEmail,
		"response_id": resp.ID,
	}, "", status)

	if sendErr != nil {
		return sendErr
	}
	return updateErr
}

func (s *service) compose(inv *invitation.Invitation, resp *rsvp.Response) (string, string) {
	verb := "declined"
	if resp.Accept {
		verb = "accepted"
	}
	subject := fmt.Sprintf("%s %s your invitation to %s", resp.Name, verb, inv.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "%s has %s your invitation to %s.", resp.Name, verb, inv.Title)
	if resp.Accept {
		fmt.Fprintf(&b, "\n\nParty size: %d", resp.NumAttendees)
	}
	if s.dashboard != "" {
		fmt.Fprintf(&b, "\n\nSee all responses: %s/invitations/%s/responses", s.dashboard, inv.ID)
	}
	return subject, b.String()
}

func (s *service) GetNotificationsByUser(ctx context.Context, userID uint, page, limit int) (*PaginatedNotifications, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	logs, total, err := s.repo.GetNotificationsByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &PaginatedNotifications{Data: logs, Total: total, Page: page, Limit: limit}, nil
}
