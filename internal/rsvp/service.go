package rsvp

import (
	"context"
	"errors"
	"strings"

	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
	"go.uber.org/zap"
)

type InvitationReader interface {
	Get(ctx context.Context, id string) (*invitation.Invitation, error)
	GetOwned(ctx context.Context, userID uint, id string) (*invitation.Invitation, error)
}

type QuestionReader interface {
	Questions(ctx context.Context, invitationID string) ([]survey.Question, error)
}

type Service interface {
	PublicView(ctx context.Context, invitationID string) (*PublicInvitation, error)
	Submit(ctx context.Context, invitationID string, sub Submission, ip string) (*Result, error)
	UpdateResponse(ctx context.Context, userID uint, invitationID, responseID string, patch ResponsePatch, ip string) (*Response, error)
	DeleteResponse(ctx context.Context, userID uint, invitationID, responseID string, ip string) error
}

type service struct {
	store       *Store
	answers     AnswerWriter
	invitations InvitationReader
	questions   QuestionReader
	auditSvc    auditlog.Service
	log         *zap.Logger
	flowOpts    []FlowOption
}

// NewService wires the submission flow. flowOpts are applied to every flow,
// after the service's own logger.
func NewService(store *Store, answers AnswerWriter, invitations InvitationReader, questions QuestionReader, auditSvc auditlog.Service, log *zap.Logger, flowOpts ...FlowOption) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		store:       store,
		answers:     answers,
		invitations: invitations,
		questions:   questions,
		auditSvc:    auditSvc,
		log:         log,
		flowOpts:    append([]FlowOption{WithLogger(log)}, flowOpts...),
	}
}

// ===========================
// 👀 Public View
func (s *service) PublicView(ctx context.Context, invitationID string) (*PublicInvitation, error) {
	inv, err := s.invitations.Get(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.Questions(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	flow := NewFlow(inv, questions, nil, nil, s.flowOpts...)
	return &PublicInvitation{
		ID:          inv.ID,
		Title:       inv.Title,
		Address:     inv.Address,
		Latitude:    inv.Latitude,
		Longitude:   inv.Longitude,
		ActivityAt:  inv.ActivityAt,
		CloseAt:     inv.CloseAt,
		Closed:      flow.Closed(),
		AcceptLabel: inv.AcceptLabel,
		RejectLabel: inv.RejectLabel,
		Style:       string(inv.Style),
		FontFamily:  inv.FontFamily,
		Italic:      inv.Italic,
		Secondary:   inv.SecondaryColor,
		Background:  inv.ResolveBackground(),
		Primary:     inv.ResolvePrimary(),
		Questions:   flow.Questions(),
	}, nil
}

// ===========================
// 📝 Submit RSVP
func (s *service) Submit(ctx context.Context, invitationID string, sub Submission, ip string) (*Result, error) {
	inv, err := s.invitations.Get(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.Questions(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	flow := NewFlow(inv, questions, s.store, s.answers, s.flowOpts...)
	result, err := flow.Submit(ctx, sub)
	if err != nil {
		s.auditSvc.LogAction(ctx, nil, &invitationID, auditlog.ActionResponseSubmitted, map[string]interface{}{
			"name":  strings.TrimSpace(sub.Name),
			"error": err.Error(),
		}, ip, auditlog.StatusFailure)
		return nil, err
	}

	s.auditSvc.LogAction(ctx, nil, &invitationID, auditlog.ActionResponseSubmitted, map[string]interface{}{
		"response_id":   result.Response.ID,
		"name":          result.Response.Name,
		"accept":        result.Response.Accept,
		"num_attendees": result.Response.NumAttendees,
		"answers_saved": result.AnswersSaved,
	}, ip, auditlog.StatusSuccess)
	return result, nil
}

// ===========================
// ✏️ Organizer Corrections
func (s *service) UpdateResponse(ctx context.Context, userID uint, invitationID, responseID string, patch ResponsePatch, ip string) (*Response, error) {
	resp, err := s.ownedResponse(ctx, userID, invitationID, responseID)
	if err != nil {
		return nil, s.fail(ctx, userID, invitationID, auditlog.ActionResponseUpdated, err, ip)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, s.fail(ctx, userID, invitationID, auditlog.ActionResponseUpdated,
				&ValidationError{Field: "name", Reason: "name is required"}, ip)
		}
		resp.Name = name
	}
	if patch.NumAttendees != nil && *patch.NumAttendees < 0 {
		return nil, s.fail(ctx, userID, invitationID, auditlog.ActionResponseUpdated,
			&ValidationError{Field: "num_attendees", Reason: "must not be negative"}, ip)
	}
	if patch.Accept != nil {
		resp.Accept = *patch.Accept
	}
	n := resp.NumAttendees
	if patch.NumAttendees != nil {
		n = *patch.NumAttendees
	}
	resp.NumAttendees = AttendeePolicy(resp.Accept, &n)

	if err := s.store.UpdateResponse(ctx, resp); err != nil {
		return nil, s.fail(ctx, userID, invitationID, auditlog.ActionResponseUpdated, err, ip)
	}

	s.auditSvc.LogAction(ctx, &userID, &invitationID, auditlog.ActionResponseUpdated, map[string]interface{}{
		"response_id":   resp.ID,
		"accept":        resp.Accept,
		"num_attendees": resp.NumAttendees,
	}, ip, auditlog.StatusSuccess)
	return resp, nil
}

func (s *service) DeleteResponse(ctx context.Context, userID uint, invitationID, responseID string, ip string) error {
	if _, err := s.ownedResponse(ctx, userID, invitationID, responseID); err != nil {
		return s.fail(ctx, userID, invitationID, auditlog.ActionResponseDeleted, err, ip)
	}
	if err := s.store.DeleteResponse(ctx, invitationID, responseID); err != nil {
		return s.fail(ctx, userID, invitationID, auditlog.ActionResponseDeleted, err, ip)
	}
	s.auditSvc.LogAction(ctx, &userID, &invitationID, auditlog.ActionResponseDeleted, map[string]interface{}{
		"response_id": responseID,
	}, ip, auditlog.StatusSuccess)
	return nil
}

func (s *service) ownedResponse(ctx context.Context, userID uint, invitationID, responseID string) (*Response, error) {
	if _, err := s.invitations.GetOwned(ctx, userID, invitationID); err != nil {
		return nil, err
	}
	return s.store.GetResponse(ctx, invitationID, responseID)
}

func (s *service) fail(ctx context.Context, userID uint, invitationID, action string, err error, ip string) error {
	if !errors.Is(err, context.Canceled) {
		s.auditSvc.LogAction(ctx, &userID, &invitationID, action, map[string]interface{}{
			"error": err.Error(),
		}, ip, auditlog.StatusFailure)
	}
	return err
}
