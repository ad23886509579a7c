package survey

import (
	"context"
	"errors"
	"strings"

	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"go.uber.org/zap"
)

var (
	ErrSurveyLocked  = errors.New("survey cannot be changed once guests have answered it")
	ErrInvalidSurvey = errors.New("each question needs text and at least one non-empty choice")
)

// InvitationReader resolves invitations and their ownership
type InvitationReader interface {
	GetOwned(ctx context.Context, userID uint, id string) (*invitation.Invitation, error)
}

type Service interface {
	Questions(ctx context.Context, invitationID string) ([]Question, error)
	OwnedQuestions(ctx context.Context, userID uint, invitationID string) ([]Question, error)
	Replace(ctx context.Context, userID uint, invitationID string, input []QuestionInput, ip string) ([]Question, error)
}

type service struct {
	repo        Repository
	invitations InvitationReader
	auditSvc    auditlog.Service
	log         *zap.Logger
}

func NewService(repo Repository, invitations InvitationReader, auditSvc auditlog.Service, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, invitations: invitations, auditSvc: auditSvc, log: log}
}

func (s *service) Questions(ctx context.Context, invitationID string) ([]Question, error) {
	return s.repo.ListQuestions(ctx, invitationID)
}

func (s *service) OwnedQuestions(ctx context.Context, userID uint, invitationID string) ([]Question, error) {
	if _, err := s.invitations.GetOwned(ctx, userID, invitationID); err != nil {
		return nil, err
	}
	return s.repo.ListQuestions(ctx, invitationID)
}

// Replace swaps the whole question set. Positions follow input order.
func (s *service) Replace(ctx context.Context, userID uint, invitationID string, input []QuestionInput, ip string) ([]Question, error) {
	failure := func(err error) error {
		s.auditSvc.LogAction(ctx, &userID, &invitationID, auditlog.ActionSurveyReplaced, map[string]interface{}{
			"error": err.Error(),
		}, ip, auditlog.StatusFailure)
		return err
	}

	if _, err := s.invitations.GetOwned(ctx, userID, invitationID); err != nil {
		return nil, failure(err)
	}

	questions, err := buildQuestions(input)
	if err != nil {
		return nil, failure(err)
	}

	answered, err := s.repo.CountAnswers(ctx, invitationID)
	if err != nil {
		return nil, failure(err)
	}
	if answered > 0 {
		return nil, failure(ErrSurveyLocked)
	}

	if err := s.repo.ReplaceQuestions(ctx, invitationID, questions); err != nil {
		return nil, failure(err)
	}

	s.auditSvc.LogAction(ctx, &userID, &invitationID, auditlog.ActionSurveyReplaced, map[string]interface{}{
		"questions": len(questions),
	}, ip, auditlog.StatusSuccess)
	s.log.Info("survey replaced", zap.String("invitation_id", invitationID), zap.Int("questions", len(questions)))
	return questions, nil
}

func buildQuestions(input []QuestionInput) ([]Question, error) {
	questions := make([]Question, 0, len(input))
	for i, in := range input {
		text := strings.TrimSpace(in.Text)
		if text == "" || len(in.Choices) == 0 {
			return nil, ErrInvalidSurvey
		}
		q := Question{Text: text, Position: i}
		for j, c := range in.Choices {
			c = strings.TrimSpace(c)
			if c == "" {
				return nil, ErrInvalidSurvey
			}
			q.Choices = append(q.Choices, Choice{Text: c, Position: j})
		}
		questions = append(questions, q)
	}
	return questions, nil
}
