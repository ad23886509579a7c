package reports

import (
	"context"
	"errors"
	"time"

	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/ledger"
	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
	"go.uber.org/zap"
)

var ErrInvalidFormat = errors.New("format must be csv, excel or pdf")

type InvitationOwner interface {
	GetOwned(ctx context.Context, userID uint, id string) (*invitation.Invitation, error)
}

type QuestionReader interface {
	Questions(ctx context.Context, invitationID string) ([]survey.Question, error)
}

type Service interface {
	// Export renders the responses of an owned invitation and returns the
	// file bytes, its name and its content type
	Export(ctx context.Context, userID uint, req ExportRequest, ip string) ([]byte, string, string, error)
}

type service struct {
	repo        Repository
	invitations InvitationOwner
	questions   QuestionReader
	exporter    ReportExporter
	auditSvc    auditlog.Service
	log         *zap.Logger
	now         func() time.Time
}

func NewService(repo Repository, invitations InvitationOwner, questions QuestionReader, exporter ReportExporter, auditSvc auditlog.Service, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewReportExporter()
	}
	return &service{
		repo:        repo,
		invitations: invitations,
		questions:   questions,
		exporter:    exporter,
		auditSvc:    auditSvc,
		log:         log,
		now:         time.Now,
	}
}

func validFormat(f string) bool {
	return f == FormatCSV || f == FormatExcel || f == FormatPDF
}

func (s *service) Export(ctx context.Context, userID uint, req ExportRequest, ip string) ([]byte, string, string, error) {
	invID := req.InvitationID
	fail := func(err error) ([]byte, string, string, error) {
		s.auditSvc.LogAction(ctx, &userID, &invID, auditlog.ActionResponsesExported, map[string]interface{}{
			"format": req.Format,
			"error":  err.Error(),
		}, ip, auditlog.StatusFailure)
		return nil, "", "", err
	}

	if req.Format == "" {
		req.Format = FormatCSV
	}
	if !validFormat(req.Format) {
		return fail(ErrInvalidFormat)
	}

	inv, err := s.invitations.GetOwned(ctx, userID, invID)
	if err != nil {
		return fail(err)
	}

	start, end, err := GetDateRange(req.DateRange, req.StartDate, req.EndDate, s.now())
	if err != nil {
		return fail(err)
	}

	report, err := s.buildReport(ctx, inv, start, end)
	if err != nil {
		s.log.Error("build response report", zap.String("invitation_id", invID), zap.Error(err))
		return fail(err)
	}

	data, filename, contentType, err := s.exporter.Export(req.Format, report)
	if err != nil {
		s.log.Error("render response report", zap.String("invitation_id", invID), zap.String("format", req.Format), zap.Error(err))
		return fail(err)
	}

	s.auditSvc.LogAction(ctx, &userID, &invID, auditlog.ActionResponsesExported, map[string]interface{}{
		"format":     req.Format,
		"date_range": req.DateRange,
		"rows":       len(report.Rows),
	}, ip, auditlog.StatusSuccess)

	return data, filename, contentType, nil
}

func (s *service) buildReport(ctx context.Context, inv *invitation.Invitation, start, end *time.Time) (*ResponseReport, error) {
	questions, err := s.questions.Questions(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	views := survey.Project(questions)

	responses, err := s.repo.ListResponses(ctx, inv.ID, start, end)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(responses))
	for i, r := range responses {
		ids[i] = r.ID
	}
	choices, err := s.repo.ListAnswerChoices(ctx, ids)
	if err != nil {
		return nil, err
	}

	column := make(map[uint]int, len(views))
	report := &ResponseReport{
		InvitationID: inv.ID,
		Title:        inv.Title,
		Questions:    make([]string, len(views)),
		Totals:       ledger.Summarize(responses),
		GeneratedAt:  s.now(),
	}
	for i, q := range views {
		column[q.ID] = i
		report.Questions[i] = q.Text
	}

	picked := make(map[string][]string, len(responses))
	for _, ac := range choices {
		col, ok := column[ac.QuestionID]
		if !ok {
			continue
		}
		row := picked[ac.ResponseID]
		if row == nil {
			row = make([]string, len(views))
			picked[ac.ResponseID] = row
		}
		row[col] = ac.ChoiceText
	}

	report.Rows = make([]ResponseRow, 0, len(responses))
	for _, r := range responses {
		status := inv.RejectLabel
		if r.Accept {
			status = inv.AcceptLabel
		}
		answers := picked[r.ID]
		if answers == nil {
			answers = make([]string, len(views))
		}
		report.Rows = append(report.Rows, ResponseRow{
			Name:        r.Name,
			Status:      status,
			Attendees:   r.NumAttendees,
			SubmittedAt: r.CreatedAt,
			Answers:     answers,
		})
	}
	return report, nil
}
