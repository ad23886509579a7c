package reports

import (
	"time"

	"github.com/sharath018/invitation-rsvp-backend/internal/ledger"
)

const (
	// Date range presets
	DateRangeAll     = "all"
	DateRangeDaily   = "daily"
	DateRangeWeekly  = "weekly"
	DateRangeMonthly = "monthly"
	DateRangeYearly  = "yearly"
	DateRangeCustom  = "custom"

	// Report formats
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// ExportRequest selects the responses of one invitation to export
type ExportRequest struct {
	InvitationID string `json:"invitation_id"`
	Format       string `json:"format"`
	DateRange    string `json:"date_range"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// ResponseRow is one line of the export
type ResponseRow struct {
	Name        string
	Status      string
	Attendees   int
	SubmittedAt time.Time
	// Answers holds the picked choice per question, in question order.
	// Unanswered questions are empty strings.
	Answers []string
}

// ResponseReport is everything an exporter needs to render a file
type ResponseReport struct {
	InvitationID string
	Title        string
	Questions    []string
	Rows         []ResponseRow
	Totals       ledger.Aggregates
	GeneratedAt  time.Time
}

// AnswerChoice is a picked choice joined with its text
type AnswerChoice struct {
	ResponseID string
	QuestionID uint
	ChoiceText string
}
