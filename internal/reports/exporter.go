package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	contentTypeCSV   = "text/csv"
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF   = "application/pdf"

	submittedLayout = "2006-01-02 15:04"
)

// ReportExporter renders a response report in one of the supported formats
type ReportExporter interface {
	Export(format string, report *ResponseReport) ([]byte, string, string, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

func (e *reportExporter) Export(format string, report *ResponseReport) ([]byte, string, string, error) {
	switch format {
	case FormatCSV:
		data, err := e.exportCSV(report)
		return data, filename(report, "csv"), contentTypeCSV, err
	case FormatExcel:
		data, err := e.exportExcel(report)
		return data, filename(report, "xlsx"), contentTypeExcel, err
	case FormatPDF:
		data, err := e.exportPDF(report)
		return data, filename(report, "pdf"), contentTypePDF, err
	default:
		return nil, "", "", ErrInvalidFormat
	}
}

func filename(report *ResponseReport, ext string) string {
	return fmt.Sprintf("responses_%s_%s.%s", report.InvitationID, report.GeneratedAt.Format("20060102_150405"), ext)
}

func headers(report *ResponseReport) []string {
	return append([]string{"Name", "Status", "Attendees", "Submitted At"}, report.Questions...)
}

func record(row ResponseRow) []string {
	return append([]string{
		row.Name,
		row.Status,
		strconv.Itoa(row.Attendees),
		row.SubmittedAt.UTC().Format(submittedLayout),
	}, row.Answers...)
}

func totalsLines(report *ResponseReport) [][2]string {
	return [][2]string{
		{"Total Responses", strconv.Itoa(report.Totals.TotalResponses)},
		{"Total Accepted", strconv.Itoa(report.Totals.TotalAccepted)},
		{"Total Attendees", strconv.Itoa(report.Totals.TotalAttendees)},
	}
}

// ===========================
// 📄 CSV
func (e *reportExporter) exportCSV(report *ResponseReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers(report)); err != nil {
		return nil, err
	}
	for _, row := range report.Rows {
		if err := w.Write(record(row)); err != nil {
			return nil, err
		}
	}

	// a lone empty field would be written as a blank line, which readers skip
	if err := w.Write([]string{"", ""}); err != nil {
		return nil, err
	}
	for _, t := range totalsLines(report) {
		if err := w.Write(t[:]); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// ===========================
// 📊 Excel
func (e *reportExporter) exportExcel(report *ResponseReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Responses"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	setRow := func(rowNum int, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	hdr := headers(report)
	hdrValues := make([]interface{}, len(hdr))
	for i, h := range hdr {
		hdrValues[i] = h
	}
	if err := setRow(1, hdrValues); err != nil {
		return nil, err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(hdr), 1)
		f.SetCellStyle(sheet, "A1", last, style)
	}

	rowNum := 2
	for _, row := range report.Rows {
		values := []interface{}{row.Name, row.Status, row.Attendees, row.SubmittedAt.UTC().Format(submittedLayout)}
		for _, a := range row.Answers {
			values = append(values, a)
		}
		if err := setRow(rowNum, values); err != nil {
			return nil, err
		}
		rowNum++
	}

	rowNum++
	for _, t := range totalsLines(report) {
		if err := setRow(rowNum, []interface{}{t[0], t[1]}); err != nil {
			return nil, err
		}
		rowNum++
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "D", "D", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ===========================
// 🧾 PDF
func (e *reportExporter) exportPDF(report *ResponseReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(report.Title+" - Responses"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, "Generated "+report.GeneratedAt.UTC().Format(time.RFC1123))
	pdf.Ln(10)

	hdr := headers(report)
	widths := columnWidths(len(report.Questions))

	pdf.SetFont("Arial", "B", 9)
	for i, h := range hdr {
		pdf.CellFormat(widths[i], 7, fitText(pdf, tr(h), widths[i]), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range report.Rows {
		for i, v := range record(row) {
			pdf.CellFormat(widths[i], 6, fitText(pdf, tr(v), widths[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	for _, t := range totalsLines(report) {
		pdf.CellFormat(45, 6, t[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, t[1], "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// columnWidths spreads the survey columns over the page width left after the
// fixed columns, with a floor so narrow columns stay readable.
func columnWidths(questions int) []float64 {
	widths := []float64{60, 30, 22, 35}
	if questions == 0 {
		return widths
	}
	const usable = 277.0
	each := (usable - 147) / float64(questions)
	if each < 20 {
		each = 20
	}
	for i := 0; i < questions; i++ {
		widths = append(widths, each)
	}
	return widths
}

func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	return s + "..."
}
