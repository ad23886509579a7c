package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/sharath018/invitation-rsvp-backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *ResponseReport {
	at := time.Date(2025, 5, 2, 18, 45, 0, 0, time.UTC)
	return &ResponseReport{
		InvitationID: "garden-party",
		Title:        "Garden Party",
		Questions:    []string{"Main course?", "Dessert?"},
		Rows: []ResponseRow{
			{Name: "Ana", Status: "Accept", Attendees: 3, SubmittedAt: at, Answers: []string{"Fish", "Cake"}},
			{Name: "Bo", Status: "Decline", Attendees: 0, SubmittedAt: at.Add(time.Hour), Answers: []string{"", ""}},
		},
		Totals:      ledger.Aggregates{TotalResponses: 2, TotalAccepted: 1, TotalAttendees: 3},
		GeneratedAt: time.Date(2025, 5, 3, 9, 0, 0, 0, time.UTC),
	}
}

func TestExportCSV(t *testing.T) {
	data, name, mime, err := NewReportExporter().Export(FormatCSV, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "responses_garden-party_20250503_090000.csv", name)
	assert.Equal(t, "text/csv", mime)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(records), 6)
	assert.Equal(t, []string{"Name", "Status", "Attendees", "Submitted At", "Main course?", "Dessert?"}, records[0])
	assert.Equal(t, []string{"Ana", "Accept", "3", "2025-05-02 18:45", "Fish", "Cake"}, records[1])
	assert.Equal(t, []string{"Bo", "Decline", "0", "2025-05-02 19:45", "", ""}, records[2])
	assert.Equal(t, []string{"Total Attendees", "3"}, records[len(records)-1])
}

func TestExportExcel(t *testing.T) {
	data, name, mime, err := NewReportExporter().Export(FormatExcel, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "responses_garden-party_20250503_090000.xlsx", name)
	assert.Equal(t, contentTypeExcel, mime)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Responses")
	require.NoError(t, err)
	assert.Equal(t, "Dessert?", rows[0][5])
	assert.Equal(t, []string{"Ana", "Accept", "3", "2025-05-02 18:45", "Fish", "Cake"}, rows[1])

	v, err := f.GetCellValue("Responses", "B7")
	require.NoError(t, err)
	assert.Equal(t, "3", v, "total attendees sits in the last totals line")
}

func TestExportPDF(t *testing.T) {
	data, name, mime, err := NewReportExporter().Export(FormatPDF, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "responses_garden-party_20250503_090000.pdf", name)
	assert.Equal(t, "application/pdf", mime)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExportUnknownFormat(t *testing.T) {
	_, _, _, err := NewReportExporter().Export("docx", sampleReport())
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestColumnWidthsFloor(t *testing.T) {
	assert.Len(t, columnWidths(0), 4)
	w := columnWidths(20)
	assert.Len(t, w, 24)
	assert.Equal(t, 20.0, w[23])
}
