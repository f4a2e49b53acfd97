package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportExporter renders report rows into a downloadable document.
type ReportExporter interface {
	Export(reportType, format string, data ReportData) ([]byte, string, string, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

// Export returns payload, filename and content type for the requested report.
func (e *reportExporter) Export(reportType, format string, data ReportData) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch reportType {
	case ReportTypeEvents:
		return e.exportEventsByFormat(format, timestamp, data.Events)
	case ReportTypeParticipants:
		return e.exportParticipantsByFormat(format, timestamp, data.Participants)
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}
}

// ===========================
// Events report

func (e *reportExporter) exportEventsByFormat(format, timestamp string, rows []EventReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportEventsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("events_report_%s.xlsx", timestamp), excelContentType, nil

	case FormatCSV:
		data, err := e.exportEventsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("events_report_%s.csv", timestamp), "text/csv", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for events: %s", format)
	}
}

func (e *reportExporter) exportEventsCSV(rows []EventReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Creator ID", "Status", "Date Mode", "Required Slots", "Participants", "Matched Slots", "Deadline", "Matched At", "Created At"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Name,
			strconv.FormatUint(uint64(r.CreatorID), 10),
			r.Status,
			r.DateMode,
			strconv.Itoa(r.RequiredSlots),
			strconv.Itoa(r.ParticipantCount),
			r.MatchedSlots,
			formatOptionalTime(r.Deadline),
			formatOptionalTime(r.MatchedAt),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportEventsExcel(rows []EventReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Events"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Creator ID", "Status", "Date Mode", "Required Slots", "Participants", "Matched Slots", "Deadline", "Matched At", "Created At"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range rows {
		row := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.CreatorID)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.DateMode)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.RequiredSlots)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.ParticipantCount)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.MatchedSlots)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), formatOptionalTime(r.Deadline))
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), formatOptionalTime(r.MatchedAt))
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ===========================
// Participants report

func (e *reportExporter) exportParticipantsByFormat(format, timestamp string, rows []ParticipantReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportParticipantsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("participants_report_%s.xlsx", timestamp), excelContentType, nil

	case FormatCSV:
		data, err := e.exportParticipantsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("participants_report_%s.csv", timestamp), "text/csv", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for participants: %s", format)
	}
}

func (e *reportExporter) exportParticipantsCSV(rows []ParticipantReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Event ID", "Event Name", "Event Status", "User ID", "Priority", "Joined At"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.EventID), 10),
			r.EventName,
			r.Status,
			strconv.FormatUint(uint64(r.UserID), 10),
			r.Priority,
			r.JoinedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportParticipantsExcel(rows []ParticipantReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Participants"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Event ID", "Event Name", "Event Status", "User ID", "Priority", "Joined At"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range rows {
		row := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.EventID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.EventName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.UserID)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Priority)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.JoinedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
