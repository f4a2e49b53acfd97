package reports

import (
	"context"
	"fmt"
)

type Service struct {
	Repo     *Repository
	Exporter ReportExporter
}

func NewService(repo *Repository, exporter ReportExporter) *Service {
	return &Service{Repo: repo, Exporter: exporter}
}

// GenerateReport loads the rows for reportType and renders them in the
// requested format. Returns payload, filename and content type.
func (s *Service) GenerateReport(ctx context.Context, reportType, format, status string) ([]byte, string, string, error) {
	var data ReportData

	switch reportType {
	case ReportTypeEvents:
		rows, err := s.Repo.GetEventRows(ctx, status)
		if err != nil {
			return nil, "", "", fmt.Errorf("load event rows: %w", err)
		}
		data.Events = rows

	case ReportTypeParticipants:
		rows, err := s.Repo.GetParticipantRows(ctx, status)
		if err != nil {
			return nil, "", "", fmt.Errorf("load participant rows: %w", err)
		}
		data.Participants = rows

	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}

	return s.Exporter.Export(reportType, format, data)
}
