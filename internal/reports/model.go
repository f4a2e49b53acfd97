package reports

import "time"

const (
	ReportTypeEvents       = "events"
	ReportTypeParticipants = "participants"

	FormatCSV   = "csv"
	FormatExcel = "excel"
)

// EventReportRow is one event flattened for export.
type EventReportRow struct {
	ID               uint
	Name             string
	CreatorID        uint
	Status           string
	DateMode         string
	RequiredSlots    int
	ParticipantCount int
	MatchedSlots     string
	Deadline         *time.Time
	MatchedAt        *time.Time
	CreatedAt        time.Time
}

// ParticipantReportRow is one event membership flattened for export.
type ParticipantReportRow struct {
	EventID   uint
	EventName string
	Status    string
	UserID    uint
	Priority  string
	JoinedAt  time.Time
}

// ReportData bundles the rows an export run may need.
type ReportData struct {
	Events       []EventReportRow
	Participants []ParticipantReportRow
}
