package availability

import (
	"context"
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")

type Service struct {
	Repo *Repository
}

func NewService(r *Repository) *Service {
	return &Service{Repo: r}
}

// ===========================
// Set Availability (bulk per-date upsert, overwrites existing rows)
func (s *Service) SetAvailability(ctx context.Context, userID uint, req *SetAvailabilityRequest) error {
	rows, err := buildRows(userID, req)
	if err != nil {
		return err
	}
	return s.Repo.Upsert(ctx, rows)
}

// buildRows validates and converts the request into persistable rows.
func buildRows(userID uint, req *SetAvailabilityRequest) ([]Availability, error) {
	rows := make([]Availability, 0, len(req.Days))
	for _, day := range req.Days {
		date, err := time.Parse(dateLayout, day.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		rows = append(rows, Availability{
			UserID:  userID,
			Date:    date,
			Daytime: day.Daytime,
			Evening: day.Evening,
		})
	}
	return rows, nil
}

// ===========================
// Get Availability for a user, optionally bounded
func (s *Service) GetAvailability(ctx context.Context, userID uint, fromStr, toStr string) ([]Availability, error) {
	from := time.Now().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 56)

	if fromStr != "" {
		parsed, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return nil, ErrInvalidDate
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return nil, ErrInvalidDate
		}
		to = parsed
	}

	return s.Repo.GetByUserAndRange(ctx, userID, from, to)
}
