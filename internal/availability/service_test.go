package availability

import (
	"errors"
	"testing"
	"time"
)

func TestBuildRows(t *testing.T) {
	req := &SetAvailabilityRequest{Days: []DayAvailability{
		{Date: "2026-09-10", Daytime: true, Evening: false},
		{Date: "2026-09-11", Daytime: false, Evening: true},
	}}

	rows, err := buildRows(42, req)
	if err != nil {
		t.Fatalf("buildRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	want := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	if rows[0].UserID != 42 || !rows[0].Date.Equal(want) || !rows[0].Daytime || rows[0].Evening {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Daytime || !rows[1].Evening {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestBuildRowsRejectsBadDate(t *testing.T) {
	tests := []string{"10-09-2026", "2026/09/10", "tomorrow", ""}
	for _, date := range tests {
		t.Run(date, func(t *testing.T) {
			req := &SetAvailabilityRequest{Days: []DayAvailability{{Date: date}}}
			if _, err := buildRows(1, req); !errors.Is(err, ErrInvalidDate) {
				t.Errorf("buildRows(%q) err = %v, want ErrInvalidDate", date, err)
			}
		})
	}
}

func TestBuildRowsEmpty(t *testing.T) {
	rows, err := buildRows(1, &SetAvailabilityRequest{})
	if err != nil {
		t.Fatalf("buildRows failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
