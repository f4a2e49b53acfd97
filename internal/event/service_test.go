package event

import (
	"strings"
	"testing"
	"time"
)

var buildNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func validCreateRequest() *CreateEventRequest {
	return &CreateEventRequest{
		Name:            "team offsite",
		MinParticipants: 2,
		RequiredSlots:   2,
		DateMode:        DateModeConsecutive,
	}
}

func TestBuildEventDefaults(t *testing.T) {
	e, err := BuildEvent(validCreateRequest(), 7, buildNow)
	if err != nil {
		t.Fatalf("BuildEvent failed: %v", err)
	}

	if e.CreatorID != 7 {
		t.Errorf("CreatorID = %d, want 7", e.CreatorID)
	}
	if e.Status != StatusOpen {
		t.Errorf("Status = %q, want %q", e.Status, StatusOpen)
	}
	if e.TimeSlotRestriction != RestrictionBoth {
		t.Errorf("TimeSlotRestriction = %q, want %q", e.TimeSlotRestriction, RestrictionBoth)
	}
	if e.MinimumConsecutive != 1 {
		t.Errorf("MinimumConsecutive = %d, want 1", e.MinimumConsecutive)
	}
	if e.ConfirmationMode != ConfirmationCreatorOnly {
		t.Errorf("ConfirmationMode = %q, want %q", e.ConfirmationMode, ConfirmationCreatorOnly)
	}
	if e.ConfirmationTimeoutHours != 24 {
		t.Errorf("ConfirmationTimeoutHours = %d, want 24", e.ConfirmationTimeoutHours)
	}
	if e.Policy.MaxSuggestions != 3 {
		t.Errorf("MaxSuggestions = %d, want 3", e.Policy.MaxSuggestions)
	}
}

func TestBuildEventValidation(t *testing.T) {
	three := 3
	one := 1

	tests := []struct {
		name    string
		mutate  func(*CreateEventRequest)
		wantErr string
	}{
		{
			"zero min participants",
			func(r *CreateEventRequest) { r.MinParticipants = 0 },
			"min_participants",
		},
		{
			"max below min",
			func(r *CreateEventRequest) { r.MinParticipants = 3; r.MaxParticipants = &one },
			"max_participants",
		},
		{
			"max equal to min is allowed",
			func(r *CreateEventRequest) { r.MinParticipants = 3; r.MaxParticipants = &three },
			"",
		},
		{
			"zero required slots",
			func(r *CreateEventRequest) { r.RequiredSlots = 0 },
			"required_slots",
		},
		{
			"unknown date mode",
			func(r *CreateEventRequest) { r.DateMode = "weekly" },
			"date_mode",
		},
		{
			"unknown restriction",
			func(r *CreateEventRequest) { r.TimeSlotRestriction = "mornings" },
			"time_slot_restriction",
		},
		{
			"deadline not RFC3339",
			func(r *CreateEventRequest) { r.Deadline = "2026-09-15" },
			"RFC3339",
		},
		{
			"deadline in the past",
			func(r *CreateEventRequest) { r.Deadline = "2026-08-01T00:00:00Z" },
			"future",
		},
		{
			"within_period without bounds",
			func(r *CreateEventRequest) { r.DateMode = DateModeWithinPeriod },
			"period_start",
		},
		{
			"period reversed",
			func(r *CreateEventRequest) {
				r.DateMode = DateModeWithinPeriod
				r.PeriodStart = "2026-10-10"
				r.PeriodEnd = "2026-10-01"
			},
			"before",
		},
		{
			"minimum slots above required",
			func(r *CreateEventRequest) { r.MinimumTimeSlots = 5 },
			"minimum_time_slots",
		},
		{
			"negative grace period",
			func(r *CreateEventRequest) { r.GracePeriodHours = -1 },
			"grace_period_hours",
		},
		{
			"unknown confirmation mode",
			func(r *CreateEventRequest) { r.ConfirmationMode = "quorum" },
			"confirmation_mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			_, err := BuildEvent(req, 1, buildNow)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("BuildEvent failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfirmationThresholdMet(t *testing.T) {
	participants := []Participant{{UserID: 1}, {UserID: 2}, {UserID: 3}, {UserID: 4}}

	tests := []struct {
		name             string
		mode             string
		requireCreator   bool
		minConfirmations int
		confirmations    int
		creatorConfirmed bool
		want             bool
	}{
		{"creator only, creator confirmed", ConfirmationCreatorOnly, false, 1, 1, true, true},
		{"creator only, others confirmed", ConfirmationCreatorOnly, false, 1, 3, false, false},
		{"all confirmed", ConfirmationAll, false, 1, 4, false, true},
		{"all but one", ConfirmationAll, false, 1, 3, false, false},
		{"majority of four is three", ConfirmationMajority, false, 1, 3, false, true},
		{"two of four is not majority", ConfirmationMajority, false, 1, 2, false, false},
		{"minimum count met", ConfirmationMinimumCount, false, 2, 2, false, true},
		{"minimum count not met", ConfirmationMinimumCount, false, 3, 2, false, false},
		{"creator gate blocks majority", ConfirmationMajority, true, 1, 3, false, false},
		{"creator gate passes with creator", ConfirmationMajority, true, 1, 3, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Event{
				Participants:               participants,
				ConfirmationMode:           tt.mode,
				RequireCreatorConfirmation: tt.requireCreator,
				MinimumConfirmations:       tt.minConfirmations,
			}
			if got := ConfirmationThresholdMet(e, tt.confirmations, tt.creatorConfirmed); got != tt.want {
				t.Errorf("ConfirmationThresholdMet = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinimumSlotFloor(t *testing.T) {
	e := &Event{RequiredSlots: 4}
	if got := e.MinimumSlotFloor(); got != 4 {
		t.Errorf("floor without minimum = %d, want 4", got)
	}

	e.Policy.MinimumTimeSlots = 2
	if got := e.MinimumSlotFloor(); got != 2 {
		t.Errorf("floor with minimum = %d, want 2", got)
	}
}

func TestConfirmationDeadline(t *testing.T) {
	e := &Event{ConfirmationTimeoutHours: 24, GracePeriodHours: 6}
	if e.ConfirmationDeadline() != nil {
		t.Error("deadline without a match must be nil")
	}

	matched := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	e.MatchedAt = &matched

	got := e.ConfirmationDeadline()
	if got == nil {
		t.Fatal("expected a deadline once matched")
	}
	want := matched.Add(30 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("deadline = %v, want %v", got, want)
	}
}
