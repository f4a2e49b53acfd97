package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/taroc/schedule-service-sub002/utils"
)

func TestBuildNotificationsFansOutPerRecipient(t *testing.T) {
	msg := utils.TransitionMessage{
		Type:       TypeMatched,
		EventID:    7,
		EventName:  "study group",
		UserIDs:    []uint{1, 2, 3},
		Reason:     "matched 2 slots",
		OccurredAt: time.Now(),
	}

	rows := buildNotifications(msg)
	if len(rows) != 3 {
		t.Fatalf("got %d notifications, want 3", len(rows))
	}
	for i, n := range rows {
		if n.UserID != msg.UserIDs[i] {
			t.Errorf("row %d UserID = %d, want %d", i, n.UserID, msg.UserIDs[i])
		}
		if n.EventID == nil || *n.EventID != 7 {
			t.Errorf("row %d EventID = %v, want 7", i, n.EventID)
		}
		if n.Type != TypeMatched {
			t.Errorf("row %d Type = %q", i, n.Type)
		}
		if n.Message != msg.Reason {
			t.Errorf("row %d Message = %q, want the transition reason", i, n.Message)
		}
	}
}

func TestRenderTransitionTitles(t *testing.T) {
	tests := []struct {
		msgType string
		want    string
	}{
		{TypeMatched, "confirmed"},
		{TypeConfirmationRequired, "Confirmation"},
		{TypeDeadlineApproaching, "Deadline"},
		{TypeExpired, "expired"},
		{TypeRolledBack, "withdrawn"},
		{"something_else", "updated"},
	}

	for _, tt := range tests {
		t.Run(tt.msgType, func(t *testing.T) {
			title, _ := renderTransition(utils.TransitionMessage{Type: tt.msgType, EventName: "ev"})
			if !strings.Contains(title, tt.want) {
				t.Errorf("title %q does not mention %q", title, tt.want)
			}
			if !strings.Contains(title, "ev") {
				t.Errorf("title %q does not carry the event name", title)
			}
		})
	}
}

func TestBuildNotificationsNoRecipients(t *testing.T) {
	rows := buildNotifications(utils.TransitionMessage{Type: TypeMatched, EventID: 1})
	if len(rows) != 0 {
		t.Errorf("got %d notifications for an empty recipient list, want 0", len(rows))
	}
}
