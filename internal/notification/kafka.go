package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/taroc/schedule-service-sub002/utils"
)

// Consumer turns transition messages into in-app notification rows, one per
// recipient.
type Consumer struct {
	Reader *kafka.Reader
	Repo   *Repository
}

func NewConsumer(reader *kafka.Reader, repo *Repository) *Consumer {
	return &Consumer{Reader: reader, Repo: repo}
}

// Run consumes until the context is cancelled. Malformed messages are logged
// and skipped; storage failures drop the batch rather than stalling the
// partition.
func (c *Consumer) Run(ctx context.Context) {
	log.Println("✅ Notification consumer started")
	for {
		msg, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				log.Println("Notification consumer stopped")
				return
			}
			log.Printf("⚠️ Notification consumer read failed: %v", err)
			continue
		}

		var transition utils.TransitionMessage
		if err := json.Unmarshal(msg.Value, &transition); err != nil {
			log.Printf("⚠️ Skipping malformed transition message: %v", err)
			continue
		}

		if err := c.Repo.CreateBatch(ctx, buildNotifications(transition)); err != nil {
			log.Printf("⚠️ Failed to store notifications for event %d: %v", transition.EventID, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.Reader.Close()
}

func buildNotifications(t utils.TransitionMessage) []Notification {
	title, message := renderTransition(t)
	eventID := t.EventID

	out := make([]Notification, 0, len(t.UserIDs))
	for _, userID := range t.UserIDs {
		out = append(out, Notification{
			UserID:  userID,
			EventID: &eventID,
			Type:    t.Type,
			Title:   title,
			Message: message,
		})
	}
	return out
}

func renderTransition(t utils.TransitionMessage) (title, message string) {
	switch t.Type {
	case TypeMatched:
		title = fmt.Sprintf("Schedule confirmed for %q", t.EventName)
	case TypeConfirmationRequired:
		title = fmt.Sprintf("Confirmation needed for %q", t.EventName)
	case TypeDeadlineApproaching:
		title = fmt.Sprintf("Deadline approaching for %q", t.EventName)
	case TypeExpired:
		title = fmt.Sprintf("%q has expired", t.EventName)
	case TypeRolledBack:
		title = fmt.Sprintf("Match withdrawn for %q", t.EventName)
	default:
		title = fmt.Sprintf("%q was updated", t.EventName)
	}
	return title, t.Reason
}
