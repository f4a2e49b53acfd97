package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/taroc/schedule-service-sub002/internal/event"
	"github.com/taroc/schedule-service-sub002/internal/matching"
	"github.com/taroc/schedule-service-sub002/utils"
)

// Service publishes engine transitions to the transitions topic. In-app rows
// are written by the kafka consumer (see kafka.go), keeping the engine's
// write path independent of notification storage.
type Service struct {
	Repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{Repo: repo}
}

// ===========================
// Engine-facing transition publishers

func (s *Service) EventMatched(ctx context.Context, e *event.Event, slots []matching.Coordinate, partial bool) {
	reason := fmt.Sprintf("matched %d slots", len(slots))
	if partial {
		reason = fmt.Sprintf("partially matched %d slots", len(slots))
	}
	utils.PublishTransition(ctx, utils.TransitionMessage{
		Type:       TypeMatched,
		EventID:    e.ID,
		EventName:  e.Name,
		UserIDs:    participantIDs(e),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *Service) ConfirmationRequired(ctx context.Context, e *event.Event, slots []matching.Coordinate) {
	utils.PublishTransition(ctx, utils.TransitionMessage{
		Type:       TypeConfirmationRequired,
		EventID:    e.ID,
		EventName:  e.Name,
		UserIDs:    participantIDs(e),
		Reason:     fmt.Sprintf("matched %d slots, confirmation required", len(slots)),
		OccurredAt: time.Now().UTC(),
	})
}

func (s *Service) DeadlineApproaching(ctx context.Context, e *event.Event) {
	utils.PublishTransition(ctx, utils.TransitionMessage{
		Type:       TypeDeadlineApproaching,
		EventID:    e.ID,
		EventName:  e.Name,
		UserIDs:    participantIDs(e),
		Reason:     "matching deadline within 24 hours",
		OccurredAt: time.Now().UTC(),
	})
}

// ===========================
// User-facing queries

func (s *Service) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]Notification, int64, error) {
	notifications, err := s.Repo.GetByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.Repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID uint) error {
	return s.Repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.Repo.MarkAllRead(ctx, userID)
}

func participantIDs(e *event.Event) []uint {
	ids := make([]uint, len(e.Participants))
	for i, p := range e.Participants {
		ids[i] = p.UserID
	}
	return ids
}
