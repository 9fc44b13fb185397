package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kevalg4g/SoulSync-backend/internal/realtime"
	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
)

const (
	KindMatch   = "match"
	KindMessage = "message"
	KindLike    = "like"
)

var ErrValidation = errors.New("validation error")

type NotificationStore interface {
	Create(ctx context.Context, rec pgrepo.NotificationRecord) (pgrepo.NotificationRecord, error)
	ListForUser(ctx context.Context, recipientID int64, limit int) ([]pgrepo.NotificationRecord, error)
	MarkRead(ctx context.Context, recipientID int64, ids []int64) error
}

type LivePusher interface {
	SendToUser(userID int64, ev realtime.Event)
}

type Input struct {
	RecipientID    int64
	Kind           string
	Title          string
	Body           string
	RelatedUserID  *int64
	RelatedMatchID *int64
}

type Item struct {
	ID             int64
	Kind           string
	Title          string
	Body           string
	RelatedUserID  *int64
	RelatedMatchID *int64
	IsRead         bool
	CreatedAt      time.Time
}

type Service struct {
	store  NotificationStore
	pusher LivePusher
	log    *zap.Logger
}

func NewService(store NotificationStore, pusher LivePusher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		pusher: pusher,
		log:    log,
	}
}

// Notify persists the notification row first, then pushes a live copy to
// the recipient's sessions if any are connected. The durable row is the
// contract; the live push is best effort.
func (s *Service) Notify(ctx context.Context, input Input) error {
	if input.RecipientID <= 0 || strings.TrimSpace(input.Title) == "" {
		return ErrValidation
	}
	if !isKnownKind(input.Kind) {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("notification store is nil")
	}

	if _, err := s.store.Create(ctx, pgrepo.NotificationRecord{
		RecipientID:    input.RecipientID,
		Kind:           input.Kind,
		Title:          input.Title,
		Body:           input.Body,
		RelatedUserID:  input.RelatedUserID,
		RelatedMatchID: input.RelatedMatchID,
	}); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if s.pusher != nil {
		s.pusher.SendToUser(input.RecipientID, realtime.Event{
			Name: realtime.EventNewNotification,
			Data: realtime.NewNotificationPayload{
				Kind:  input.Kind,
				Title: input.Title,
				Body:  input.Body,
			},
		})
	}

	return nil
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]Item, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("notification store is nil")
	}

	rows, err := s.store.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Item{
			ID:             row.ID,
			Kind:           row.Kind,
			Title:          row.Title,
			Body:           row.Body,
			RelatedUserID:  row.RelatedUserID,
			RelatedMatchID: row.RelatedMatchID,
			IsRead:         row.IsRead,
			CreatedAt:      row.CreatedAt,
		})
	}
	return items, nil
}

func (s *Service) MarkRead(ctx context.Context, userID int64, ids []int64) error {
	if userID <= 0 || len(ids) == 0 {
		return ErrValidation
	}
	for _, id := range ids {
		if id <= 0 {
			return ErrValidation
		}
	}
	if s.store == nil {
		return fmt.Errorf("notification store is nil")
	}

	return s.store.MarkRead(ctx, userID, ids)
}

func isKnownKind(kind string) bool {
	switch kind {
	case KindMatch, KindMessage, KindLike:
		return true
	default:
		return false
	}
}
