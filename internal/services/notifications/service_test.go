package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/kevalg4g/SoulSync-backend/internal/realtime"
	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
)

type storeStub struct {
	rows []pgrepo.NotificationRecord
	err  error

	markedUser int64
	markedIDs  []int64
}

func (s *storeStub) Create(_ context.Context, rec pgrepo.NotificationRecord) (pgrepo.NotificationRecord, error) {
	if s.err != nil {
		return pgrepo.NotificationRecord{}, s.err
	}
	rec.ID = int64(len(s.rows) + 1)
	s.rows = append(s.rows, rec)
	return rec, nil
}

func (s *storeStub) ListForUser(context.Context, int64, int) ([]pgrepo.NotificationRecord, error) {
	return s.rows, s.err
}

func (s *storeStub) MarkRead(_ context.Context, recipientID int64, ids []int64) error {
	s.markedUser = recipientID
	s.markedIDs = ids
	return s.err
}

type pusherStub struct {
	userIDs []int64
	events  []realtime.Event
}

func (s *pusherStub) SendToUser(userID int64, ev realtime.Event) {
	s.userIDs = append(s.userIDs, userID)
	s.events = append(s.events, ev)
}

func TestNotifyRejectsUnknownKind(t *testing.T) {
	svc := NewService(&storeStub{}, &pusherStub{}, nil)

	err := svc.Notify(context.Background(), Input{
		RecipientID: 101,
		Kind:        "mystery",
		Title:       "Hello",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown kind, got %v", err)
	}
}

func TestNotifyPersistFailureSkipsPush(t *testing.T) {
	store := &storeStub{err: errors.New("db down")}
	pusher := &pusherStub{}
	svc := NewService(store, pusher, nil)

	err := svc.Notify(context.Background(), Input{
		RecipientID: 101,
		Kind:        KindMatch,
		Title:       "It's a Match!",
	})
	if err == nil {
		t.Fatalf("expected error when persistence fails")
	}
	if len(pusher.events) != 0 {
		t.Fatalf("live push must not happen before the row is durable")
	}
}

func TestNotifyPersistsThenPushes(t *testing.T) {
	store := &storeStub{}
	pusher := &pusherStub{}
	svc := NewService(store, pusher, nil)

	err := svc.Notify(context.Background(), Input{
		RecipientID: 101,
		Kind:        KindMessage,
		Title:       "New Message",
		Body:        "Alice sent you a message",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("expected one persisted row, got %d", len(store.rows))
	}
	if len(pusher.userIDs) != 1 || pusher.userIDs[0] != 101 {
		t.Fatalf("push must target the recipient, got %v", pusher.userIDs)
	}
	ev := pusher.events[0]
	if ev.Name != realtime.EventNewNotification {
		t.Fatalf("unexpected live event: %s", ev.Name)
	}
	payload, ok := ev.Data.(realtime.NewNotificationPayload)
	if !ok {
		t.Fatalf("unexpected payload type: %T", ev.Data)
	}
	if payload.Kind != KindMessage || payload.Title != "New Message" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestMarkReadValidation(t *testing.T) {
	store := &storeStub{}
	svc := NewService(store, nil, nil)

	if err := svc.MarkRead(context.Background(), 101, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty ids, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), 101, []int64{1, -2}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for negative id, got %v", err)
	}

	if err := svc.MarkRead(context.Background(), 101, []int64{1, 2}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if store.markedUser != 101 || len(store.markedIDs) != 2 {
		t.Fatalf("unexpected mark read call: user=%d ids=%v", store.markedUser, store.markedIDs)
	}
}
