package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kevalg4g/SoulSync-backend/internal/realtime"
	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
	notifsvc "github.com/kevalg4g/SoulSync-backend/internal/services/notifications"
)

// callRecorder tracks the order of persist, broadcast, and notify calls
// so tests can assert the persist-first contract.
type callRecorder struct {
	calls []string
}

type matchStoreStub struct {
	match pgrepo.MatchRecord
	err   error
}

func (s *matchStoreStub) GetByID(context.Context, int64) (pgrepo.MatchRecord, error) {
	if s.err != nil {
		return pgrepo.MatchRecord{}, s.err
	}
	return s.match, nil
}

type messageStoreStub struct {
	rec      *callRecorder
	err      error
	messages []pgrepo.MessageRecord
}

func (s *messageStoreStub) Create(_ context.Context, matchID, senderID int64, text string, now time.Time) (pgrepo.MessageRecord, error) {
	if s.rec != nil {
		s.rec.calls = append(s.rec.calls, "persist")
	}
	if s.err != nil {
		return pgrepo.MessageRecord{}, s.err
	}
	msg := pgrepo.MessageRecord{
		ID:        int64(len(s.messages) + 1),
		MatchID:   matchID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: now,
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *messageStoreStub) ListByMatch(context.Context, int64, int) ([]pgrepo.MessageRecord, error) {
	return s.messages, nil
}

type userStoreStub struct{}

func (userStoreStub) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	return pgrepo.UserRecord{ID: userID, Name: "Alice"}, nil
}

type broadcasterStub struct {
	rec     *callRecorder
	matchID int64
	events  []realtime.Event
}

func (s *broadcasterStub) BroadcastRoom(matchID int64, ev realtime.Event) {
	if s.rec != nil {
		s.rec.calls = append(s.rec.calls, "broadcast")
	}
	s.matchID = matchID
	s.events = append(s.events, ev)
}

type notifierStub struct {
	rec    *callRecorder
	inputs []notifsvc.Input
	err    error
}

func (s *notifierStub) Notify(_ context.Context, input notifsvc.Input) error {
	if s.rec != nil {
		s.rec.calls = append(s.rec.calls, "notify")
	}
	s.inputs = append(s.inputs, input)
	return s.err
}

func newTestService(matches *matchStoreStub, messages *messageStoreStub, broadcaster *broadcasterStub, notifier *notifierStub) *Service {
	return NewService(Dependencies{
		MatchStore:   matches,
		MessageStore: messages,
		UserStore:    userStoreStub{},
		Broadcaster:  broadcaster,
		Notifier:     notifier,
	}, Config{HistoryLimit: 50, MaxTextLength: 100})
}

func participantMatch() *matchStoreStub {
	return &matchStoreStub{match: pgrepo.MatchRecord{ID: 7, UserAID: 101, UserBID: 202}}
}

func TestSendRejectsEmptyText(t *testing.T) {
	svc := newTestService(participantMatch(), &messageStoreStub{}, &broadcasterStub{}, &notifierStub{})

	_, err := svc.Send(context.Background(), 101, 7, "   ")
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestSendRejectsTooLongText(t *testing.T) {
	svc := newTestService(participantMatch(), &messageStoreStub{}, &broadcasterStub{}, &notifierStub{})

	_, err := svc.Send(context.Background(), 101, 7, strings.Repeat("a", 101))
	if !errors.Is(err, ErrTextTooLong) {
		t.Fatalf("expected ErrTextTooLong, got %v", err)
	}
}

func TestSendRejectsNonParticipant(t *testing.T) {
	messages := &messageStoreStub{}
	svc := newTestService(participantMatch(), messages, &broadcasterStub{}, &notifierStub{})

	_, err := svc.Send(context.Background(), 999, 7, "hello")
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if len(messages.messages) != 0 {
		t.Fatalf("outsider message must not be persisted")
	}
}

func TestSendUnknownMatch(t *testing.T) {
	matches := &matchStoreStub{err: pgrepo.ErrMatchNotFound}
	svc := newTestService(matches, &messageStoreStub{}, &broadcasterStub{}, &notifierStub{})

	_, err := svc.Send(context.Background(), 101, 7, "hello")
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestSendPersistsBeforeBroadcast(t *testing.T) {
	rec := &callRecorder{}
	messages := &messageStoreStub{rec: rec}
	broadcaster := &broadcasterStub{rec: rec}
	notifier := &notifierStub{rec: rec}
	svc := newTestService(participantMatch(), messages, broadcaster, notifier)

	msg, err := svc.Send(context.Background(), 101, 7, "  hello  ")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if msg.Text != "hello" {
		t.Fatalf("text must be trimmed, got %q", msg.Text)
	}

	want := []string{"persist", "broadcast", "notify"}
	if len(rec.calls) != len(want) {
		t.Fatalf("unexpected call sequence: %v", rec.calls)
	}
	for i, call := range want {
		if rec.calls[i] != call {
			t.Fatalf("unexpected call order: got %v want %v", rec.calls, want)
		}
	}

	if broadcaster.matchID != 7 {
		t.Fatalf("broadcast targeted wrong room: got %d want 7", broadcaster.matchID)
	}
	if len(broadcaster.events) != 1 || broadcaster.events[0].Name != realtime.EventMessageReceived {
		t.Fatalf("expected one message_received broadcast, got %+v", broadcaster.events)
	}
}

func TestSendPersistFailureSkipsBroadcast(t *testing.T) {
	rec := &callRecorder{}
	messages := &messageStoreStub{rec: rec, err: errors.New("db down")}
	broadcaster := &broadcasterStub{rec: rec}
	svc := newTestService(participantMatch(), messages, broadcaster, &notifierStub{rec: rec})

	_, err := svc.Send(context.Background(), 101, 7, "hello")
	if err == nil {
		t.Fatalf("expected error when persistence fails")
	}
	for _, call := range rec.calls {
		if call == "broadcast" || call == "notify" {
			t.Fatalf("no side effects allowed after persist failure: %v", rec.calls)
		}
	}
}

func TestSendNotifiesOtherParticipant(t *testing.T) {
	notifier := &notifierStub{}
	svc := newTestService(participantMatch(), &messageStoreStub{}, &broadcasterStub{}, notifier)

	if _, err := svc.Send(context.Background(), 101, 7, "hello"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	if len(notifier.inputs) != 1 {
		t.Fatalf("expected one recipient notification, got %d", len(notifier.inputs))
	}
	input := notifier.inputs[0]
	if input.RecipientID != 202 {
		t.Fatalf("notification must go to the other participant, got %d", input.RecipientID)
	}
	if input.Kind != notifsvc.KindMessage || input.Title != "New Message" {
		t.Fatalf("unexpected notification: %+v", input)
	}
}

func TestSendNotifyFailureDoesNotFailSend(t *testing.T) {
	notifier := &notifierStub{err: errors.New("notification store down")}
	svc := newTestService(participantMatch(), &messageStoreStub{}, &broadcasterStub{}, notifier)

	if _, err := svc.Send(context.Background(), 101, 7, "hello"); err != nil {
		t.Fatalf("send must succeed despite notification failure, got %v", err)
	}
}

func TestHistoryRequiresMembership(t *testing.T) {
	messages := &messageStoreStub{messages: []pgrepo.MessageRecord{
		{ID: 1, MatchID: 7, SenderID: 101, Text: "hi"},
	}}
	svc := newTestService(participantMatch(), messages, &broadcasterStub{}, &notifierStub{})

	if _, err := svc.History(context.Background(), 999, 7); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant for outsider, got %v", err)
	}

	items, err := svc.History(context.Background(), 202, 7)
	if err != nil {
		t.Fatalf("history for participant: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one message, got %d", len(items))
	}
}
