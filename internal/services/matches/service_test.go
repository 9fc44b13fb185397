package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kevalg4g/SoulSync-backend/internal/realtime"
	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
	notifsvc "github.com/kevalg4g/SoulSync-backend/internal/services/notifications"
)

type matchStoreStub struct {
	match       pgrepo.MatchRecord
	created     bool
	createErr   error
	getErr      error
	listItems   []pgrepo.MatchWithUserRecord
	createCalls int
}

func (s *matchStoreStub) CreateCanonical(context.Context, pgx.Tx, int64, int64) (pgrepo.MatchRecord, bool, error) {
	s.createCalls++
	return s.match, s.created, s.createErr
}

func (s *matchStoreStub) GetByID(context.Context, int64) (pgrepo.MatchRecord, error) {
	if s.getErr != nil {
		return pgrepo.MatchRecord{}, s.getErr
	}
	return s.match, nil
}

func (s *matchStoreStub) ListForUser(context.Context, int64, int) ([]pgrepo.MatchWithUserRecord, error) {
	return s.listItems, nil
}

type userStoreStub struct {
	users map[int64]pgrepo.UserRecord
}

func (s *userStoreStub) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	user, ok := s.users[userID]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

type notifierStub struct {
	inputs []notifsvc.Input
	err    error
}

func (s *notifierStub) Notify(_ context.Context, input notifsvc.Input) error {
	s.inputs = append(s.inputs, input)
	return s.err
}

type broadcasterStub struct {
	events []realtime.Event
}

func (s *broadcasterStub) SendToUser(_ int64, ev realtime.Event) {
	s.events = append(s.events, ev)
}

func newTestService(matches *matchStoreStub, notifier *notifierStub, broadcaster *broadcasterStub) *Service {
	svc := NewService(Dependencies{
		MatchStore: matches,
		UserStore: &userStoreStub{users: map[int64]pgrepo.UserRecord{
			101: {ID: 101, Name: "Alice", Email: "alice@example.com"},
			202: {ID: 202, Name: "Bob", Email: "bob@example.com"},
		}},
		Notifier:    notifier,
		Broadcaster: broadcaster,
	})
	svc.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return svc
}

func TestCreateRejectsSelfPair(t *testing.T) {
	svc := newTestService(&matchStoreStub{}, &notifierStub{}, &broadcasterStub{})

	_, err := svc.Create(context.Background(), 101, 101)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for a self pair, got %v", err)
	}
}

func TestCreateExistingPairReturnsDuplicate(t *testing.T) {
	matches := &matchStoreStub{
		match:   pgrepo.MatchRecord{ID: 7, UserAID: 101, UserBID: 202},
		created: false,
	}
	notifier := &notifierStub{}
	broadcaster := &broadcasterStub{}
	svc := newTestService(matches, notifier, broadcaster)

	_, err := svc.Create(context.Background(), 101, 202)
	if !errors.Is(err, ErrDuplicateMatch) {
		t.Fatalf("expected ErrDuplicateMatch, got %v", err)
	}
	if len(notifier.inputs) != 0 || len(broadcaster.events) != 0 {
		t.Fatalf("duplicate create must not fire side effects")
	}
}

func TestCreateFreshPairAnnounces(t *testing.T) {
	matches := &matchStoreStub{
		match:   pgrepo.MatchRecord{ID: 7, UserAID: 101, UserBID: 202, CreatedAt: time.Now().UTC()},
		created: true,
	}
	notifier := &notifierStub{}
	broadcaster := &broadcasterStub{}
	svc := newTestService(matches, notifier, broadcaster)

	match, err := svc.Create(context.Background(), 202, 101)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if match.ID != 7 {
		t.Fatalf("unexpected match id: got %d want 7", match.ID)
	}
	if len(notifier.inputs) != 2 {
		t.Fatalf("expected one notification per participant, got %d", len(notifier.inputs))
	}
	recipients := map[int64]bool{}
	for _, input := range notifier.inputs {
		recipients[input.RecipientID] = true
		if input.Kind != notifsvc.KindMatch {
			t.Fatalf("unexpected notification kind: %s", input.Kind)
		}
		if input.Title != "It's a Match!" {
			t.Fatalf("unexpected notification title: %s", input.Title)
		}
		if input.RelatedMatchID == nil || *input.RelatedMatchID != 7 {
			t.Fatalf("notification missing related match id: %+v", input)
		}
	}
	if !recipients[101] || !recipients[202] {
		t.Fatalf("both participants must be notified, got %v", recipients)
	}
	if len(broadcaster.events) != 2 {
		t.Fatalf("expected one personal broadcast per participant, got %d", len(broadcaster.events))
	}
	for _, ev := range broadcaster.events {
		if ev.Name != realtime.EventNewMatch {
			t.Fatalf("unexpected broadcast event: %s", ev.Name)
		}
	}
}

func TestAnnounceNotifyFailureStillBroadcasts(t *testing.T) {
	notifier := &notifierStub{err: errors.New("notification store down")}
	broadcaster := &broadcasterStub{}
	svc := newTestService(&matchStoreStub{}, notifier, broadcaster)

	svc.Announce(context.Background(), pgrepo.MatchRecord{ID: 7, UserAID: 101, UserBID: 202})

	if len(broadcaster.events) != 2 {
		t.Fatalf("broadcast must still happen when notifications fail, got %d events", len(broadcaster.events))
	}
}

func TestEnsureParticipantNotFound(t *testing.T) {
	matches := &matchStoreStub{getErr: pgrepo.ErrMatchNotFound}
	svc := newTestService(matches, &notifierStub{}, &broadcasterStub{})

	_, err := svc.EnsureParticipant(context.Background(), 101, 7)
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestEnsureParticipantRejectsOutsider(t *testing.T) {
	matches := &matchStoreStub{match: pgrepo.MatchRecord{ID: 7, UserAID: 101, UserBID: 202}}
	svc := newTestService(matches, &notifierStub{}, &broadcasterStub{})

	_, err := svc.EnsureParticipant(context.Background(), 999, 7)
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	match, err := svc.EnsureParticipant(context.Background(), 202, 7)
	if err != nil {
		t.Fatalf("participant must pass the check: %v", err)
	}
	if match.ID != 7 {
		t.Fatalf("unexpected match id: got %d want 7", match.ID)
	}
}

func TestListMapsOtherUser(t *testing.T) {
	matchedAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	matches := &matchStoreStub{listItems: []pgrepo.MatchWithUserRecord{
		{
			ID:          7,
			OtherUserID: 202,
			OtherName:   "Bob",
			OtherEmail:  "bob@example.com",
			CreatedAt:   matchedAt,
		},
	}}
	svc := newTestService(matches, &notifierStub{}, &broadcasterStub{})

	items, err := svc.List(context.Background(), 101, 50)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one match, got %d", len(items))
	}
	item := items[0]
	if item.OtherUserID != 202 || item.OtherName != "Bob" {
		t.Fatalf("unexpected other user mapping: %+v", item)
	}
	if !item.MatchedAt.Equal(matchedAt) {
		t.Fatalf("unexpected matched_at: got %v want %v", item.MatchedAt, matchedAt)
	}
}
