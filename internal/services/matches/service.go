package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kevalg4g/SoulSync-backend/internal/realtime"
	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
	notifsvc "github.com/kevalg4g/SoulSync-backend/internal/services/notifications"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotParticipant = errors.New("user is not a participant of this match")
	ErrDuplicateMatch = errors.New("match already exists")
)

type MatchStore interface {
	CreateCanonical(ctx context.Context, tx pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, bool, error)
	GetByID(ctx context.Context, matchID int64) (pgrepo.MatchRecord, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.MatchWithUserRecord, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
}

type Notifier interface {
	Notify(ctx context.Context, input notifsvc.Input) error
}

type Broadcaster interface {
	SendToUser(userID int64, ev realtime.Event)
}

type MatchItem struct {
	ID          int64
	OtherUserID int64
	OtherName   string
	OtherEmail  string
	MatchedAt   time.Time
}

type Service struct {
	pool        *pgxpool.Pool
	matchStore  MatchStore
	userStore   UserStore
	notifier    Notifier
	broadcaster Broadcaster
	log         *zap.Logger
	runTx       func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	MatchStore  MatchStore
	UserStore   UserStore
	Notifier    Notifier
	Broadcaster Broadcaster
	Logger      *zap.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		pool:        deps.Pool,
		matchStore:  deps.MatchStore,
		userStore:   deps.UserStore,
		notifier:    deps.Notifier,
		broadcaster: deps.Broadcaster,
		log:         log,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	rows, err := s.matchStore.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			ID:          row.ID,
			OtherUserID: row.OtherUserID,
			OtherName:   row.OtherName,
			OtherEmail:  row.OtherEmail,
			MatchedAt:   row.CreatedAt,
		})
	}
	return items, nil
}

// Create is the administrative path: it skips the mutual-swipe
// precondition but funnels through the same canonical idempotent insert
// as the swipe-triggered path. An existing pair is a client error here,
// never a crash.
func (s *Service) Create(ctx context.Context, userAID, userBID int64) (pgrepo.MatchRecord, error) {
	if userAID <= 0 || userBID <= 0 || userAID == userBID {
		return pgrepo.MatchRecord{}, ErrValidation
	}
	if s.matchStore == nil {
		return pgrepo.MatchRecord{}, fmt.Errorf("match store is nil")
	}

	var (
		match   pgrepo.MatchRecord
		created bool
	)
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		rec, fresh, err := s.matchStore.CreateCanonical(txCtx, tx, userAID, userBID)
		if err != nil {
			return err
		}
		match = rec
		created = fresh
		return nil
	}); err != nil {
		return pgrepo.MatchRecord{}, err
	}

	if !created {
		return pgrepo.MatchRecord{}, ErrDuplicateMatch
	}

	s.Announce(ctx, match)
	return match, nil
}

// EnsureParticipant validates room access against the match record.
func (s *Service) EnsureParticipant(ctx context.Context, userID, matchID int64) (pgrepo.MatchRecord, error) {
	if userID <= 0 || matchID <= 0 {
		return pgrepo.MatchRecord{}, ErrValidation
	}
	if s.matchStore == nil {
		return pgrepo.MatchRecord{}, fmt.Errorf("match store is nil")
	}

	match, err := s.matchStore.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return pgrepo.MatchRecord{}, ErrMatchNotFound
		}
		return pgrepo.MatchRecord{}, err
	}
	if !match.HasParticipant(userID) {
		return pgrepo.MatchRecord{}, ErrNotParticipant
	}
	return match, nil
}

// Announce fires the fresh-match side effects for both participants: a
// durable match notification each and a new_match event on both
// personal channels. The swipe path delegates here, so the side-effect
// contract lives in one place. Failures are logged and swallowed; the
// match row is already committed.
func (s *Service) Announce(ctx context.Context, match pgrepo.MatchRecord) {
	if s.userStore == nil {
		return
	}

	userA, errA := s.userStore.GetByID(ctx, match.UserAID)
	userB, errB := s.userStore.GetByID(ctx, match.UserBID)
	if errA != nil || errB != nil {
		s.log.Warn("match announcement user lookup failed",
			zap.Int64("match_id", match.ID),
			zap.NamedError("user_a", errA),
			zap.NamedError("user_b", errB),
		)
		return
	}

	if s.notifier != nil {
		for _, pair := range []struct {
			recipient pgrepo.UserRecord
			other     pgrepo.UserRecord
		}{
			{recipient: userA, other: userB},
			{recipient: userB, other: userA},
		} {
			otherID := pair.other.ID
			matchID := match.ID
			if err := s.notifier.Notify(ctx, notifsvc.Input{
				RecipientID:    pair.recipient.ID,
				Kind:           notifsvc.KindMatch,
				Title:          "It's a Match!",
				Body:           fmt.Sprintf("You and %s liked each other!", pair.other.Name),
				RelatedUserID:  &otherID,
				RelatedMatchID: &matchID,
			}); err != nil {
				s.log.Warn("match notification failed",
					zap.Int64("match_id", match.ID),
					zap.Int64("recipient_id", pair.recipient.ID),
					zap.Error(err),
				)
			}
		}
	}

	if s.broadcaster != nil {
		payload := realtime.NewMatchPayload{
			MatchID: match.ID,
			UserA:   realtime.UserSummary{ID: userA.ID, Name: userA.Name},
			UserB:   realtime.UserSummary{ID: userB.ID, Name: userB.Name},
		}
		ev := realtime.Event{Name: realtime.EventNewMatch, Data: payload}
		s.broadcaster.SendToUser(match.UserAID, ev)
		s.broadcaster.SendToUser(match.UserBID, ev)
	}
}
