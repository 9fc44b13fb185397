package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrSelfSwipe      = errors.New("cannot swipe on yourself")
	ErrDuplicateSwipe = errors.New("already swiped on this user")
)

type SwipeStore interface {
	Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction string, now time.Time) (pgrepo.SwipeRecord, error)
	HasRightSwipe(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error)
}

type MatchStore interface {
	CreateCanonical(ctx context.Context, tx pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, bool, error)
}

// Announcer fires the fresh-match side effects. Delivery is best-effort
// and never fails the swipe.
type Announcer interface {
	Announce(ctx context.Context, match pgrepo.MatchRecord)
}

type SwipeResult struct {
	Swipe   pgrepo.SwipeRecord
	IsMatch bool
	Match   *pgrepo.MatchRecord
}

type Service struct {
	pool       *pgxpool.Pool
	swipeStore SwipeStore
	matchStore MatchStore
	announcer  Announcer
	log        *zap.Logger
	now        func() time.Time
	runTx      func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	SwipeStore SwipeStore
	MatchStore MatchStore
	Announcer  Announcer
	Logger     *zap.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		pool:       deps.Pool,
		swipeStore: deps.SwipeStore,
		matchStore: deps.MatchStore,
		announcer:  deps.Announcer,
		log:        log,
		now:        time.Now,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

// Swipe appends the judgment and, for a right swipe, evaluates the pair
// for a match. The swipe commits before the reciprocal lookup runs:
// when two mutual right swipes race, at least one lookup sees the other
// side's committed row, and the canonical insert keeps creation
// idempotent so exactly one caller observes created=true and fires the
// side effects.
func (s *Service) Swipe(ctx context.Context, userID, targetID int64, direction string) (SwipeResult, error) {
	if userID <= 0 || targetID <= 0 {
		return SwipeResult{}, ErrValidation
	}
	if userID == targetID {
		return SwipeResult{}, ErrSelfSwipe
	}
	if direction != pgrepo.DirectionRight && direction != pgrepo.DirectionLeft {
		return SwipeResult{}, ErrValidation
	}
	if s.swipeStore == nil || s.matchStore == nil {
		return SwipeResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	now := s.now().UTC()

	var swipe pgrepo.SwipeRecord
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		rec, err := s.swipeStore.Create(txCtx, tx, userID, targetID, direction, now)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDuplicateSwipe) {
				return ErrDuplicateSwipe
			}
			return err
		}
		swipe = rec
		return nil
	}); err != nil {
		return SwipeResult{}, err
	}

	if direction != pgrepo.DirectionRight {
		return SwipeResult{Swipe: swipe}, nil
	}

	var (
		match   pgrepo.MatchRecord
		isMatch bool
		created bool
	)
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		reciprocal, err := s.swipeStore.HasRightSwipe(txCtx, tx, targetID, userID)
		if err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}

		rec, fresh, err := s.matchStore.CreateCanonical(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		match = rec
		isMatch = true
		created = fresh
		return nil
	}); err != nil {
		return SwipeResult{}, err
	}

	if created && s.announcer != nil {
		s.announcer.Announce(ctx, match)
	}

	result := SwipeResult{Swipe: swipe, IsMatch: isMatch}
	if isMatch {
		m := match
		result.Match = &m
	}
	return result, nil
}
