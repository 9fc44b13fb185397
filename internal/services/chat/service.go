package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kevalg4g/SoulSync-backend/internal/realtime"
	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
	notifsvc "github.com/kevalg4g/SoulSync-backend/internal/services/notifications"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrEmptyText      = errors.New("message text is required")
	ErrTextTooLong    = errors.New("message text is too long")
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotParticipant = errors.New("user is not a participant of this match")
)

type MatchStore interface {
	GetByID(ctx context.Context, matchID int64) (pgrepo.MatchRecord, error)
}

type MessageStore interface {
	Create(ctx context.Context, matchID, senderID int64, text string, now time.Time) (pgrepo.MessageRecord, error)
	ListByMatch(ctx context.Context, matchID int64, limit int) ([]pgrepo.MessageRecord, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
}

type RoomBroadcaster interface {
	BroadcastRoom(matchID int64, ev realtime.Event)
}

type Notifier interface {
	Notify(ctx context.Context, input notifsvc.Input) error
}

type Config struct {
	HistoryLimit  int
	MaxTextLength int
}

type Service struct {
	matchStore   MatchStore
	messageStore MessageStore
	userStore    UserStore
	broadcaster  RoomBroadcaster
	notifier     Notifier
	cfg          Config
	log          *zap.Logger
	now          func() time.Time
}

type Dependencies struct {
	MatchStore   MatchStore
	MessageStore MessageStore
	UserStore    UserStore
	Broadcaster  RoomBroadcaster
	Notifier     Notifier
	Logger       *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 200
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = 2000
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		matchStore:   deps.MatchStore,
		messageStore: deps.MessageStore,
		userStore:    deps.UserStore,
		broadcaster:  deps.Broadcaster,
		notifier:     deps.Notifier,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
	}
}

// Send is the single funnel for both the REST and the live path. It
// re-validates membership from the match record every time (a client
// may send without having joined the room after a reconnect), persists
// the message, and only then broadcasts it to the room.
func (s *Service) Send(ctx context.Context, userID, matchID int64, text string) (pgrepo.MessageRecord, error) {
	if userID <= 0 || matchID <= 0 {
		return pgrepo.MessageRecord{}, ErrValidation
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return pgrepo.MessageRecord{}, ErrEmptyText
	}
	if len(text) > s.cfg.MaxTextLength {
		return pgrepo.MessageRecord{}, ErrTextTooLong
	}
	if s.matchStore == nil || s.messageStore == nil {
		return pgrepo.MessageRecord{}, fmt.Errorf("chat dependencies are not configured")
	}

	match, err := s.requireParticipant(ctx, userID, matchID)
	if err != nil {
		return pgrepo.MessageRecord{}, err
	}

	msg, err := s.messageStore.Create(ctx, matchID, userID, text, s.now().UTC())
	if err != nil {
		return pgrepo.MessageRecord{}, fmt.Errorf("persist message: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastRoom(matchID, realtime.Event{
			Name: realtime.EventMessageReceived,
			Data: realtime.MessageReceivedPayload{
				MatchID:   msg.MatchID,
				SenderID:  msg.SenderID,
				MessageID: msg.ID,
				Text:      msg.Text,
				CreatedAt: msg.CreatedAt,
			},
		})
	}

	s.notifyRecipient(ctx, match, userID)

	return msg, nil
}

func (s *Service) History(ctx context.Context, userID, matchID int64) ([]pgrepo.MessageRecord, error) {
	if userID <= 0 || matchID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil || s.messageStore == nil {
		return nil, fmt.Errorf("chat dependencies are not configured")
	}

	if _, err := s.requireParticipant(ctx, userID, matchID); err != nil {
		return nil, err
	}

	return s.messageStore.ListByMatch(ctx, matchID, s.cfg.HistoryLimit)
}

func (s *Service) requireParticipant(ctx context.Context, userID, matchID int64) (pgrepo.MatchRecord, error) {
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

// notifyRecipient files a message notification for the other
// participant. A failure here never fails the send; the message is
// already persisted and broadcast.
func (s *Service) notifyRecipient(ctx context.Context, match pgrepo.MatchRecord, senderID int64) {
	if s.notifier == nil {
		return
	}

	senderName := ""
	if s.userStore != nil {
		if sender, err := s.userStore.GetByID(ctx, senderID); err == nil {
			senderName = sender.Name
		}
	}
	body := "You have a new message"
	if senderName != "" {
		body = fmt.Sprintf("%s sent you a message", senderName)
	}

	recipientID := match.OtherParticipant(senderID)
	sID := senderID
	mID := match.ID
	if err := s.notifier.Notify(ctx, notifsvc.Input{
		RecipientID:    recipientID,
		Kind:           notifsvc.KindMessage,
		Title:          "New Message",
		Body:           body,
		RelatedUserID:  &sID,
		RelatedMatchID: &mID,
	}); err != nil {
		s.log.Warn("message notification failed",
			zap.Int64("match_id", match.ID),
			zap.Int64("recipient_id", recipientID),
			zap.Error(err),
		)
	}
}
