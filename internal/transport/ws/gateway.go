package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kevalg4g/SoulSync-backend/internal/realtime"
	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
	authsvc "github.com/kevalg4g/SoulSync-backend/internal/services/auth"
	chatsvc "github.com/kevalg4g/SoulSync-backend/internal/services/chat"
	matchessvc "github.com/kevalg4g/SoulSync-backend/internal/services/matches"
	httperrors "github.com/kevalg4g/SoulSync-backend/internal/transport/http/errors"
)

const eventTimeout = 10 * time.Second

type AccessVerifier interface {
	ValidateAccessToken(ctx context.Context, raw string) (authsvc.AccessClaims, error)
}

type MatchAccess interface {
	EnsureParticipant(ctx context.Context, userID, matchID int64) (pgrepo.MatchRecord, error)
}

type ChatSender interface {
	Send(ctx context.Context, userID, matchID int64, text string) (pgrepo.MessageRecord, error)
}

// Gateway upgrades authenticated HTTP requests to live sessions and
// dispatches inbound frames to the services. A connection that fails the
// handshake is rejected before the upgrade and never reaches the
// registry.
type Gateway struct {
	auth     AccessVerifier
	registry *realtime.Registry
	broker   *realtime.Broker
	matches  MatchAccess
	chat     ChatSender
	opts     realtime.ClientOptions
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewGateway(
	auth AccessVerifier,
	registry *realtime.Registry,
	broker *realtime.Broker,
	matches MatchAccess,
	chat ChatSender,
	opts realtime.ClientOptions,
	log *zap.Logger,
) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}

	return &Gateway{
		auth:     auth,
		registry: registry,
		broker:   broker,
		matches:  matches,
		chat:     chat,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if g.auth == nil {
		httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
			Code:    "AUTH_SERVICE_UNAVAILABLE",
			Message: "auth service is unavailable",
		})
		return
	}

	token := tokenFromRequest(r)
	claims, err := g.auth.ValidateAccessToken(r.Context(), token)
	if err != nil {
		httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
			Code:    "UNAUTHORIZED",
			Message: "invalid or missing token",
		})
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(conn, claims.UserID, g.opts, g.handleFrame, g.teardown, g.log)
	g.registry.Register(client)
	g.log.Info("websocket connected",
		zap.Int64("user_id", claims.UserID),
		zap.String("session_id", client.ID()),
	)

	client.Run()

	g.log.Info("websocket disconnected",
		zap.Int64("user_id", claims.UserID),
		zap.String("session_id", client.ID()),
	)
}

func (g *Gateway) teardown(c *realtime.Client) {
	g.broker.LeaveAll(c)
	g.registry.Unregister(c)
}

func (g *Gateway) handleFrame(s realtime.Session, event string, data json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch event {
	case realtime.EventJoinRoom:
		var p realtime.JoinRoomPayload
		if err := json.Unmarshal(data, &p); err != nil {
			s.Enqueue(realtime.AppError("malformed join_room payload"))
			return
		}
		g.handleJoinRoom(ctx, s, p)
	case realtime.EventSendMessage:
		var p realtime.SendMessagePayload
		if err := json.Unmarshal(data, &p); err != nil {
			s.Enqueue(realtime.AppError("malformed send_message payload"))
			return
		}
		g.handleSendMessage(ctx, s, p)
	case realtime.EventTyping, realtime.EventStopTyping:
		var p realtime.TypingPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		g.handleTyping(s, event, p)
	default:
		g.log.Debug("unknown websocket event",
			zap.String("event", event),
			zap.String("session_id", s.ID()),
		)
	}
}

func (g *Gateway) handleJoinRoom(ctx context.Context, s realtime.Session, p realtime.JoinRoomPayload) {
	if g.matches == nil {
		s.Enqueue(realtime.AppError("rooms are unavailable"))
		return
	}

	match, err := g.matches.EnsureParticipant(ctx, s.UserID(), p.MatchID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrMatchNotFound), errors.Is(err, matchessvc.ErrValidation):
			s.Enqueue(realtime.AppError("unknown match"))
		case errors.Is(err, matchessvc.ErrNotParticipant):
			s.Enqueue(realtime.AppError("not a participant of this match"))
		default:
			g.log.Warn("join_room failed", zap.Int64("match_id", p.MatchID), zap.Error(err))
			s.Enqueue(realtime.AppError("error joining room"))
		}
		return
	}

	g.broker.Join(s, match.ID)
	s.Enqueue(realtime.Event{
		Name: realtime.EventJoinedRoom,
		Data: realtime.JoinedRoomPayload{
			MatchID:  match.ID,
			RoomName: realtime.RoomName(match.ID),
		},
	})
}

func (g *Gateway) handleSendMessage(ctx context.Context, s realtime.Session, p realtime.SendMessagePayload) {
	if p.SenderID != s.UserID() {
		s.Enqueue(realtime.AppError("sender does not match authenticated user"))
		return
	}
	if g.chat == nil {
		s.Enqueue(realtime.AppError("chat is unavailable"))
		return
	}

	if _, err := g.chat.Send(ctx, s.UserID(), p.MatchID, p.Text); err != nil {
		switch {
		case errors.Is(err, chatsvc.ErrEmptyText):
			s.Enqueue(realtime.AppError("message text is required"))
		case errors.Is(err, chatsvc.ErrTextTooLong):
			s.Enqueue(realtime.AppError("message text is too long"))
		case errors.Is(err, chatsvc.ErrMatchNotFound), errors.Is(err, chatsvc.ErrValidation):
			s.Enqueue(realtime.AppError("unknown match"))
		case errors.Is(err, chatsvc.ErrNotParticipant):
			s.Enqueue(realtime.AppError("not a participant of this match"))
		default:
			g.log.Warn("send_message failed", zap.Int64("match_id", p.MatchID), zap.Error(err))
			s.Enqueue(realtime.AppError("error sending message"))
		}
	}
}

// handleTyping relays typing signals to the other sessions in the room.
// A spoofed user id or a room the sender never joined drops the event
// silently; typing is never persisted.
func (g *Gateway) handleTyping(s realtime.Session, event string, p realtime.TypingPayload) {
	if p.UserID != s.UserID() {
		return
	}
	if !g.broker.InRoom(s.ID(), p.MatchID) {
		return
	}

	g.broker.BroadcastRoomExcept(p.MatchID, s.ID(), realtime.Event{
		Name: event,
		Data: realtime.TypingPayload{MatchID: p.MatchID, UserID: p.UserID},
	})
}

func tokenFromRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("token")); v != "" {
		return v
	}
	parts := strings.SplitN(strings.TrimSpace(r.Header.Get("Authorization")), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
