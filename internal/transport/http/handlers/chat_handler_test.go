package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
	authsvc "github.com/kevalg4g/SoulSync-backend/internal/services/auth"
	chatsvc "github.com/kevalg4g/SoulSync-backend/internal/services/chat"
)

type chatMatchStoreStub struct {
	match pgrepo.MatchRecord
	err   error
}

func (s chatMatchStoreStub) GetByID(context.Context, int64) (pgrepo.MatchRecord, error) {
	if s.err != nil {
		return pgrepo.MatchRecord{}, s.err
	}
	return s.match, nil
}

type chatMessageStoreStub struct {
	messages []pgrepo.MessageRecord
}

func (s *chatMessageStoreStub) Create(_ context.Context, matchID, senderID int64, text string, now time.Time) (pgrepo.MessageRecord, error) {
	msg := pgrepo.MessageRecord{ID: int64(len(s.messages) + 1), MatchID: matchID, SenderID: senderID, Text: text, CreatedAt: now}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *chatMessageStoreStub) ListByMatch(context.Context, int64, int) ([]pgrepo.MessageRecord, error) {
	return s.messages, nil
}

func newChatHandlerForTest(matches chatMatchStoreStub, messages *chatMessageStoreStub) *ChatHandler {
	svc := chatsvc.NewService(chatsvc.Dependencies{
		MatchStore:   matches,
		MessageStore: messages,
	}, chatsvc.Config{})
	return NewChatHandler(svc)
}

func chatRequest(method, target string, body []byte, userID int64, matchID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{
		UserID: userID,
		SID:    "sid-test",
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("matchID", matchID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestChatSendForbiddenForOutsider(t *testing.T) {
	h := newChatHandlerForTest(
		chatMatchStoreStub{match: pgrepo.MatchRecord{ID: 7, UserAID: 101, UserBID: 202}},
		&chatMessageStoreStub{},
	)

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	req := chatRequest(http.MethodPost, "/chat/7/send", body, 999, "7")
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestChatSendUnknownMatchIs404(t *testing.T) {
	h := newChatHandlerForTest(chatMatchStoreStub{err: pgrepo.ErrMatchNotFound}, &chatMessageStoreStub{})

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	req := chatRequest(http.MethodPost, "/chat/404/send", body, 101, "404")
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}

func TestChatSendEmptyTextIs400(t *testing.T) {
	h := newChatHandlerForTest(
		chatMatchStoreStub{match: pgrepo.MatchRecord{ID: 7, UserAID: 101, UserBID: 202}},
		&chatMessageStoreStub{},
	)

	body, _ := json.Marshal(map[string]string{"text": "   "})
	req := chatRequest(http.MethodPost, "/chat/7/send", body, 101, "7")
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestChatSendPersistsMessage(t *testing.T) {
	messages := &chatMessageStoreStub{}
	h := newChatHandlerForTest(
		chatMatchStoreStub{match: pgrepo.MatchRecord{ID: 7, UserAID: 101, UserBID: 202}},
		messages,
	)

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	req := chatRequest(http.MethodPost, "/chat/7/send", body, 101, "7")
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if len(messages.messages) != 1 {
		t.Fatalf("expected one persisted message, got %d", len(messages.messages))
	}

	var payload struct {
		ID       int64  `json:"id"`
		MatchID  int64  `json:"match_id"`
		SenderID int64  `json:"sender_id"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.MatchID != 7 || payload.SenderID != 101 || payload.Text != "hello" {
		t.Fatalf("unexpected response payload: %+v", payload)
	}
}

func TestChatHistoryRequiresAuth(t *testing.T) {
	h := newChatHandlerForTest(chatMatchStoreStub{}, &chatMessageStoreStub{})

	req := httptest.NewRequest(http.MethodGet, "/chat/7", nil)
	rr := httptest.NewRecorder()
	h.History(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestChatHistoryReturnsMessages(t *testing.T) {
	messages := &chatMessageStoreStub{messages: []pgrepo.MessageRecord{
		{ID: 1, MatchID: 7, SenderID: 101, Text: "hi"},
		{ID: 2, MatchID: 7, SenderID: 202, Text: "hey"},
	}}
	h := newChatHandlerForTest(
		chatMatchStoreStub{match: pgrepo.MatchRecord{ID: 7, UserAID: 101, UserBID: 202}},
		messages,
	)

	req := chatRequest(http.MethodGet, "/chat/7", nil, 202, "7")
	rr := httptest.NewRecorder()
	h.History(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		Items []struct {
			ID   int64  `json:"id"`
			Text string `json:"text"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("expected two messages, got %d", len(payload.Items))
	}
}
