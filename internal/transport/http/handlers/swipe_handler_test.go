package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "github.com/kevalg4g/SoulSync-backend/internal/services/auth"
	swipesvc "github.com/kevalg4g/SoulSync-backend/internal/services/swipes"
)

func swipeRequest(body []byte, authenticated bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/swipe/right", bytes.NewReader(body))
	if authenticated {
		req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
			UserID: 101,
			SID:    "sid-101",
		}))
	}
	return req
}

func TestSwipeRequiresAuth(t *testing.T) {
	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{}))

	body, _ := json.Marshal(map[string]int64{"target_id": 202})
	rr := httptest.NewRecorder()
	h.Right(rr, swipeRequest(body, false))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestSwipeRejectsMissingTarget(t *testing.T) {
	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{}))

	body, _ := json.Marshal(map[string]int64{})
	rr := httptest.NewRecorder()
	h.Right(rr, swipeRequest(body, true))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSwipeRejectsSelfTarget(t *testing.T) {
	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{}))

	body, _ := json.Marshal(map[string]int64{"target_id": 101})
	rr := httptest.NewRecorder()
	h.Left(rr, swipeRequest(body, true))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestSwipeRejectsMalformedBody(t *testing.T) {
	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{}))

	rr := httptest.NewRecorder()
	h.Right(rr, swipeRequest([]byte(`{"target_id": "not a number"}`), true))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}
