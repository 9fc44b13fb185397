package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/kevalg4g/SoulSync-backend/internal/services/auth"
	chatsvc "github.com/kevalg4g/SoulSync-backend/internal/services/chat"
	"github.com/kevalg4g/SoulSync-backend/internal/transport/http/dto"
	httperrors "github.com/kevalg4g/SoulSync-backend/internal/transport/http/errors"
)

type ChatHandler struct {
	service *chatsvc.Service
}

func NewChatHandler(service *chatsvc.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	matchID, ok := matchIDFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	messages, err := h.service.History(r.Context(), identity.UserID, matchID)
	if err != nil {
		handleChatError(w, err, "failed to load chat history")
		return
	}

	items := make([]dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		items = append(items, dto.MessageResponse{
			ID:        msg.ID,
			MatchID:   msg.MatchID,
			SenderID:  msg.SenderID,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ChatHistoryResponse{Items: items})
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	matchID, ok := matchIDFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	msg, err := h.service.Send(r.Context(), identity.UserID, matchID, req.Text)
	if err != nil {
		handleChatError(w, err, "failed to send message")
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.MessageResponse{
		ID:        msg.ID,
		MatchID:   msg.MatchID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	})
}

func handleChatError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, chatsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid chat request")
	case errors.Is(err, chatsvc.ErrEmptyText):
		writeBadRequest(w, "VALIDATION_ERROR", "message text is required")
	case errors.Is(err, chatsvc.ErrTextTooLong):
		writeBadRequest(w, "VALIDATION_ERROR", "message text is too long")
	case errors.Is(err, chatsvc.ErrMatchNotFound):
		writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
	case errors.Is(err, chatsvc.ErrNotParticipant):
		writeForbidden(w, "FORBIDDEN", "not a participant of this match")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}

func matchIDFromURL(r *http.Request) (int64, bool) {
	matchID, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil || matchID <= 0 {
		return 0, false
	}
	return matchID, true
}
