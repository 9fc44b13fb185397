package handlers

import (
	"errors"
	"net/http"
	"strconv"

	authsvc "github.com/kevalg4g/SoulSync-backend/internal/services/auth"
	matchessvc "github.com/kevalg4g/SoulSync-backend/internal/services/matches"
	"github.com/kevalg4g/SoulSync-backend/internal/transport/http/dto"
	httperrors "github.com/kevalg4g/SoulSync-backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID, parseIntOrDefault(r.URL.Query().Get("limit"), 100))
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		}
		return
	}

	responseItems := make([]dto.MatchItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.MatchItemResponse{
			MatchID: item.ID,
			OtherUser: dto.MatchOtherUserResponse{
				ID:    item.OtherUserID,
				Name:  item.OtherName,
				Email: item.OtherEmail,
			},
			MatchedAt: item.MatchedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: responseItems})
}

func (h *MatchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	var req dto.CreateMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	match, err := h.service.Create(r.Context(), req.UserAID, req.UserBID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match request")
		case errors.Is(err, matchessvc.ErrDuplicateMatch):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "DUPLICATE_MATCH",
				Message: "match already exists for this pair",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create match")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.CreateMatchResponse{
		ID:        match.ID,
		UserAID:   match.UserAID,
		UserBID:   match.UserBID,
		CreatedAt: match.CreatedAt,
	})
}

func parseIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
