package handlers

import (
	"errors"
	"net/http"

	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
	authsvc "github.com/kevalg4g/SoulSync-backend/internal/services/auth"
	swipesvc "github.com/kevalg4g/SoulSync-backend/internal/services/swipes"
	"github.com/kevalg4g/SoulSync-backend/internal/transport/http/dto"
	httperrors "github.com/kevalg4g/SoulSync-backend/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Right(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, pgrepo.DirectionRight)
}

func (h *SwipeHandler) Left(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, pgrepo.DirectionLeft)
}

func (h *SwipeHandler) handle(w http.ResponseWriter, r *http.Request, direction string) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.TargetID, direction)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrSelfSwipe):
			writeBadRequest(w, "VALIDATION_ERROR", "cannot swipe on yourself")
		case errors.Is(err, swipesvc.ErrDuplicateSwipe):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "DUPLICATE_SWIPE",
				Message: "already swiped on this user",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	resp := dto.SwipeResponse{OK: true, IsMatch: result.IsMatch}
	if result.Match != nil {
		resp.Match = &dto.SwipeMatchResponse{
			ID:        result.Match.ID,
			UserAID:   result.Match.UserAID,
			UserBID:   result.Match.UserBID,
			CreatedAt: result.Match.CreatedAt,
		}
	}

	httperrors.Write(w, http.StatusOK, resp)
}
