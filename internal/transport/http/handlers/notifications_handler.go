package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/kevalg4g/SoulSync-backend/internal/services/auth"
	notifsvc "github.com/kevalg4g/SoulSync-backend/internal/services/notifications"
	"github.com/kevalg4g/SoulSync-backend/internal/transport/http/dto"
	httperrors "github.com/kevalg4g/SoulSync-backend/internal/transport/http/errors"
)

type NotificationsHandler struct {
	service *notifsvc.Service
}

func NewNotificationsHandler(service *notifsvc.Service) *NotificationsHandler {
	return &NotificationsHandler{service: service}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "NOTIFICATIONS_SERVICE_UNAVAILABLE", "notifications service is unavailable")
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID, parseIntOrDefault(r.URL.Query().Get("limit"), 50))
	if err != nil {
		switch {
		case errors.Is(err, notifsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid notifications request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load notifications")
		}
		return
	}

	responseItems := make([]dto.NotificationItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.NotificationItemResponse{
			ID:             item.ID,
			Kind:           item.Kind,
			Title:          item.Title,
			Body:           item.Body,
			RelatedUserID:  item.RelatedUserID,
			RelatedMatchID: item.RelatedMatchID,
			IsRead:         item.IsRead,
			CreatedAt:      item.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.NotificationsResponse{Items: responseItems})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "NOTIFICATIONS_SERVICE_UNAVAILABLE", "notifications service is unavailable")
		return
	}

	var req dto.MarkReadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.MarkRead(r.Context(), identity.UserID, req.IDs); err != nil {
		switch {
		case errors.Is(err, notifsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "ids are required")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to mark notifications read")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}
