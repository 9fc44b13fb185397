package dto

import "time"

type NotificationItemResponse struct {
	ID             int64     `json:"id"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	RelatedUserID  *int64    `json:"related_user_id,omitempty"`
	RelatedMatchID *int64    `json:"related_match_id,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type NotificationsResponse struct {
	Items []NotificationItemResponse `json:"items"`
}

type MarkReadRequest struct {
	IDs []int64 `json:"ids"`
}
