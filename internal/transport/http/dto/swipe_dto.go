package dto

import "time"

type SwipeRequest struct {
	TargetID int64 `json:"target_id"`
}

type SwipeMatchResponse struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SwipeResponse struct {
	OK      bool                `json:"ok"`
	IsMatch bool                `json:"is_match"`
	Match   *SwipeMatchResponse `json:"match,omitempty"`
}
