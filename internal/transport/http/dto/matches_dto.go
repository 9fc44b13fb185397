package dto

import "time"

type MatchOtherUserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type MatchItemResponse struct {
	MatchID   int64                  `json:"match_id"`
	OtherUser MatchOtherUserResponse `json:"other_user"`
	MatchedAt time.Time              `json:"matched_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

type CreateMatchRequest struct {
	UserAID int64 `json:"user_a_id"`
	UserBID int64 `json:"user_b_id"`
}

type CreateMatchResponse struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}
