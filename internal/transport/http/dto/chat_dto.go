package dto

import "time"

type SendMessageRequest struct {
	Text string `json:"text"`
}

type MessageResponse struct {
	ID        int64     `json:"id"`
	MatchID   int64     `json:"match_id"`
	SenderID  int64     `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Items []MessageResponse `json:"items"`
}
