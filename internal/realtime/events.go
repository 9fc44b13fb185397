package realtime

import "time"

// Event is one frame on the live channel, both directions.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

const (
	EventJoinRoom        = "join_room"
	EventJoinedRoom      = "joined_room"
	EventSendMessage     = "send_message"
	EventMessageReceived = "message_received"
	EventTyping          = "typing"
	EventStopTyping      = "stop_typing"
	EventNewMatch        = "new_match"
	EventNewNotification = "new_notification"
	EventAppError        = "app_error"
)

type JoinRoomPayload struct {
	MatchID int64 `json:"match_id"`
}

type JoinedRoomPayload struct {
	MatchID  int64  `json:"match_id"`
	RoomName string `json:"room_name"`
}

type SendMessagePayload struct {
	MatchID  int64  `json:"match_id"`
	SenderID int64  `json:"sender_id"`
	Text     string `json:"text"`
}

type MessageReceivedPayload struct {
	MatchID   int64     `json:"match_id"`
	SenderID  int64     `json:"sender_id"`
	MessageID int64     `json:"message_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type TypingPayload struct {
	MatchID int64 `json:"match_id"`
	UserID  int64 `json:"user_id"`
}

type UserSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type NewMatchPayload struct {
	MatchID int64       `json:"match_id"`
	UserA   UserSummary `json:"user_a"`
	UserB   UserSummary `json:"user_b"`
}

type NewNotificationPayload struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type AppErrorPayload struct {
	Message string `json:"message"`
}

func AppError(message string) Event {
	return Event{Name: EventAppError, Data: AppErrorPayload{Message: message}}
}
