package chat_dto

const (
	EventReceiveMessage = "receive-message"
	EventErrorMessage   = "error-message"
	EventRoomDeleted    = "room-deleted"
	EventUserStatus     = "user-status"
)

type WSOutgoingMessage struct {
	Event     string `json:"event"`
	RoomID    string `json:"roomId,omitempty"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

type WSError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type WSRoomDeleted struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

type WSUserStatus struct {
	ClientID string `json:"clientId"`
	Status   string `json:"status"`
}
