package chat_dto

import jsoniter "github.com/json-iterator/go"

const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
)

// WSIncomingMessage is the envelope of every client frame. Data is decoded
// according to Event.
type WSIncomingMessage struct {
	Event string              `json:"event"`
	Data  jsoniter.RawMessage `json:"data"`
}

type WSRoomData struct {
	RoomID   string `json:"roomId"`
	ClientID string `json:"clientId,omitempty"`
}
