package websocket

import (
	"time"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func encodeEvent(event, roomID string, data any) ([]byte, error) {
	return json.Marshal(chat_dto.WSOutgoingMessage{
		Event:     event,
		RoomID:    roomID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}
