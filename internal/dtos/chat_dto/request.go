package chat_dto

import "time"

// MessagePayload is the message body a client submits for ingest.
type MessagePayload struct {
	Sender    string     `json:"sender" validate:"required"`
	Type      string     `json:"type" validate:"required,oneof=text file"`
	Content   string     `json:"content,omitempty" validate:"required_if=Type text"`
	FileURL   string     `json:"fileUrl,omitempty" validate:"required_if=Type file"`
	FileType  string     `json:"fileType,omitempty"`
	FileName  string     `json:"fileName,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Encrypted bool       `json:"encrypted"`
}

type SendMessageRequest struct {
	RoomID      string         `json:"roomId" validate:"required"`
	Message     MessagePayload `json:"message"`
	ExpiryHours int            `json:"expiryHours,omitempty"`
}

type ListMessagesRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

type CreateRoomRequest struct {
	Code    string `json:"code,omitempty" validate:"omitempty,alphanum,max=32"`
	Creator string `json:"creator" validate:"required"`
}

type JoinRoomRequest struct {
	ClientID string `json:"clientId" validate:"required"`
}

type UploadRequest struct {
	RoomID       string `json:"roomId" validate:"required"`
	OriginalName string `json:"originalName" validate:"required"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size" validate:"gte=0"`
	ExpiryHours  int    `json:"expiryHours"`
}
