package chat_service

import (
	"context"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
)

type ChatServiceContract interface {
	SendMessage(ctx context.Context, req chat_dto.SendMessageRequest) (*entity.Message, *app_error.AppError)
	ListMessages(ctx context.Context, req chat_dto.ListMessagesRequest) ([]*entity.Message, *app_error.AppError)
}

// RoomBroadcaster fans an event out to every connection joined to roomID,
// the sender's included.
type RoomBroadcaster interface {
	BroadcastToRoom(roomID, event string, payload any)
}
