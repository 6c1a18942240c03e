package room_service

import (
	"context"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
)

// RoomServiceContract is the membership tracker. Join is idempotent and
// Leave is a no-op for a client that is not a member.
type RoomServiceContract interface {
	CreateRoom(ctx context.Context, req chat_dto.CreateRoomRequest) (*entity.Room, *app_error.AppError)
	GetRoom(ctx context.Context, code string) (*entity.Room, *app_error.AppError)
	Join(ctx context.Context, code, clientID string) (*entity.Room, *app_error.AppError)
	Leave(ctx context.Context, code, clientID string) *app_error.AppError
	Evict(ctx context.Context, code string)
}
