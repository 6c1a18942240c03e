package chat_repo

import (
	"context"
	"time"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
)

type MessageRepoContract interface {
	CreateMessage(ctx context.Context, msg *entity.Message) (*entity.Message, *app_error.AppError)
	FindMessagesByRoom(ctx context.Context, roomID string) ([]*entity.Message, *app_error.AppError)
	FindExpiredFileMessages(ctx context.Context, now time.Time) ([]*entity.Message, *app_error.AppError)
	DeleteMessage(ctx context.Context, msg *entity.Message) *app_error.AppError
}

type RoomRepoContract interface {
	CreateRoom(ctx context.Context, room *entity.Room) (*entity.Room, *app_error.AppError)
	FindRoomByCode(ctx context.Context, code string) (*entity.Room, *app_error.AppError)
	AddMember(ctx context.Context, code, clientID string) *app_error.AppError
	RemoveMember(ctx context.Context, code, clientID string) *app_error.AppError
	FindExpiredRooms(ctx context.Context, now time.Time) ([]*entity.Room, *app_error.AppError)
	FindEmptyRooms(ctx context.Context, createdBefore time.Time) ([]*entity.Room, *app_error.AppError)
	DeleteRoom(ctx context.Context, room *entity.Room) *app_error.AppError
	// DeleteEmptyRoom deletes the room only if it still has no members, in
	// one conditional delete. It reports whether the room was removed.
	DeleteEmptyRoom(ctx context.Context, room *entity.Room) (bool, *app_error.AppError)
}

type FileRepoContract interface {
	CreateFile(ctx context.Context, file *entity.File) (*entity.File, *app_error.AppError)
	FindFilesByRoom(ctx context.Context, roomID string) ([]*entity.File, *app_error.AppError)
	FindExpiredFiles(ctx context.Context, now time.Time) ([]*entity.File, *app_error.AppError)
	DeleteFile(ctx context.Context, file *entity.File) *app_error.AppError
}

// ChatRepoContract is the record store. Every method is a single-document
// operation; callers never rely on multi-document transactions.
type ChatRepoContract interface {
	MessageRepoContract
	RoomRepoContract
	FileRepoContract
}
