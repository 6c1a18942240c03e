package chat_service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	chat_repo "github.com/kellalakshmisrharsha/study-sphere-backend/internal/repo/chat"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/utils"
	"github.com/rs/zerolog/log"
)

type ChatService struct {
	ChatRepo       chat_repo.MessageRepoContract
	Broadcaster    RoomBroadcaster
	Validate       *validator.Validate
	MaxExpiryHours int

	now func() time.Time
}

func NewChatService(repo chat_repo.MessageRepoContract, broadcaster RoomBroadcaster, maxExpiryHours int) *ChatService {
	return &ChatService{
		ChatRepo:       repo,
		Broadcaster:    broadcaster,
		Validate:       utils.NewValidator(),
		MaxExpiryHours: maxExpiryHours,
		now:            time.Now,
	}
}

// SendMessage validates, persists and then broadcasts one message. Any error
// is returned to the caller and nothing reaches the room.
func (c *ChatService) SendMessage(ctx context.Context, req chat_dto.SendMessageRequest) (*entity.Message, *app_error.AppError) {
	req.RoomID = entity.NormalizeRoomCode(req.RoomID)
	if err := utils.ValidateStruct(c.Validate, req); err != nil {
		return nil, err
	}

	msg := c.buildMessage(req)

	saved, err := c.ChatRepo.CreateMessage(ctx, msg)
	if err != nil {
		log.Error().Err(err).Str("roomID", req.RoomID).Str("sender", msg.Sender).Msg("failed to persist message")
		return nil, err
	}

	c.Broadcaster.BroadcastToRoom(saved.RoomID, chat_dto.EventReceiveMessage, saved)
	return saved, nil
}

func (c *ChatService) buildMessage(req chat_dto.SendMessageRequest) *entity.Message {
	now := c.now().UTC()
	in := req.Message

	msg := &entity.Message{
		RoomID:    req.RoomID,
		Sender:    in.Sender,
		Type:      entity.MessageType(in.Type),
		Encrypted: in.Encrypted,
		Timestamp: now,
	}
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		msg.Timestamp = in.Timestamp.UTC()
	}

	switch msg.Type {
	case entity.MessageTypeText:
		msg.Content = in.Content
	case entity.MessageTypeFile:
		msg.FileURL = in.FileURL
		msg.FileType = in.FileType
		msg.FileName = in.FileName
		if in.ExpiresAt != nil {
			at := in.ExpiresAt.UTC()
			msg.ExpiresAt = &at
		} else if hours := entity.ClampExpiryHours(req.ExpiryHours, c.MaxExpiryHours); hours > 0 {
			msg.ExpiresAt = entity.ExpiryFrom(now, hours)
		}
	}

	return msg
}

func (c *ChatService) ListMessages(ctx context.Context, req chat_dto.ListMessagesRequest) ([]*entity.Message, *app_error.AppError) {
	req.RoomID = entity.NormalizeRoomCode(req.RoomID)
	if err := utils.ValidateStruct(c.Validate, req); err != nil {
		return nil, err
	}

	messages, err := c.ChatRepo.FindMessagesByRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*entity.Message{}
	}
	return messages, nil
}
