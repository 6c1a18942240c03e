package room_service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	chat_repo "github.com/kellalakshmisrharsha/study-sphere-backend/internal/repo/chat"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
	maxCodeAttempts  = 5
	roomCachePrefix  = "room:"
)

type RoomService struct {
	RoomRepo chat_repo.RoomRepoContract
	Cache    utils.Cache[entity.Room]
	Validate *validator.Validate
	// RoomTTL gives new rooms an expiresAt when positive.
	RoomTTL time.Duration

	now     func() time.Time
	newCode func() (string, error)
}

func NewRoomService(repo chat_repo.RoomRepoContract, cache utils.Cache[entity.Room], roomTTL time.Duration) *RoomService {
	return &RoomService{
		RoomRepo: repo,
		Cache:    cache,
		Validate: utils.NewValidator(),
		RoomTTL:  roomTTL,
		now:      time.Now,
		newCode: func() (string, error) {
			return gonanoid.Generate(roomCodeAlphabet, roomCodeLength)
		},
	}
}

// CreateRoom stores a room with the creator as its first member. Without a
// requested code one is generated, retrying on collision.
func (s *RoomService) CreateRoom(ctx context.Context, req chat_dto.CreateRoomRequest) (*entity.Room, *app_error.AppError) {
	req.Code = entity.NormalizeRoomCode(req.Code)
	if err := utils.ValidateStruct(s.Validate, req); err != nil {
		return nil, err
	}

	if req.Code != "" {
		return s.insertRoom(ctx, req.Code, req.Creator)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to generate room code: %v", err), "code")
		}
		room, appErr := s.insertRoom(ctx, code, req.Creator)
		if appErr.Is(app_error.KindConflict) {
			log.Debug().Str("code", code).Msg("room code collision, retrying")
			continue
		}
		return room, appErr
	}
	return nil, app_error.NewConflictError("could not allocate a unique room code", "code")
}

func (s *RoomService) insertRoom(ctx context.Context, code, creator string) (*entity.Room, *app_error.AppError) {
	now := s.now().UTC()
	room := &entity.Room{
		Code:      code,
		Creator:   creator,
		Members:   []string{creator},
		CreatedAt: now,
	}
	if s.RoomTTL > 0 {
		at := now.Add(s.RoomTTL)
		room.ExpiresAt = &at
	}

	created, err := s.RoomRepo.CreateRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	log.Info().Str("code", created.Code).Str("creator", creator).Msg("room created")
	return created, nil
}

func (s *RoomService) GetRoom(ctx context.Context, code string) (*entity.Room, *app_error.AppError) {
	code = entity.NormalizeRoomCode(code)
	if code == "" {
		return nil, app_error.NewValidationError("Room ID is required.", "roomId")
	}

	if room, ok := s.Cache.Get(ctx, code); ok {
		return room, nil
	}

	room, err := s.RoomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, code, room)
	return room, nil
}

func (s *RoomService) Join(ctx context.Context, code, clientID string) (*entity.Room, *app_error.AppError) {
	code = entity.NormalizeRoomCode(code)
	if err := s.validateMembership(code, clientID); err != nil {
		return nil, err
	}

	if err := s.RoomRepo.AddMember(ctx, code, clientID); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, code)
	return s.GetRoom(ctx, code)
}

func (s *RoomService) Leave(ctx context.Context, code, clientID string) *app_error.AppError {
	code = entity.NormalizeRoomCode(code)
	if err := s.validateMembership(code, clientID); err != nil {
		return err
	}

	if err := s.RoomRepo.RemoveMember(ctx, code, clientID); err != nil {
		return err
	}
	s.Cache.Delete(ctx, code)
	return nil
}

// Evict drops a cached room, called once the sweeper removed it.
func (s *RoomService) Evict(ctx context.Context, code string) {
	s.Cache.Delete(ctx, entity.NormalizeRoomCode(code))
}

func (s *RoomService) validateMembership(code, clientID string) *app_error.AppError {
	if code == "" {
		return app_error.NewValidationError("Room ID is required.", "roomId")
	}
	if clientID == "" {
		return app_error.NewValidationError("Client ID is required.", "clientId")
	}
	return nil
}
