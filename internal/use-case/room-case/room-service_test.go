package room_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/mocks"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, ttl time.Duration) (*RoomService, *mocks.ChatRepo) {
	t.Helper()
	repo := mocks.NewChatRepo()
	svc := NewRoomService(repo, utils.NewCache[entity.Room](nil, roomCachePrefix, time.Minute), ttl)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func TestCreateRoom_CreatorIsFirstMember(t *testing.T) {
	svc, _ := newTestService(t, 0)

	room, appErr := svc.CreateRoom(context.Background(), chat_dto.CreateRoomRequest{Code: " ab12cd ", Creator: "alice"})
	assert.Nil(t, appErr)
	require.NotNil(t, room)
	assert.Equal(t, "AB12CD", room.Code)
	assert.Equal(t, []string{"alice"}, room.Members)
	assert.Equal(t, fixedNow, room.CreatedAt)
	assert.Nil(t, room.ExpiresAt)

	_, appErr = svc.CreateRoom(context.Background(), chat_dto.CreateRoomRequest{Code: "AB12CD", Creator: "bob"})
	require.NotNil(t, appErr)
	assert.True(t, appErr.Is(app_error.KindConflict))
}

func TestCreateRoom_TTL(t *testing.T) {
	svc, _ := newTestService(t, 24*time.Hour)

	room, appErr := svc.CreateRoom(context.Background(), chat_dto.CreateRoomRequest{Code: "AB12CD", Creator: "alice"})
	assert.Nil(t, appErr)
	require.NotNil(t, room.ExpiresAt)
	assert.Equal(t, fixedNow.Add(24*time.Hour), *room.ExpiresAt)
}

func TestCreateRoom_GeneratedCode(t *testing.T) {
	svc, _ := newTestService(t, 0)

	room, appErr := svc.CreateRoom(context.Background(), chat_dto.CreateRoomRequest{Creator: "alice"})
	assert.Nil(t, appErr)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, room.Code)
}

func TestCreateRoom_GeneratedCodeRetriesOnCollision(t *testing.T) {
	svc, repo := newTestService(t, 0)
	_, appErr := repo.CreateRoom(context.Background(), &entity.Room{Code: "TAKEN1", Creator: "x"})
	assert.Nil(t, appErr)

	codes := []string{"TAKEN1", "FRESH1"}
	svc.newCode = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	room, appErr := svc.CreateRoom(context.Background(), chat_dto.CreateRoomRequest{Creator: "alice"})
	assert.Nil(t, appErr)
	assert.Equal(t, "FRESH1", room.Code)
}

func TestCreateRoom_GeneratorFailure(t *testing.T) {
	svc, _ := newTestService(t, 0)
	svc.newCode = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, appErr := svc.CreateRoom(context.Background(), chat_dto.CreateRoomRequest{Creator: "alice"})
	require.NotNil(t, appErr)
	assert.Equal(t, "code", appErr.Field)
}

func TestCreateRoom_Validation(t *testing.T) {
	svc, _ := newTestService(t, 0)

	_, appErr := svc.CreateRoom(context.Background(), chat_dto.CreateRoomRequest{Code: "AB12CD"})
	require.NotNil(t, appErr)
	assert.Equal(t, "Creator is required.", appErr.Message)

	_, appErr = svc.CreateRoom(context.Background(), chat_dto.CreateRoomRequest{Code: "AB-12", Creator: "alice"})
	require.NotNil(t, appErr)
	assert.Equal(t, "Room code must be alphanumeric.", appErr.Message)
}

func TestJoinLeave_Idempotent(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	_, appErr := svc.CreateRoom(ctx, chat_dto.CreateRoomRequest{Code: "AB12CD", Creator: "alice"})
	assert.Nil(t, appErr)

	room, appErr := svc.Join(ctx, "ab12cd", "bob")
	assert.Nil(t, appErr)
	assert.Equal(t, []string{"alice", "bob"}, room.Members)

	room, appErr = svc.Join(ctx, "AB12CD", "bob")
	assert.Nil(t, appErr)
	assert.Equal(t, []string{"alice", "bob"}, room.Members)

	assert.Nil(t, svc.Leave(ctx, "AB12CD", "carol"))
	assert.Nil(t, svc.Leave(ctx, "AB12CD", "alice"))

	room, appErr = svc.GetRoom(ctx, "AB12CD")
	assert.Nil(t, appErr)
	assert.Equal(t, []string{"bob"}, room.Members)
}

func TestJoin_UnknownRoom(t *testing.T) {
	svc, _ := newTestService(t, 0)

	_, appErr := svc.Join(context.Background(), "NOPE00", "bob")
	require.NotNil(t, appErr)
	assert.True(t, appErr.Is(app_error.KindNotFound))

	appErr = svc.Leave(context.Background(), "", "bob")
	require.NotNil(t, appErr)
	assert.True(t, appErr.Is(app_error.KindValidation))

	_, appErr = svc.Join(context.Background(), "AB12CD", "")
	require.NotNil(t, appErr)
	assert.Equal(t, "clientId", appErr.Field)
}

func TestGetRoom_RedisReadThroughAndEvict(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	repo := mocks.NewChatRepo()
	svc := NewRoomService(repo, utils.NewCache[entity.Room](rdb, roomCachePrefix, time.Minute), 0)
	ctx := context.Background()

	_, appErr := svc.CreateRoom(ctx, chat_dto.CreateRoomRequest{Code: "AB12CD", Creator: "alice"})
	assert.Nil(t, appErr)
	assert.False(t, mr.Exists("room:AB12CD"))

	var lookups int
	repo.OnCall = func(op string) {
		if op == "FindRoomByCode" {
			lookups++
		}
	}

	_, appErr = svc.GetRoom(ctx, "AB12CD")
	assert.Nil(t, appErr)
	_, appErr = svc.GetRoom(ctx, "ab12cd")
	assert.Nil(t, appErr)
	assert.Equal(t, 1, lookups)
	assert.True(t, mr.Exists("room:AB12CD"))

	svc.Evict(ctx, "ab12cd")
	assert.False(t, mr.Exists("room:AB12CD"))

	require.Nil(t, repo.DeleteRoom(ctx, &entity.Room{Code: "AB12CD"}))
	_, appErr = svc.GetRoom(ctx, "AB12CD")
	require.NotNil(t, appErr)
	assert.True(t, appErr.Is(app_error.KindNotFound))
}
