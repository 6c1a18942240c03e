package chat_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLChatRepo stores the same three entities in a relational database.
// Room.Members lives in the room_members table.
type SQLChatRepo struct {
	db *gorm.DB
}

func NewSQLChatRepo(db *gorm.DB) *SQLChatRepo {
	return &SQLChatRepo{db: db}
}

func (r *SQLChatRepo) AutoMigrate() error {
	if err := r.db.AutoMigrate(&entity.Room{}, &entity.RoomMember{}, &entity.Message{}, &entity.File{}); err != nil {
		return fmt.Errorf("failed to migrate chat tables: %w", err)
	}
	return nil
}

// Messages

func (r *SQLChatRepo) CreateMessage(ctx context.Context, msg *entity.Message) (*entity.Message, *app_error.AppError) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, app_error.NewStoreError("failed to create message", "db-error", err)
	}
	return msg, nil
}

func (r *SQLChatRepo) FindMessagesByRoom(ctx context.Context, roomID string) ([]*entity.Message, *app_error.AppError) {
	var messages []*entity.Message
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).Find(&messages).Error; err != nil {
		return nil, app_error.NewStoreError("failed to fetch messages", "db-error", err)
	}
	return messages, nil
}

func (r *SQLChatRepo) FindExpiredFileMessages(ctx context.Context, now time.Time) ([]*entity.Message, *app_error.AppError) {
	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Where("type = ? AND expires_at IS NOT NULL AND expires_at <= ?", entity.MessageTypeFile, now).
		Find(&messages).Error
	if err != nil {
		return nil, app_error.NewStoreError("failed to query expired file messages", "db-error", err)
	}
	return messages, nil
}

func (r *SQLChatRepo) DeleteMessage(ctx context.Context, msg *entity.Message) *app_error.AppError {
	if err := r.db.WithContext(ctx).Delete(&entity.Message{}, "id = ?", msg.ID).Error; err != nil {
		return app_error.NewStoreError("failed to delete message", "db-error", err)
	}
	return nil
}

// Rooms

func (r *SQLChatRepo) CreateRoom(ctx context.Context, room *entity.Room) (*entity.Room, *app_error.AppError) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		for _, member := range room.Members {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&entity.RoomMember{RoomCode: room.Code, ClientID: member}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, app_error.NewConflictError(fmt.Sprintf("room %s already exists", room.Code), "code")
		}
		return nil, app_error.NewStoreError("failed to create room", "db-error", err)
	}
	if room.Members == nil {
		room.Members = []string{}
	}
	return room, nil
}

func (r *SQLChatRepo) FindRoomByCode(ctx context.Context, code string) (*entity.Room, *app_error.AppError) {
	var room entity.Room
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NewNotFoundError("room not found", "code")
		}
		return nil, app_error.NewStoreError("failed to fetch room", "db-error", err)
	}

	rooms := []*entity.Room{&room}
	if err := r.loadMembers(ctx, rooms); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *SQLChatRepo) AddMember(ctx context.Context, code, clientID string) *app_error.AppError {
	if err := r.ensureRoom(ctx, code); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.RoomMember{RoomCode: code, ClientID: clientID}).Error
	if err != nil {
		return app_error.NewStoreError("failed to add room member", "db-error", err)
	}
	return nil
}

func (r *SQLChatRepo) RemoveMember(ctx context.Context, code, clientID string) *app_error.AppError {
	if err := r.ensureRoom(ctx, code); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Where("room_code = ? AND client_id = ?", code, clientID).
		Delete(&entity.RoomMember{}).Error
	if err != nil {
		return app_error.NewStoreError("failed to remove room member", "db-error", err)
	}
	return nil
}

func (r *SQLChatRepo) FindExpiredRooms(ctx context.Context, now time.Time) ([]*entity.Room, *app_error.AppError) {
	var rooms []*entity.Room
	if err := r.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", now).Find(&rooms).Error; err != nil {
		return nil, app_error.NewStoreError("failed to query expired rooms", "db-error", err)
	}
	if err := r.loadMembers(ctx, rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *SQLChatRepo) FindEmptyRooms(ctx context.Context, createdBefore time.Time) ([]*entity.Room, *app_error.AppError) {
	var rooms []*entity.Room
	err := r.db.WithContext(ctx).
		Where("created_at <= ?", createdBefore).
		Where("NOT EXISTS (SELECT 1 FROM room_members rm WHERE rm.room_code = rooms.code)").
		Find(&rooms).Error
	if err != nil {
		return nil, app_error.NewStoreError("failed to query empty rooms", "db-error", err)
	}
	for _, room := range rooms {
		room.Members = []string{}
	}
	return rooms, nil
}

func (r *SQLChatRepo) DeleteRoom(ctx context.Context, room *entity.Room) *app_error.AppError {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_code = ?", room.Code).Delete(&entity.RoomMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Room{}, "code = ?", room.Code).Error
	})
	if err != nil {
		return app_error.NewStoreError("failed to delete room", "db-error", err)
	}
	return nil
}

func (r *SQLChatRepo) DeleteEmptyRoom(ctx context.Context, room *entity.Room) (bool, *app_error.AppError) {
	res := r.db.WithContext(ctx).
		Where("code = ?", room.Code).
		Where("NOT EXISTS (SELECT 1 FROM room_members rm WHERE rm.room_code = rooms.code)").
		Delete(&entity.Room{})
	if res.Error != nil {
		return false, app_error.NewStoreError("failed to delete room", "db-error", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Files

func (r *SQLChatRepo) CreateFile(ctx context.Context, file *entity.File) (*entity.File, *app_error.AppError) {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return nil, app_error.NewStoreError("failed to create file record", "db-error", err)
	}
	return file, nil
}

func (r *SQLChatRepo) FindFilesByRoom(ctx context.Context, roomID string) ([]*entity.File, *app_error.AppError) {
	var files []*entity.File
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Find(&files).Error; err != nil {
		return nil, app_error.NewStoreError("failed to fetch files", "db-error", err)
	}
	return files, nil
}

func (r *SQLChatRepo) FindExpiredFiles(ctx context.Context, now time.Time) ([]*entity.File, *app_error.AppError) {
	var files []*entity.File
	if err := r.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", now).Find(&files).Error; err != nil {
		return nil, app_error.NewStoreError("failed to query expired files", "db-error", err)
	}
	return files, nil
}

func (r *SQLChatRepo) DeleteFile(ctx context.Context, file *entity.File) *app_error.AppError {
	if err := r.db.WithContext(ctx).Delete(&entity.File{}, "id = ?", file.ID).Error; err != nil {
		return app_error.NewStoreError("failed to delete file record", "db-error", err)
	}
	return nil
}

func (r *SQLChatRepo) ensureRoom(ctx context.Context, code string) *app_error.AppError {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Room{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return app_error.NewStoreError("failed to fetch room", "db-error", err)
	}
	if count == 0 {
		return app_error.NewNotFoundError("room not found", "code")
	}
	return nil
}

func (r *SQLChatRepo) loadMembers(ctx context.Context, rooms []*entity.Room) *app_error.AppError {
	if len(rooms) == 0 {
		return nil
	}

	codes := make([]string, 0, len(rooms))
	byCode := make(map[string]*entity.Room, len(rooms))
	for _, room := range rooms {
		room.Members = []string{}
		codes = append(codes, room.Code)
		byCode[room.Code] = room
	}

	var members []entity.RoomMember
	if err := r.db.WithContext(ctx).Where("room_code IN ?", codes).Order("id asc").Find(&members).Error; err != nil {
		return app_error.NewStoreError("failed to fetch room members", "db-error", err)
	}
	for _, m := range members {
		if room, ok := byCode[m.RoomCode]; ok {
			room.Members = append(room.Members, m.ClientID)
		}
	}
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
