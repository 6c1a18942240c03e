package chat_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	"github.com/kellalakshmisrharsha/study-sphere-backend/state"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	messagesCollection = "messages"
	roomsCollection    = "rooms"
	filesCollection    = "files"
)

// NewChatRepo picks the record store that state initialized.
func NewChatRepo(appState *state.AppState) ChatRepoContract {
	if appState.Mongo != nil {
		return NewMongoChatRepo(appState.MongoDB())
	}
	return NewSQLChatRepo(appState.DB)
}

type ChatRepo struct {
	db *mongo.Database
}

func NewMongoChatRepo(db *mongo.Database) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) messages() *mongo.Collection { return r.db.Collection(messagesCollection) }
func (r *ChatRepo) rooms() *mongo.Collection    { return r.db.Collection(roomsCollection) }
func (r *ChatRepo) files() *mongo.Collection    { return r.db.Collection(filesCollection) }

// EnsureIndexes creates the unique room code index and the indexes backing
// the sweeper queries. Safe to call on every start.
func (r *ChatRepo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.rooms().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create room indexes: %w", err)
	}

	if _, err := r.messages().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "expiresAt", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	if _, err := r.files().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "roomId", Value: 1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create file indexes: %w", err)
	}

	log.Info().Msg("mongo indexes ensured")
	return nil
}

// Messages

func (r *ChatRepo) CreateMessage(ctx context.Context, msg *entity.Message) (*entity.Message, *app_error.AppError) {
	if msg.ID == "" {
		msg.ID = bson.NewObjectID().Hex()
	}
	if _, err := r.messages().InsertOne(ctx, msg); err != nil {
		return nil, app_error.NewStoreError("failed to create message", "mongo", err)
	}
	return msg, nil
}

func (r *ChatRepo) FindMessagesByRoom(ctx context.Context, roomID string) ([]*entity.Message, *app_error.AppError) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	return findAll[entity.Message](ctx, r.messages(), bson.M{"roomId": roomID}, opts)
}

func (r *ChatRepo) FindExpiredFileMessages(ctx context.Context, now time.Time) ([]*entity.Message, *app_error.AppError) {
	filter := bson.M{
		"type":      entity.MessageTypeFile,
		"expiresAt": bson.M{"$lte": now},
	}
	return findAll[entity.Message](ctx, r.messages(), filter)
}

func (r *ChatRepo) DeleteMessage(ctx context.Context, msg *entity.Message) *app_error.AppError {
	if _, err := r.messages().DeleteOne(ctx, bson.M{"_id": msg.ID}); err != nil {
		return app_error.NewStoreError("failed to delete message", "mongo", err)
	}
	return nil
}

// Rooms

func (r *ChatRepo) CreateRoom(ctx context.Context, room *entity.Room) (*entity.Room, *app_error.AppError) {
	if room.Members == nil {
		// stored as [] so the $size query of the empty-room pass matches
		room.Members = []string{}
	}
	if _, err := r.rooms().InsertOne(ctx, room); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, app_error.NewConflictError(fmt.Sprintf("room %s already exists", room.Code), "code")
		}
		return nil, app_error.NewStoreError("failed to create room", "mongo", err)
	}
	return room, nil
}

func (r *ChatRepo) FindRoomByCode(ctx context.Context, code string) (*entity.Room, *app_error.AppError) {
	var room entity.Room
	if err := r.rooms().FindOne(ctx, bson.M{"code": code}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NewNotFoundError("room not found", "code")
		}
		return nil, app_error.NewStoreError("failed to fetch room", "mongo", err)
	}
	return &room, nil
}

func (r *ChatRepo) AddMember(ctx context.Context, code, clientID string) *app_error.AppError {
	res, err := r.rooms().UpdateOne(ctx, bson.M{"code": code}, bson.M{"$addToSet": bson.M{"members": clientID}})
	if err != nil {
		return app_error.NewStoreError("failed to add room member", "mongo", err)
	}
	if res.MatchedCount == 0 {
		return app_error.NewNotFoundError("room not found", "code")
	}
	return nil
}

func (r *ChatRepo) RemoveMember(ctx context.Context, code, clientID string) *app_error.AppError {
	res, err := r.rooms().UpdateOne(ctx, bson.M{"code": code}, bson.M{"$pull": bson.M{"members": clientID}})
	if err != nil {
		return app_error.NewStoreError("failed to remove room member", "mongo", err)
	}
	if res.MatchedCount == 0 {
		return app_error.NewNotFoundError("room not found", "code")
	}
	return nil
}

func (r *ChatRepo) FindExpiredRooms(ctx context.Context, now time.Time) ([]*entity.Room, *app_error.AppError) {
	return findAll[entity.Room](ctx, r.rooms(), bson.M{"expiresAt": bson.M{"$lte": now}})
}

var noMembers = []bson.M{
	{"members": bson.M{"$size": 0}},
	{"members": nil},
}

func (r *ChatRepo) FindEmptyRooms(ctx context.Context, createdBefore time.Time) ([]*entity.Room, *app_error.AppError) {
	filter := bson.M{
		"createdAt": bson.M{"$lte": createdBefore},
		"$or":       noMembers,
	}
	return findAll[entity.Room](ctx, r.rooms(), filter)
}

func (r *ChatRepo) DeleteEmptyRoom(ctx context.Context, room *entity.Room) (bool, *app_error.AppError) {
	res, err := r.rooms().DeleteOne(ctx, bson.M{"code": room.Code, "$or": noMembers})
	if err != nil {
		return false, app_error.NewStoreError("failed to delete room", "mongo", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *ChatRepo) DeleteRoom(ctx context.Context, room *entity.Room) *app_error.AppError {
	if _, err := r.rooms().DeleteOne(ctx, bson.M{"code": room.Code}); err != nil {
		return app_error.NewStoreError("failed to delete room", "mongo", err)
	}
	return nil
}

// Files

func (r *ChatRepo) CreateFile(ctx context.Context, file *entity.File) (*entity.File, *app_error.AppError) {
	if file.ID == "" {
		file.ID = bson.NewObjectID().Hex()
	}
	if _, err := r.files().InsertOne(ctx, file); err != nil {
		return nil, app_error.NewStoreError("failed to create file record", "mongo", err)
	}
	return file, nil
}

func (r *ChatRepo) FindFilesByRoom(ctx context.Context, roomID string) ([]*entity.File, *app_error.AppError) {
	return findAll[entity.File](ctx, r.files(), bson.M{"roomId": roomID})
}

func (r *ChatRepo) FindExpiredFiles(ctx context.Context, now time.Time) ([]*entity.File, *app_error.AppError) {
	return findAll[entity.File](ctx, r.files(), bson.M{"expiresAt": bson.M{"$lte": now}})
}

func (r *ChatRepo) DeleteFile(ctx context.Context, file *entity.File) *app_error.AppError {
	if _, err := r.files().DeleteOne(ctx, bson.M{"_id": file.ID}); err != nil {
		return app_error.NewStoreError("failed to delete file record", "mongo", err)
	}
	return nil
}

func findAll[T any](ctx context.Context, collection *mongo.Collection, filter any, opts ...options.Lister[options.FindOptions]) ([]*T, *app_error.AppError) {
	cur, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, app_error.NewStoreError(fmt.Sprintf("failed to query %s", collection.Name()), "mongo", err)
	}
	defer cur.Close(ctx)

	var docs []*T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, app_error.NewStoreError(fmt.Sprintf("failed to decode %s", collection.Name()), "mongo", err)
	}
	return docs, nil
}
