// Package mocks holds in-memory stand-ins for the record store, blob store
// and room broadcaster, with per-call failure injection.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
)

type ChatRepo struct {
	mu       sync.Mutex
	seq      int
	messages []*entity.Message
	rooms    map[string]*entity.Room
	files    []*entity.File

	// Errors keyed by "Op" or "Op:key" (message/file id, room code).
	Errors map[string]*app_error.AppError
	// OnCall runs before every operation, outside the lock.
	OnCall func(op string)
}

func NewChatRepo() *ChatRepo {
	return &ChatRepo{
		rooms:  make(map[string]*entity.Room),
		Errors: make(map[string]*app_error.AppError),
	}
}

func (r *ChatRepo) FailOn(op string, err *app_error.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors[op] = err
}

func (r *ChatRepo) enter(op, key string) *app_error.AppError {
	if r.OnCall != nil {
		r.OnCall(op)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.Errors[op+":"+key]; ok {
		return err
	}
	return r.Errors[op]
}

func (r *ChatRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

// Messages

func (r *ChatRepo) CreateMessage(ctx context.Context, msg *entity.Message) (*entity.Message, *app_error.AppError) {
	if err := r.enter("CreateMessage", msg.RoomID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID == "" {
		msg.ID = r.nextID("msg")
	}
	stored := *msg
	r.messages = append(r.messages, &stored)
	out := stored
	return &out, nil
}

func (r *ChatRepo) FindMessagesByRoom(ctx context.Context, roomID string) ([]*entity.Message, *app_error.AppError) {
	if err := r.enter("FindMessagesByRoom", roomID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.messages {
		if m.RoomID == roomID {
			c := *m
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *ChatRepo) FindExpiredFileMessages(ctx context.Context, now time.Time) ([]*entity.Message, *app_error.AppError) {
	if err := r.enter("FindExpiredFileMessages", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.messages {
		if m.IsFile() && m.IsExpired(now) {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *ChatRepo) DeleteMessage(ctx context.Context, msg *entity.Message) *app_error.AppError {
	if err := r.enter("DeleteMessage", msg.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == msg.ID {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			break
		}
	}
	return nil
}

// Messages returns a snapshot of every stored message.
func (r *ChatRepo) Messages() []*entity.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Message, 0, len(r.messages))
	for _, m := range r.messages {
		c := *m
		out = append(out, &c)
	}
	return out
}

// Rooms

func copyRoom(room *entity.Room) *entity.Room {
	c := *room
	c.Members = append([]string{}, room.Members...)
	return &c
}

func (r *ChatRepo) CreateRoom(ctx context.Context, room *entity.Room) (*entity.Room, *app_error.AppError) {
	if err := r.enter("CreateRoom", room.Code); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.Code]; ok {
		return nil, app_error.NewConflictError(fmt.Sprintf("room %s already exists", room.Code), "code")
	}
	r.rooms[room.Code] = copyRoom(room)
	return copyRoom(room), nil
}

func (r *ChatRepo) FindRoomByCode(ctx context.Context, code string) (*entity.Room, *app_error.AppError) {
	if err := r.enter("FindRoomByCode", code); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return nil, app_error.NewNotFoundError("room not found", "code")
	}
	return copyRoom(room), nil
}

func (r *ChatRepo) AddMember(ctx context.Context, code, clientID string) *app_error.AppError {
	if err := r.enter("AddMember", code); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return app_error.NewNotFoundError("room not found", "code")
	}
	if !room.HasMember(clientID) {
		room.Members = append(room.Members, clientID)
	}
	return nil
}

func (r *ChatRepo) RemoveMember(ctx context.Context, code, clientID string) *app_error.AppError {
	if err := r.enter("RemoveMember", code); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return app_error.NewNotFoundError("room not found", "code")
	}
	kept := room.Members[:0]
	for _, m := range room.Members {
		if m != clientID {
			kept = append(kept, m)
		}
	}
	room.Members = kept
	return nil
}

func (r *ChatRepo) FindExpiredRooms(ctx context.Context, now time.Time) ([]*entity.Room, *app_error.AppError) {
	if err := r.enter("FindExpiredRooms", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Room
	for _, room := range r.sortedRooms() {
		if room.IsExpired(now) {
			out = append(out, copyRoom(room))
		}
	}
	return out, nil
}

func (r *ChatRepo) FindEmptyRooms(ctx context.Context, createdBefore time.Time) ([]*entity.Room, *app_error.AppError) {
	if err := r.enter("FindEmptyRooms", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Room
	for _, room := range r.sortedRooms() {
		if len(room.Members) == 0 && !room.CreatedAt.After(createdBefore) {
			out = append(out, copyRoom(room))
		}
	}
	return out, nil
}

func (r *ChatRepo) DeleteRoom(ctx context.Context, room *entity.Room) *app_error.AppError {
	if err := r.enter("DeleteRoom", room.Code); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, room.Code)
	return nil
}

func (r *ChatRepo) DeleteEmptyRoom(ctx context.Context, room *entity.Room) (bool, *app_error.AppError) {
	if err := r.enter("DeleteEmptyRoom", room.Code); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rooms[room.Code]
	if !ok || len(stored.Members) > 0 {
		return false, nil
	}
	delete(r.rooms, room.Code)
	return true, nil
}

func (r *ChatRepo) sortedRooms() []*entity.Room {
	out := make([]*entity.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// HasRoom reports whether a room record is stored.
func (r *ChatRepo) HasRoom(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[code]
	return ok
}

// Files

func (r *ChatRepo) CreateFile(ctx context.Context, file *entity.File) (*entity.File, *app_error.AppError) {
	if err := r.enter("CreateFile", file.RoomID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if file.ID == "" {
		file.ID = r.nextID("file")
	}
	stored := *file
	r.files = append(r.files, &stored)
	out := stored
	return &out, nil
}

func (r *ChatRepo) FindFilesByRoom(ctx context.Context, roomID string) ([]*entity.File, *app_error.AppError) {
	if err := r.enter("FindFilesByRoom", roomID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.File
	for _, f := range r.files {
		if f.RoomID == roomID {
			c := *f
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *ChatRepo) FindExpiredFiles(ctx context.Context, now time.Time) ([]*entity.File, *app_error.AppError) {
	if err := r.enter("FindExpiredFiles", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.File
	for _, f := range r.files {
		if f.ExpiresAt != nil && !f.ExpiresAt.After(now) {
			c := *f
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *ChatRepo) DeleteFile(ctx context.Context, file *entity.File) *app_error.AppError {
	if err := r.enter("DeleteFile", file.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.files {
		if f.ID == file.ID {
			r.files = append(r.files[:i], r.files[i+1:]...)
			break
		}
	}
	return nil
}

// Files returns a snapshot of every stored file record.
func (r *ChatRepo) Files() []*entity.File {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.File, 0, len(r.files))
	for _, f := range r.files {
		c := *f
		out = append(out, &c)
	}
	return out
}
