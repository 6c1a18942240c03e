// Package sweeper garbage-collects expired file messages, expired File
// records, expired rooms and empty rooms. A sweep is best-effort per entity:
// a failure is logged, counted and left for the next sweep.
package sweeper

import (
	"context"
	"time"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	blob_repo "github.com/kellalakshmisrharsha/study-sphere-backend/internal/repo/blob"
	chat_repo "github.com/kellalakshmisrharsha/study-sphere-backend/internal/repo/chat"
	"github.com/rs/zerolog/log"
)

const (
	ReasonExpired = "expired"
	ReasonEmpty   = "empty"
)

type Options struct {
	ExpiredRooms   bool
	EmptyRooms     bool
	EmptyRoomGrace time.Duration
}

type SweepReport struct {
	StartedAt        time.Time     `json:"startedAt"`
	Duration         time.Duration `json:"duration"`
	ExpiredMessages  int           `json:"expiredMessages"`
	ExpiredFiles     int           `json:"expiredFiles"`
	ExpiredRooms     int           `json:"expiredRooms"`
	CascadedMessages int           `json:"cascadedMessages"`
	CascadedFiles    int           `json:"cascadedFiles"`
	EmptyRooms       int           `json:"emptyRooms"`
	SkippedRooms     int           `json:"skippedRooms"`
	Failures         int           `json:"failures"`
	Aborted          bool          `json:"aborted"`
}

// RoomDeletedFunc is called after a room record is gone.
type RoomDeletedFunc func(ctx context.Context, room *entity.Room, reason string)

type Sweeper struct {
	Repo          chat_repo.ChatRepoContract
	Blobs         blob_repo.BlobRepoContract
	Opts          Options
	OnRoomDeleted RoomDeletedFunc

	now func() time.Time
}

func NewSweeper(repo chat_repo.ChatRepoContract, blobs blob_repo.BlobRepoContract, opts Options) *Sweeper {
	return &Sweeper{
		Repo:  repo,
		Blobs: blobs,
		Opts:  opts,
		now:   time.Now,
	}
}

// Sweep runs every enabled pass once, in order. It stops early only when
// ctx is done.
func (s *Sweeper) Sweep(ctx context.Context) SweepReport {
	now := s.now().UTC()
	report := SweepReport{StartedAt: now}
	start := time.Now()

	passes := []func(context.Context, time.Time, *SweepReport){
		s.sweepExpiredMessages,
		s.sweepExpiredFiles,
	}
	if s.Opts.ExpiredRooms {
		passes = append(passes, s.sweepExpiredRooms)
	}
	if s.Opts.EmptyRooms {
		passes = append(passes, s.sweepEmptyRooms)
	}

	for _, pass := range passes {
		if ctx.Err() != nil {
			report.Aborted = true
			break
		}
		pass(ctx, now, &report)
	}

	report.Duration = time.Since(start)
	log.Info().
		Int("expiredMessages", report.ExpiredMessages).
		Int("expiredFiles", report.ExpiredFiles).
		Int("expiredRooms", report.ExpiredRooms).
		Int("emptyRooms", report.EmptyRooms).
		Int("failures", report.Failures).
		Dur("took", report.Duration).
		Msg("sweep finished")
	return report
}

// deleteBlob treats a missing blob as already deleted.
func (s *Sweeper) deleteBlob(ctx context.Context, name string) *app_error.AppError {
	if name == "" {
		return nil
	}
	err := s.Blobs.Delete(ctx, name)
	if err.Is(app_error.KindBlobNotFound) {
		log.Debug().Str("blob", name).Msg("blob already gone")
		return nil
	}
	return err
}

func (s *Sweeper) sweepExpiredMessages(ctx context.Context, now time.Time, report *SweepReport) {
	messages, err := s.Repo.FindExpiredFileMessages(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to query expired file messages")
		report.Failures++
		return
	}

	for _, msg := range messages {
		if ctx.Err() != nil {
			report.Aborted = true
			return
		}

		blobName := msg.BlobName()
		if blobName == "" {
			log.Warn().Str("messageID", msg.ID).Msg("expired file message has no blob name")
		}
		if err := s.deleteBlob(ctx, blobName); err != nil {
			log.Error().Err(err).Str("messageID", msg.ID).Str("blob", blobName).Msg("failed to delete blob, keeping message for next sweep")
			report.Failures++
			continue
		}

		if err := s.Repo.DeleteMessage(ctx, msg); err != nil {
			log.Error().Err(err).Str("messageID", msg.ID).Msg("failed to delete expired message")
			report.Failures++
			continue
		}
		report.ExpiredMessages++
	}
}

func (s *Sweeper) sweepExpiredFiles(ctx context.Context, now time.Time, report *SweepReport) {
	files, err := s.Repo.FindExpiredFiles(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to query expired files")
		report.Failures++
		return
	}

	for _, file := range files {
		if ctx.Err() != nil {
			report.Aborted = true
			return
		}

		if err := s.deleteBlob(ctx, file.BlobName); err != nil {
			log.Error().Err(err).Str("fileID", file.ID).Str("blob", file.BlobName).Msg("failed to delete blob, keeping file record for next sweep")
			report.Failures++
			continue
		}

		if err := s.Repo.DeleteFile(ctx, file); err != nil {
			log.Error().Err(err).Str("fileID", file.ID).Msg("failed to delete expired file record")
			report.Failures++
			continue
		}
		report.ExpiredFiles++
	}
}

func (s *Sweeper) sweepExpiredRooms(ctx context.Context, now time.Time, report *SweepReport) {
	rooms, err := s.Repo.FindExpiredRooms(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to query expired rooms")
		report.Failures++
		return
	}

	for _, room := range rooms {
		if ctx.Err() != nil {
			report.Aborted = true
			return
		}
		if !s.cascadeRoom(ctx, room, report) {
			continue
		}
		s.deleteRoom(ctx, room, ReasonExpired, report)
	}
}

// cascadeRoom removes the room's messages, files and blobs. Individual
// failures do not stop the room from being deleted; it returns false only
// when the dependents could not be listed.
func (s *Sweeper) cascadeRoom(ctx context.Context, room *entity.Room, report *SweepReport) bool {
	messages, err := s.Repo.FindMessagesByRoom(ctx, room.Code)
	if err != nil {
		log.Error().Err(err).Str("roomID", room.Code).Msg("failed to list room messages, skipping room")
		report.Failures++
		return false
	}
	files, err := s.Repo.FindFilesByRoom(ctx, room.Code)
	if err != nil {
		log.Error().Err(err).Str("roomID", room.Code).Msg("failed to list room files, skipping room")
		report.Failures++
		return false
	}

	for _, msg := range messages {
		if msg.IsFile() {
			if err := s.deleteBlob(ctx, msg.BlobName()); err != nil {
				log.Warn().Err(err).Str("roomID", room.Code).Str("blob", msg.BlobName()).Msg("cascade: blob delete failed")
				report.Failures++
			}
		}
		if err := s.Repo.DeleteMessage(ctx, msg); err != nil {
			log.Warn().Err(err).Str("roomID", room.Code).Str("messageID", msg.ID).Msg("cascade: message delete failed")
			report.Failures++
			continue
		}
		report.CascadedMessages++
	}

	for _, file := range files {
		if err := s.deleteBlob(ctx, file.BlobName); err != nil {
			log.Warn().Err(err).Str("roomID", room.Code).Str("blob", file.BlobName).Msg("cascade: blob delete failed")
			report.Failures++
		}
		if err := s.Repo.DeleteFile(ctx, file); err != nil {
			log.Warn().Err(err).Str("roomID", room.Code).Str("fileID", file.ID).Msg("cascade: file record delete failed")
			report.Failures++
			continue
		}
		report.CascadedFiles++
	}
	return true
}

// sweepEmptyRooms leaves the room's messages and files to the expiry passes.
func (s *Sweeper) sweepEmptyRooms(ctx context.Context, now time.Time, report *SweepReport) {
	rooms, err := s.Repo.FindEmptyRooms(ctx, now.Add(-s.Opts.EmptyRoomGrace))
	if err != nil {
		log.Error().Err(err).Msg("failed to query empty rooms")
		report.Failures++
		return
	}

	for _, room := range rooms {
		if ctx.Err() != nil {
			report.Aborted = true
			return
		}
		deleted, err := s.Repo.DeleteEmptyRoom(ctx, room)
		if err != nil {
			log.Error().Err(err).Str("roomID", room.Code).Str("reason", ReasonEmpty).Msg("failed to delete room")
			report.Failures++
			continue
		}
		if !deleted {
			log.Debug().Str("roomID", room.Code).Msg("room is no longer empty, skipped")
			report.SkippedRooms++
			continue
		}
		s.roomDeleted(ctx, room, ReasonEmpty, report)
	}
}

func (s *Sweeper) deleteRoom(ctx context.Context, room *entity.Room, reason string, report *SweepReport) {
	if err := s.Repo.DeleteRoom(ctx, room); err != nil {
		log.Error().Err(err).Str("roomID", room.Code).Str("reason", reason).Msg("failed to delete room")
		report.Failures++
		return
	}
	s.roomDeleted(ctx, room, reason, report)
}

func (s *Sweeper) roomDeleted(ctx context.Context, room *entity.Room, reason string, report *SweepReport) {
	switch reason {
	case ReasonExpired:
		report.ExpiredRooms++
	case ReasonEmpty:
		report.EmptyRooms++
	}
	log.Info().Str("roomID", room.Code).Str("reason", reason).Msg("room deleted")

	if s.OnRoomDeleted != nil {
		s.OnRoomDeleted(ctx, room, reason)
	}
}
