package upload_service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	blob_repo "github.com/kellalakshmisrharsha/study-sphere-backend/internal/repo/blob"
	chat_repo "github.com/kellalakshmisrharsha/study-sphere-backend/internal/repo/chat"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/utils"
	"github.com/rs/zerolog/log"
)

const defaultContentType = "application/octet-stream"

type UploadService struct {
	BlobRepo       blob_repo.BlobRepoContract
	FileRepo       chat_repo.FileRepoContract
	Validate       *validator.Validate
	MaxExpiryHours int

	now func() time.Time
}

func NewUploadService(blobRepo blob_repo.BlobRepoContract, fileRepo chat_repo.FileRepoContract, maxExpiryHours int) *UploadService {
	return &UploadService{
		BlobRepo:       blobRepo,
		FileRepo:       fileRepo,
		Validate:       utils.NewValidator(),
		MaxExpiryHours: maxExpiryHours,
		now:            time.Now,
	}
}

// Upload stores the blob and its File record. The returned fileName is the
// blob name, which file messages carry so the sweeper can delete the blob.
func (s *UploadService) Upload(ctx context.Context, req chat_dto.UploadRequest, body io.Reader) (*chat_dto.UploadResponse, *app_error.AppError) {
	req.RoomID = entity.NormalizeRoomCode(req.RoomID)
	req.OriginalName = baseName(req.OriginalName)
	if err := utils.ValidateStruct(s.Validate, req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	blobName := fmt.Sprintf("%d-%s", now.UnixMilli(), req.OriginalName)
	contentType := detectContentType(req.ContentType, req.OriginalName)
	hours := entity.ClampExpiryHours(req.ExpiryHours, s.MaxExpiryHours)

	url, err := s.BlobRepo.Put(ctx, blobName, body, contentType)
	if err != nil {
		return nil, err
	}

	file := entity.NewFile(blobName, req.RoomID, url, now, hours)
	saved, err := s.FileRepo.CreateFile(ctx, file)
	if err != nil {
		log.Error().Err(err).Str("blob", blobName).Msg("failed to record upload, removing blob")
		if delErr := s.BlobRepo.Delete(ctx, blobName); delErr != nil && !delErr.Is(app_error.KindBlobNotFound) {
			log.Warn().Err(delErr).Str("blob", blobName).Msg("orphan blob left behind")
		}
		return nil, err
	}

	log.Info().Str("blob", blobName).Str("roomID", req.RoomID).Int("expiryHours", hours).Msg("file uploaded")
	return &chat_dto.UploadResponse{
		FileURL:      saved.URL,
		FileName:     saved.BlobName,
		FileType:     contentType,
		OriginalName: req.OriginalName,
		Size:         req.Size,
		ExpiresAt:    saved.ExpiresAt,
	}, nil
}

func baseName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

func detectContentType(declared, name string) string {
	if declared != "" && declared != defaultContentType {
		return declared
	}
	if byExt := mime.TypeByExtension(path.Ext(name)); byExt != "" {
		return byExt
	}
	if declared != "" {
		return declared
	}
	return defaultContentType
}
