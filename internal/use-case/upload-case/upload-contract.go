package upload_service

import (
	"context"
	"io"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
)

type UploadServiceContract interface {
	Upload(ctx context.Context, req chat_dto.UploadRequest, body io.Reader) (*chat_dto.UploadResponse, *app_error.AppError)
}
