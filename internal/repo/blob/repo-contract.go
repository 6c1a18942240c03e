package blob_repo

import (
	"context"
	"io"

	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
)

// BlobRepoContract is the object store holding uploaded files.
// Delete returns an error of kind KindBlobNotFound when the blob is already gone.
type BlobRepoContract interface {
	Put(ctx context.Context, name string, body io.Reader, contentType string) (string, *app_error.AppError)
	Delete(ctx context.Context, name string) *app_error.AppError
}
