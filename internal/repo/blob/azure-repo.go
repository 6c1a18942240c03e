package blob_repo

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	"github.com/kellalakshmisrharsha/study-sphere-backend/state"
	"github.com/rs/zerolog/log"
)

type AzureBlobRepo struct {
	client    *azblob.Client
	container string
}

func NewBlobRepo(appState *state.AppState) BlobRepoContract {
	return NewAzureBlobRepo(appState.Blob, appState.Container)
}

func NewAzureBlobRepo(client *azblob.Client, container string) *AzureBlobRepo {
	return &AzureBlobRepo{client: client, container: container}
}

func (r *AzureBlobRepo) Put(ctx context.Context, name string, body io.Reader, contentType string) (string, *app_error.AppError) {
	_, err := r.client.UploadStream(ctx, r.container, name, body, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		log.Error().Err(err).Str("blob", name).Msg("azure upload failed")
		return "", app_error.NewBlobError("failed to upload to blob storage", name, err)
	}

	url := r.client.ServiceClient().NewContainerClient(r.container).NewBlobClient(name).URL()
	return url, nil
}

func (r *AzureBlobRepo) Delete(ctx context.Context, name string) *app_error.AppError {
	_, err := r.client.DeleteBlob(ctx, r.container, name, nil)
	return mapDeleteError(name, err)
}

func mapDeleteError(name string, err error) *app_error.AppError {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return app_error.NewBlobNotFoundError(name, err)
	}
	return app_error.NewBlobError("failed to delete blob", name, err)
}

func isNotFound(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return true
	}
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
