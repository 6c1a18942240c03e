package state

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/rs/zerolog/log"
)

// InitBlob connects to Azure Blob Storage and makes sure the upload container
// exists with public blob read access.
func InitBlob(ctx context.Context, connectionString, containerName string) (*azblob.Client, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("storage connection string is empty")
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	access := container.PublicAccessTypeBlob
	_, err = client.CreateContainer(ctx, containerName, &azblob.CreateContainerOptions{Access: &access})
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container %s: %w", containerName, err)
	}

	log.Info().Str("container", containerName).Msg("Blob storage initialized successfully")
	return client, nil
}
