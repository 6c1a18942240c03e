package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitBlob_EmptyConnectionString(t *testing.T) {
	client, err := InitBlob(context.Background(), "", "uploads")

	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestInitBlob_MalformedConnectionString(t *testing.T) {
	client, err := InitBlob(context.Background(), "not-a-connection-string", "uploads")

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to create blob client")
}
