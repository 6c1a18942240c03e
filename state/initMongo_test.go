package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitMongo_EmptyURL(t *testing.T) {
	client, err := InitMongo(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "mongo url is empty")
}

func TestInitMongo_InvalidScheme(t *testing.T) {
	client, err := InitMongo(context.Background(), "http://localhost:27017")

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to MongoDB")
}
