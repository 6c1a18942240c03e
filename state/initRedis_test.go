package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis_Success(t *testing.T) {
	mockRedis := miniredis.RunT(t)

	client, err := InitRedis(mockRedis.Addr(), "", 0)

	require.NoError(t, err, "InitRedis should not return an error")
	require.NotNil(t, client, "Redis client should not be nil")
	defer client.Close()

	pong := client.Ping(context.Background())
	assert.NoError(t, pong.Err(), "Should be able to ping Redis")
}

func TestInitRedis_WithPassword(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	mockRedis.RequireAuth("testpassword")

	client, err := InitRedis(mockRedis.Addr(), "testpassword", 0)

	require.NoError(t, err, "InitRedis should work with correct password")
	require.NotNil(t, client, "Redis client should not be nil")
	client.Close()
}

func TestInitRedis_WithWrongPassword(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	mockRedis.RequireAuth("correctPassword")

	client, err := InitRedis(mockRedis.Addr(), "wrongpassword", 0)

	assert.Error(t, err, "InitRedis should return error with wrong password")
	assert.Nil(t, client, "Redis client should be nil on error")
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestInitRedis_ConnectionRefused(t *testing.T) {
	client, err := InitRedis("127.0.0.1:1", "", 0)

	assert.Error(t, err, "InitRedis should return error when nothing listens")
	assert.Nil(t, client)
}

func TestInitRedis_ClientConfiguration(t *testing.T) {
	mockRedis := miniredis.RunT(t)

	client, err := InitRedis(mockRedis.Addr(), "", 5)
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	ctx := context.Background()
	err = client.Set(ctx, "testkey", "testvalue", time.Minute).Err()
	assert.NoError(t, err, "Should be able to set key in specified DB")

	val, err := client.Get(ctx, "testkey").Result()
	assert.NoError(t, err)
	assert.Equal(t, "testvalue", val)

	mockRedis.Select(5)
	assert.True(t, mockRedis.Exists("testkey"), "key should live in DB 5")
}

func BenchmarkInitRedis(b *testing.B) {
	mockRedis := miniredis.RunT(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		client, err := InitRedis(mockRedis.Addr(), "", 0)
		if err != nil {
			b.Fatal(err)
		}
		client.Close()
	}
}
