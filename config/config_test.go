package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
APP:
  NAME: test-sphere
  PORT: ":5050"
DATABASE:
  DRIVER: postgres
  POSTGRES:
    URL: "postgres://localhost/test"
SWEEPER:
  INTERVAL: 15m
  EMPTY_ROOMS: false
  ROOM_TTL_HOURS: 48
`

func TestLoadConfigFrom_File(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "application.yaml"), []byte(testConfigYAML), 0644)
	require.NoError(t, err)

	err = LoadConfigFrom(dir)
	require.NoError(t, err)
	require.NotNil(t, Conf)

	assert.Equal(t, "test-sphere", Conf.App.Name)
	assert.Equal(t, ":5050", Conf.App.Port)
	assert.Equal(t, DriverPostgres, Conf.DATABASE.Driver)
	assert.Equal(t, "postgres://localhost/test", Conf.DATABASE.Postgres.DSN)
	assert.Equal(t, 15*time.Minute, Conf.SWEEPER.Interval)
	assert.False(t, Conf.SWEEPER.EmptyRooms)
	assert.Equal(t, 48, Conf.SWEEPER.RoomTTLHours)

	// untouched keys fall back to defaults
	assert.True(t, Conf.SWEEPER.ExpiredRooms)
	assert.Equal(t, "uploads", Conf.STORAGE.Container)
	assert.Equal(t, 720, Conf.STORAGE.MaxExpiryHours)
	assert.Equal(t, 30*time.Minute, Conf.SWEEPER.LeaseTTL)
}

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, Conf.DATABASE.Driver)
	assert.Equal(t, time.Hour, Conf.SWEEPER.Interval)
	assert.Equal(t, "study_sphere", Conf.DATABASE.Mongo.Name)
	assert.Equal(t, int64(100<<20), Conf.STORAGE.MaxUploadBytes)
}

func TestLoadConfigFrom_EnvOverride(t *testing.T) {
	t.Setenv("CHATAPP_SWEEPER_INTERVAL", "5m")
	t.Setenv("CHATAPP_STORAGE_CONTAINER", "chat-files")

	err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, Conf.SWEEPER.Interval)
	assert.Equal(t, "chat-files", Conf.STORAGE.Container)
}

func TestLoadConfigFrom_UnsupportedDriver(t *testing.T) {
	t.Setenv("CHATAPP_DATABASE_DRIVER", "cassandra")

	err := LoadConfigFrom(t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestLoadConfigFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "application.yaml"), []byte("APP: [unterminated"), 0644)
	require.NoError(t, err)

	err = LoadConfigFrom(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
