package state

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitPostgres_Integration_Success(t *testing.T) {
	testDsn := os.Getenv("CHATAPP_TEST_POSTGRES_URL")
	if testDsn == "" {
		t.Skip("CHATAPP_TEST_POSTGRES_URL not set")
	}

	db, sqlDB, err := InitPostgres(testDsn)

	require.NoError(t, err)
	require.NotNil(t, db)
	require.NotNil(t, sqlDB)
	defer sqlDB.Close()

	stats := sqlDB.Stats()
	assert.Equal(t, 100, stats.MaxOpenConnections)

	var result int
	err = db.Raw("SELECT 1").Scan(&result).Error
	assert.NoError(t, err)
	assert.Equal(t, 1, result)
}

func TestInitPostgres_InvalidDSN(t *testing.T) {
	db, sqlDB, err := InitPostgres("invalid-dsn-format")

	assert.Error(t, err, "InitPostgres should return error with invalid_DSN")
	assert.Nil(t, db, "GORM DB should be nil on error")
	assert.Nil(t, sqlDB, "SQL DB should be nil on error")
	assert.Contains(t, err.Error(), "failed to connect")
}
