package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/renovation-tracker-api/internal/config"
)

func TestConnect_AppliesPoolLimits(t *testing.T) {
	cfg := &config.Config{
		GinMode:           "release",
		DBDriver:          "sqlite",
		SQLitePath:        filepath.Join(t.TempDir(), "pool.db"),
		DBMaxOpenConns:    3,
		DBMaxIdleConns:    2,
		DBConnMaxLifetime: time.Minute,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Ping())
}

func TestConnect_ZeroLimitsKeepDefaults(t *testing.T) {
	cfg := &config.Config{
		GinMode:    "release",
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "defaults.db"),
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 0, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}
