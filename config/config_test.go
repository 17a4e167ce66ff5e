package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_DSN", "DB_PORT", "RECONCILE_INTERVAL", "STRICT_TABLE_CHECK", "SEED_TABLES", "RESERVE_RATE_PER_MINUTE", "RESERVE_RATE_BURST", "RABBITMQ_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.ReconcileInterval)
	assert.True(t, cfg.StrictTableCheck)
	assert.True(t, cfg.SeedTables)
	assert.Equal(t, 30, cfg.ReserveRate)
	assert.Equal(t, 5, cfg.ReserveBurst)
	assert.Empty(t, cfg.RabbitURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("RECONCILE_INTERVAL", "0")
	t.Setenv("STRICT_TABLE_CHECK", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Zero(t, cfg.ReconcileInterval)
	assert.False(t, cfg.StrictTableCheck)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RECONCILE_INTERVAL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "RECONCILE_INTERVAL")
}

func TestDSNString(t *testing.T) {
	dsn, err := DatabaseConfig{Driver: "mysql", User: "root", Password: "pw", Host: "db", Name: "resto"}.DSNString()
	require.NoError(t, err)
	assert.Equal(t, "root:pw@tcp(db:3306)/resto?charset=utf8mb4&parseTime=True&loc=Local", dsn)

	dsn, err = DatabaseConfig{Driver: "postgres", User: "app", Host: "pg", Port: 5433, Name: "resto"}.DSNString()
	require.NoError(t, err)
	assert.Equal(t, "host=pg port=5433 user=app password= dbname=resto sslmode=disable", dsn)

	dsn, err = DatabaseConfig{Driver: "sqlite", Name: "resto"}.DSNString()
	require.NoError(t, err)
	assert.Equal(t, "resto.db", dsn)

	dsn, err = DatabaseConfig{Driver: "mysql", DSN: "explicit"}.DSNString()
	require.NoError(t, err)
	assert.Equal(t, "explicit", dsn)

	_, err = DatabaseConfig{Driver: "oracle"}.DSNString()
	assert.Error(t, err)
}

func TestInitDBSQLite(t *testing.T) {
	db, err := InitDB(DatabaseConfig{Driver: "sqlite", DSN: "file:config_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
