package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()
	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, time.Minute, cfg.ConnMaxIdleTime)
}

func TestPoolOptions(t *testing.T) {
	cfg := DefaultPoolConfig()
	for _, opt := range []PoolOption{
		MaxOpenConns(20),
		MaxIdleConns(8),
		ConnMaxLifetime(10 * time.Minute),
		ConnMaxIdleTime(2 * time.Minute),
	} {
		opt.applyPool(&cfg)
	}

	assert.Equal(t, 20, cfg.MaxOpenConns)
	assert.Equal(t, 8, cfg.MaxIdleConns)
	assert.Equal(t, 10*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, 2*time.Minute, cfg.ConnMaxIdleTime)
}

func TestNewGormStoreWithPool(t *testing.T) {
	db := openTestDB(t)

	s, err := NewGormStoreWithPool(db, MaxOpenConns(4), MaxIdleConns(2))
	require.NoError(t, err)
	require.NotNil(t, s)
	require.NoError(t, s.Migrate(context.Background()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.LessOrEqual(t, sqlDB.Stats().MaxOpenConnections, 4)
}
