package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lunaticat/rpgmarket/cache"
	dbsqlite "github.com/lunaticat/rpgmarket/db/sqlite"
	"github.com/lunaticat/rpgmarket/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite DB and runs AutoMigrate.
// Each call gets its own named memory database, so parallel tests do
// not see each other's data. The pool is capped at one connection:
// SQLite allows a single writer, and serializing on the pool keeps
// concurrent transactions deterministic instead of surfacing
// "database is locked" errors.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := dbsqlite.Open(dsn)
	require.NoError(t, err, "SetupTestDB: Open")

	sqlDB, err := db.DB()
	require.NoError(t, err, "SetupTestDB: DB")
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates a LocalCache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(cache.CacheConfig{}) // empty RedisAddr → LocalCache
	require.NoError(t, err, "SetupTestCache: NewCache")
	return c
}
