package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/postpilot/postpilot/pkg/core"
)

// openTestDB opens a database for tests.
// When TEST_DATABASE_URL is set it connects to PostgreSQL; otherwise it
// opens a fresh in-memory SQLite instance.
// PostgreSQL connections are pool-limited and closed on test cleanup to
// avoid exceeding max_connections.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err, "open postgres test db")

		sqlDB, err := db.DB()
		require.NoError(t, err, "get underlying sql.DB")
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetMaxIdleConns(2)

		// Clean before AND after to ensure test isolation.
		cleanupPostgresDB(t, db)
		t.Cleanup(func() {
			cleanupPostgresDB(t, db)
			_ = sqlDB.Close()
		})
		return db
	}
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open in-memory sqlite")
	return db
}

// cleanupPostgresDB deletes all rows from tables after each test
// so tests are isolated without requiring a fresh database per test.
func cleanupPostgresDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	tables := []string{"metrics_snapshots", "posts", "accounts"}
	for _, tbl := range tables {
		db.Exec("DELETE FROM " + tbl)
	}
}

// newTestStore creates a fresh migrated store for each test.
func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	s := NewGormStore(openTestDB(t))
	require.NoError(t, s.Migrate(context.Background()), "migrate schema")
	return s
}

// newScheduledPost builds a post due at the given offset from now.
func newScheduledPost(owner string, dueIn time.Duration) *core.Post {
	return &core.Post{
		ID:          uuid.New().String(),
		OwnerID:     owner,
		ContentText: "hello from a test",
		ScheduledAt: time.Now().Add(dueIn),
		Status:      core.StatusScheduled,
	}
}

// newPublishedPost builds a published post with the given analytics age.
// A nil age means metrics were never fetched.
func newPublishedPost(owner, externalID string, analyticsAge *time.Duration) *core.Post {
	now := time.Now()
	p := &core.Post{
		ID:             uuid.New().String(),
		OwnerID:        owner,
		ContentText:    "published content",
		ScheduledAt:    now.Add(-time.Hour),
		Status:         core.StatusPublished,
		ExternalPostID: externalID,
		PublishedAt:    &now,
	}
	if analyticsAge != nil {
		ts := now.Add(-*analyticsAge)
		p.AnalyticsLastUpdatedAt = &ts
	}
	return p
}

func newTestAccount(owner string, expiresIn time.Duration) *core.Account {
	return &core.Account{
		OwnerID:           owner,
		ExternalAccountID: "urn:li:person:" + owner,
		AccessToken:       "access-" + owner,
		RefreshToken:      "refresh-" + owner,
		TokenExpiresAt:    time.Now().Add(expiresIn),
	}
}
