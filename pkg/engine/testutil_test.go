package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/postpilot/postpilot/pkg/core"
	"github.com/postpilot/postpilot/pkg/storage"
)

// newTestStore creates a fresh migrated in-memory store for each test.
func newTestStore(t *testing.T) *storage.GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open in-memory sqlite")

	s := storage.NewGormStore(db)
	require.NoError(t, s.Migrate(context.Background()), "migrate schema")
	return s
}

// fakePlatform is a scriptable core.Platform for lane tests.
type fakePlatform struct {
	mu sync.Mutex

	submitFn  func(text string, account *core.Account) (string, error)
	metricsFn func(externalID string, account *core.Account) (core.Metrics, error)
	refreshFn func(refreshToken string) (core.TokenGrant, error)

	submitCalls  []string
	metricsCalls []string
	refreshCalls []string
}

func (f *fakePlatform) Submit(_ context.Context, text string, account *core.Account) (string, error) {
	f.mu.Lock()
	f.submitCalls = append(f.submitCalls, text)
	f.mu.Unlock()
	if f.submitFn == nil {
		return "urn:li:share:0", nil
	}
	return f.submitFn(text, account)
}

func (f *fakePlatform) FetchMetrics(_ context.Context, externalID string, account *core.Account) (core.Metrics, error) {
	f.mu.Lock()
	f.metricsCalls = append(f.metricsCalls, externalID)
	f.mu.Unlock()
	if f.metricsFn == nil {
		return core.Metrics{}, nil
	}
	return f.metricsFn(externalID, account)
}

func (f *fakePlatform) Refresh(_ context.Context, refreshToken string) (core.TokenGrant, error) {
	f.mu.Lock()
	f.refreshCalls = append(f.refreshCalls, refreshToken)
	f.mu.Unlock()
	if f.refreshFn == nil {
		return core.TokenGrant{AccessToken: "new", RefreshToken: "new", ExpiresIn: 3600}, nil
	}
	return f.refreshFn(refreshToken)
}

func (f *fakePlatform) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitCalls)
}

func seedAccount(t *testing.T, s core.Store, owner string) *core.Account {
	t.Helper()
	account := &core.Account{
		OwnerID:           owner,
		ExternalAccountID: "urn:li:person:" + owner,
		AccessToken:       "access-" + owner,
		RefreshToken:      "refresh-" + owner,
		TokenExpiresAt:    time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, s.CreateAccount(context.Background(), account))
	return account
}

func seedDuePost(t *testing.T, s core.Store, owner string) *core.Post {
	t.Helper()
	p := &core.Post{
		ID:          uuid.New().String(),
		OwnerID:     owner,
		ContentText: "scheduled content " + uuid.New().String(),
		ScheduledAt: time.Now().Add(-5 * time.Minute),
		Status:      core.StatusScheduled,
	}
	require.NoError(t, s.CreatePost(context.Background(), p))
	return p
}

func seedPublishedPost(t *testing.T, s core.Store, owner, externalID string, analyticsAge *time.Duration) *core.Post {
	t.Helper()
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
	require.NoError(t, s.CreatePost(context.Background(), p))
	return p
}

func getPost(t *testing.T, s core.Store, id string) *core.Post {
	t.Helper()
	p, err := s.Post(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}
