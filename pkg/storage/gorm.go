package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/postpilot/postpilot/pkg/core"
	"github.com/postpilot/postpilot/pkg/security"
)

// GormStore implements core.Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the necessary tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&core.Post{},
		&core.Account{},
		&core.MetricsSnapshot{},
	)
}

// ClaimDuePosts selects every due scheduled post and flips it to publishing
// within one transaction.
//
// On PostgreSQL the select takes row locks with SKIP LOCKED, so concurrent
// claimants partition the due set instead of blocking or double-claiming.
// SQLite has no FOR UPDATE; its single-writer transaction already serializes
// claim transactions, which preserves the same guarantee.
func (s *GormStore) ClaimDuePosts(ctx context.Context) ([]*core.Post, error) {
	var claimed []*core.Post
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("status = ?", core.StatusScheduled).
			Where("scheduled_at <= ?", now)

		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		var posts []*core.Post
		if err := q.Find(&posts).Error; err != nil {
			return err
		}
		if len(posts) == 0 {
			return nil
		}

		ids := make([]string, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}

		if err := tx.
			Model(&core.Post{}).
			Where("id IN ?", ids).
			Update("status", core.StatusPublishing).Error; err != nil {
			return err
		}

		for _, p := range posts {
			p.Status = core.StatusPublishing
		}
		claimed = posts
		return nil
	})

	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// ReleaseStaleClaims returns posts stuck in publishing longer than olderThan
// to the scheduled state. A claim only stays publishing this long when the
// process died between the claim commit and the per-post finalize; on the
// retry, content that already landed comes back as a duplicate and is
// recorded with its existing reference.
func (s *GormStore) ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := s.db.WithContext(ctx).
		Model(&core.Post{}).
		Where("status = ?", core.StatusPublishing).
		Where("updated_at < ?", cutoff).
		Update("status", core.StatusScheduled)
	return result.RowsAffected, result.Error
}

// MarkPublished records a successful publish. The status guard returns
// ErrPostNotClaimed unless the row is currently publishing, so a post can
// never re-enter published from a terminal state.
func (s *GormStore) MarkPublished(ctx context.Context, postID, externalPostID string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&core.Post{}).
		Where("id = ? AND status = ?", postID, core.StatusPublishing).
		Updates(map[string]any{
			"status":           core.StatusPublished,
			"external_post_id": externalPostID,
			"published_at":     now,
			"last_error":       "",
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrPostNotClaimed
	}
	return nil
}

// MarkFailed records a terminal publish failure.
// Error messages are sanitized before storage.
func (s *GormStore) MarkFailed(ctx context.Context, postID, errMsg string) error {
	result := s.db.WithContext(ctx).
		Model(&core.Post{}).
		Where("id = ? AND status = ?", postID, core.StatusPublishing).
		Updates(map[string]any{
			"status":     core.StatusFailed,
			"last_error": security.SanitizeErrorMessage(errMsg),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrPostNotClaimed
	}
	return nil
}

// MarkDeleted records that the remote content no longer exists.
func (s *GormStore) MarkDeleted(ctx context.Context, postID string) error {
	result := s.db.WithContext(ctx).
		Model(&core.Post{}).
		Where("id = ? AND status = ?", postID, core.StatusPublished).
		Update("status", core.StatusDeleted)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrPostNotPublished
	}
	return nil
}

// StalePublishedPosts returns published posts whose metrics were never
// fetched or are older than the freshness window.
func (s *GormStore) StalePublishedPosts(ctx context.Context, freshness time.Duration, limit int) ([]*core.Post, error) {
	var posts []*core.Post
	cutoff := time.Now().Add(-freshness)

	err := s.db.WithContext(ctx).
		Where("status = ?", core.StatusPublished).
		Where("external_post_id <> ''").
		Where("(analytics_last_updated_at IS NULL OR analytics_last_updated_at < ?)", cutoff).
		Order("analytics_last_updated_at ASC").
		Limit(security.ClampBatchLimit(limit)).
		Find(&posts).Error

	return posts, err
}

// ReplaceSnapshot swaps in a fresh metrics snapshot for a post and advances
// its analytics timestamp, all in one transaction. Prior values are deleted,
// never merged.
func (s *GormStore) ReplaceSnapshot(ctx context.Context, snap *core.MetricsSnapshot) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("post_id = ?", snap.PostID).
			Delete(&core.MetricsSnapshot{}).Error; err != nil {
			return err
		}
		if err := tx.Create(snap).Error; err != nil {
			return err
		}
		return tx.
			Model(&core.Post{}).
			Where("id = ?", snap.PostID).
			Update("analytics_last_updated_at", now).Error
	})
}

// Snapshot retrieves the current snapshot for a post, or nil if none exists.
func (s *GormStore) Snapshot(ctx context.Context, postID string) (*core.MetricsSnapshot, error) {
	var snap core.MetricsSnapshot
	err := s.db.WithContext(ctx).First(&snap, "post_id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// AccountByOwner retrieves an owner's credential record, or nil if none exists.
func (s *GormStore) AccountByOwner(ctx context.Context, ownerID string) (*core.Account, error) {
	var account core.Account
	err := s.db.WithContext(ctx).First(&account, "owner_id = ?", ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ExpiringAccounts returns accounts whose access token expires within the horizon.
func (s *GormStore) ExpiringAccounts(ctx context.Context, horizon time.Duration) ([]*core.Account, error) {
	var accounts []*core.Account
	err := s.db.WithContext(ctx).
		Where("token_expires_at < ?", time.Now().Add(horizon)).
		Find(&accounts).Error
	return accounts, err
}

// UpdateTokens overwrites an account's token pair after a successful refresh.
func (s *GormStore) UpdateTokens(ctx context.Context, ownerID string, grant core.TokenGrant) error {
	expiresAt := time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	result := s.db.WithContext(ctx).
		Model(&core.Account{}).
		Where("owner_id = ?", ownerID).
		Updates(map[string]any{
			"access_token":     grant.AccessToken,
			"refresh_token":    grant.RefreshToken,
			"token_expires_at": expiresAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

// CreatePost inserts a post row. Posts normally arrive from the authoring
// surface; this exists for wiring and tests.
func (s *GormStore) CreatePost(ctx context.Context, post *core.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.Status == "" {
		post.Status = core.StatusScheduled
	}
	return s.db.WithContext(ctx).Create(post).Error
}

// CreateAccount inserts a credential row.
func (s *GormStore) CreateAccount(ctx context.Context, account *core.Account) error {
	return s.db.WithContext(ctx).Create(account).Error
}

// Post retrieves a post by ID, or nil if none exists.
func (s *GormStore) Post(ctx context.Context, postID string) (*core.Post, error) {
	var post core.Post
	err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// PostsByStatus retrieves posts by status.
func (s *GormStore) PostsByStatus(ctx context.Context, status core.PostStatus, limit int) ([]*core.Post, error) {
	var posts []*core.Post
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Limit(security.ClampBatchLimit(limit)).
		Find(&posts).Error
	return posts, err
}
