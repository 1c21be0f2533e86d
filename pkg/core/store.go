package core

import (
	"context"
	"time"
)

// Store defines the persistence layer for the engine.
//
// Correctness under concurrent engine instances rests on two things here:
// ClaimDuePosts must hand each due post to exactly one caller, and the status
// transitions must be guarded so a row never moves backwards.
type Store interface {
	// Migrate creates the necessary database tables.
	Migrate(ctx context.Context) error

	// ClaimDuePosts atomically selects all due scheduled posts and flips
	// them to StatusPublishing in one transaction, skipping rows already
	// locked by a concurrent claimant. On any error the transaction is
	// rolled back whole and nothing is claimed.
	ClaimDuePosts(ctx context.Context) ([]*Post, error)

	// ReleaseStaleClaims returns posts stuck in StatusPublishing longer
	// than olderThan to StatusScheduled, so a crash between claim and
	// finalize cannot strand them. Returns the number of rows released.
	ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) (int64, error)

	// Post lifecycle. Each transition checks the current status and
	// returns ErrPostNotClaimed / ErrPostNotPublished when the row is not
	// in the expected state, so terminal states stay absorbing.
	MarkPublished(ctx context.Context, postID, externalPostID string) error
	MarkFailed(ctx context.Context, postID, errMsg string) error
	MarkDeleted(ctx context.Context, postID string) error

	// Analytics
	StalePublishedPosts(ctx context.Context, freshness time.Duration, limit int) ([]*Post, error)
	ReplaceSnapshot(ctx context.Context, snap *MetricsSnapshot) error
	Snapshot(ctx context.Context, postID string) (*MetricsSnapshot, error)

	// Accounts
	AccountByOwner(ctx context.Context, ownerID string) (*Account, error)
	ExpiringAccounts(ctx context.Context, horizon time.Duration) ([]*Account, error)
	UpdateTokens(ctx context.Context, ownerID string, grant TokenGrant) error

	// Row creation. Posts and accounts normally arrive from the authoring
	// and OAuth surfaces; these exist for wiring and tests.
	CreatePost(ctx context.Context, post *Post) error
	CreateAccount(ctx context.Context, account *Account) error

	// Queries
	Post(ctx context.Context, postID string) (*Post, error)
	PostsByStatus(ctx context.Context, status PostStatus, limit int) ([]*Post, error)
}
