package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/postpilot/postpilot/pkg/core"
)

// AnalyticsTick refreshes metrics for published posts whose snapshot is
// older than the freshness window (or was never taken).
//
// A successful fetch replaces the stored snapshot wholesale. A not-found
// response means the content was removed on the platform, so the post is
// marked deleted. Any other failure leaves the row untouched; because the
// analytics timestamp did not advance, the post stays eligible next tick.
func (e *Engine) AnalyticsTick(ctx context.Context) error {
	posts, err := e.store.StalePublishedPosts(ctx, e.freshness, e.batchLimit)
	if err != nil {
		return fmt.Errorf("select stale published posts: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}

	e.logger.Info("refreshing metrics", "count", len(posts))

	for _, post := range posts {
		e.refreshMetricsOne(ctx, post)
	}
	return nil
}

func (e *Engine) refreshMetricsOne(ctx context.Context, post *core.Post) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic while fetching metrics", "post_id", post.ID, "panic", r)
		}
	}()

	account, err := e.store.AccountByOwner(ctx, post.OwnerID)
	if err != nil {
		e.logger.Error("failed to look up account", "post_id", post.ID, "owner_id", post.OwnerID, "error", err)
		return
	}
	if account == nil || account.AccessToken == "" {
		e.logger.Warn("no usable credentials for metrics fetch", "post_id", post.ID, "owner_id", post.OwnerID)
		return
	}

	var metrics core.Metrics
	err = e.callPlatform(ctx, func(callCtx context.Context) error {
		var fetchErr error
		metrics, fetchErr = e.platform.FetchMetrics(callCtx, post.ExternalPostID, account)
		return fetchErr
	})

	if err != nil {
		if core.IsNotFound(err) {
			e.removeDeletedPost(ctx, post)
			return
		}
		e.logger.Error("metrics fetch failed", "post_id", post.ID, "error", err)
		return
	}

	snap := &core.MetricsSnapshot{
		PostID:      post.ID,
		Impressions: metrics.Impressions,
		Reactions:   metrics.Reactions,
		Comments:    metrics.Comments,
	}
	if err := e.store.ReplaceSnapshot(ctx, snap); err != nil {
		e.logger.Error("failed to store metrics snapshot", "post_id", post.ID, "error", err)
		return
	}

	e.logger.Info("metrics updated", "post_id", post.ID,
		"impressions", metrics.Impressions, "reactions", metrics.Reactions, "comments", metrics.Comments)
	e.emit(&core.MetricsCaptured{Post: post, Metrics: metrics, Timestamp: time.Now()})
}

// removeDeletedPost marks a post whose remote content disappeared.
func (e *Engine) removeDeletedPost(ctx context.Context, post *core.Post) {
	e.logger.Warn("post no longer exists on platform", "post_id", post.ID, "external_post_id", post.ExternalPostID)

	if err := e.store.MarkDeleted(ctx, post.ID); err != nil {
		e.logger.Error("failed to mark post deleted", "post_id", post.ID, "error", err)
		return
	}
	e.emit(&core.PostRemoved{Post: post, Timestamp: time.Now()})
}
