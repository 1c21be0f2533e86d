package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/postpilot/postpilot/pkg/core"
	"github.com/postpilot/postpilot/pkg/security"
)

// PublishTick claims all due scheduled posts and publishes them. Before
// claiming it returns any claim older than the claim TTL to the due set, so
// posts stranded in publishing by a dead process are picked up again.
//
// The claim is one storage transaction; once it commits, every returned post
// is visible to this tick alone. Each post is then handled inside its own
// failure boundary, so one bad item never aborts the rest of the batch.
// Only the claim error is returned: per-item outcomes are recorded on the
// rows themselves.
func (e *Engine) PublishTick(ctx context.Context) error {
	released, err := e.store.ReleaseStaleClaims(ctx, e.claimTTL)
	if err != nil {
		return fmt.Errorf("release stale claims: %w", err)
	}
	if released > 0 {
		e.logger.Warn("released stale claims", "count", released)
	}

	posts, err := e.store.ClaimDuePosts(ctx)
	if err != nil {
		return fmt.Errorf("claim due posts: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}

	e.logger.Info("claimed due posts", "count", len(posts))

	for _, post := range posts {
		e.publishOne(ctx, post)
	}
	return nil
}

func (e *Engine) publishOne(ctx context.Context, post *core.Post) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic while publishing post", "post_id", post.ID, "panic", r)
			e.failPost(ctx, post, fmt.Errorf("panic: %v", r))
		}
	}()

	account, err := e.publishAccount(ctx, post.OwnerID)
	if err != nil {
		// Missing credentials are indistinguishable from a platform
		// failure as far as this post is concerned: terminal.
		e.failPost(ctx, post, err)
		return
	}

	if err := security.ValidateContent(post.ContentText); err != nil {
		e.failPost(ctx, post, err)
		return
	}

	var externalID string
	err = e.callPlatform(ctx, func(callCtx context.Context) error {
		var submitErr error
		externalID, submitErr = e.platform.Submit(callCtx, post.ContentText, account)
		return submitErr
	})

	if err != nil {
		if ref, ok := core.AsDuplicate(err); ok && ref != "" {
			// The platform-side effect already happened. Recording the
			// existing reference as a publish is what prevents this
			// content from being submitted again later.
			e.finishPublish(ctx, post, ref, true)
			return
		}
		// Everything else, timeouts included, is terminal. There is no
		// way to ask the platform whether an ambiguous submit landed,
		// and never double-posting wins over retrying.
		e.failPost(ctx, post, err)
		return
	}

	e.finishPublish(ctx, post, externalID, false)
}

// publishAccount loads the owner's credentials and checks they are usable.
func (e *Engine) publishAccount(ctx context.Context, ownerID string) (*core.Account, error) {
	account, err := e.store.AccountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("look up account for owner %s: %w", ownerID, err)
	}
	if account == nil {
		return nil, core.ErrAccountNotFound
	}
	if account.AccessToken == "" || account.ExternalAccountID == "" {
		return nil, core.ErrNoAccessToken
	}
	return account, nil
}

func (e *Engine) finishPublish(ctx context.Context, post *core.Post, externalID string, duplicate bool) {
	if err := e.store.MarkPublished(ctx, post.ID, externalID); err != nil {
		e.logger.Error("failed to record publish", "post_id", post.ID, "external_post_id", externalID, "error", err)
		return
	}

	if duplicate {
		e.logger.Info("post already existed on platform, recorded as published", "post_id", post.ID, "external_post_id", externalID)
	} else {
		e.logger.Info("post published", "post_id", post.ID, "external_post_id", externalID)
	}
	e.emit(&core.PostPublished{Post: post, ExternalPostID: externalID, Duplicate: duplicate, Timestamp: time.Now()})
}

func (e *Engine) failPost(ctx context.Context, post *core.Post, cause error) {
	e.logger.Error("publish failed", "post_id", post.ID, "error", cause)

	if err := e.store.MarkFailed(ctx, post.ID, cause.Error()); err != nil {
		e.logger.Error("failed to record publish failure", "post_id", post.ID, "error", err)
		return
	}
	e.emit(&core.PostFailed{Post: post, Error: cause, Timestamp: time.Now()})
}
