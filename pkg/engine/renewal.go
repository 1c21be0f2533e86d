package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/postpilot/postpilot/pkg/core"
)

// RenewalTick refreshes credentials that expire within the renewal horizon.
//
// A failed refresh is only logged: the stored expiry is unchanged, so the
// account is selected again on the next run. That gives natural retry
// without any extra bookkeeping.
func (e *Engine) RenewalTick(ctx context.Context) error {
	accounts, err := e.store.ExpiringAccounts(ctx, e.renewalHorizon)
	if err != nil {
		return fmt.Errorf("select expiring accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil
	}

	e.logger.Info("renewing credentials", "count", len(accounts))

	for _, account := range accounts {
		e.renewOne(ctx, account)
	}
	return nil
}

func (e *Engine) renewOne(ctx context.Context, account *core.Account) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic while refreshing token", "owner_id", account.OwnerID, "panic", r)
		}
	}()

	var grant core.TokenGrant
	err := e.callPlatform(ctx, func(callCtx context.Context) error {
		var refreshErr error
		grant, refreshErr = e.platform.Refresh(callCtx, account.RefreshToken)
		return refreshErr
	})
	if err != nil {
		e.logger.Error("token refresh failed", "owner_id", account.OwnerID, "error", err)
		return
	}

	if err := e.store.UpdateTokens(ctx, account.OwnerID, grant); err != nil {
		e.logger.Error("failed to store refreshed tokens", "owner_id", account.OwnerID, "error", err)
		return
	}

	expiresAt := time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	e.logger.Info("token refreshed", "owner_id", account.OwnerID, "expires_at", expiresAt)
	e.emit(&core.TokenRefreshed{OwnerID: account.OwnerID, ExpiresAt: expiresAt, Timestamp: time.Now()})
}
