package core

import (
	"context"
	"errors"
	"fmt"
)

// Platform is the engine's view of the social platform. Implementations are
// assumed fallible and slow; every call must honor the context deadline.
type Platform interface {
	// Submit publishes text on behalf of the account and returns the
	// platform's reference for the created post.
	Submit(ctx context.Context, text string, account *Account) (string, error)

	// FetchMetrics returns the current metrics for a published post.
	FetchMetrics(ctx context.Context, externalPostID string, account *Account) (Metrics, error)

	// Refresh exchanges a refresh token for a fresh token pair.
	Refresh(ctx context.Context, refreshToken string) (TokenGrant, error)
}

// ErrorKind classifies a platform failure as far as the engine cares.
type ErrorKind int

const (
	// KindOther is any failure with no special meaning: network errors,
	// timeouts, rate limits, auth problems. During publish it is terminal.
	KindOther ErrorKind = iota

	// KindDuplicate means identical content was already accepted. The
	// platform-side effect exists, so the engine records it as a success.
	KindDuplicate

	// KindNotFound means the referenced content no longer exists remotely.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindDuplicate:
		return "duplicate"
	case KindNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// PlatformError is a classified failure from a Platform call.
type PlatformError struct {
	Kind       ErrorKind
	StatusCode int

	// ExistingRef is the already-published reference recovered from a
	// duplicate-content response, when the platform exposed one.
	ExistingRef string

	Detail string
}

func (e *PlatformError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("platform: %s (status %d): %s", e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("platform: %s: %s", e.Kind, e.Detail)
}

// AsDuplicate reports whether err is a duplicate-content failure, and if so
// returns the recovered existing reference (may be empty when the platform
// did not include one).
func AsDuplicate(err error) (string, bool) {
	var pe *PlatformError
	if errors.As(err, &pe) && pe.Kind == KindDuplicate {
		return pe.ExistingRef, true
	}
	return "", false
}

// IsNotFound reports whether err means the remote resource is gone.
func IsNotFound(err error) bool {
	var pe *PlatformError
	return errors.As(err, &pe) && pe.Kind == KindNotFound
}
