package core

import (
	"errors"
)

var (
	ErrPostNotClaimed   = errors.New("postpilot: post is not in publishing state")
	ErrPostNotPublished = errors.New("postpilot: post is not in published state")
	ErrAccountNotFound  = errors.New("postpilot: no platform account for owner")
	ErrNoAccessToken    = errors.New("postpilot: account has no usable access token")
	ErrEmptyContent     = errors.New("postpilot: post content is empty")
	ErrContentTooLong   = errors.New("postpilot: post content exceeds platform limit")
)
