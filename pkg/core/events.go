package core

import "time"

// Event is the interface for all engine events.
type Event interface {
	eventMarker()
}

// PostPublished is emitted when a post lands on the platform.
type PostPublished struct {
	Post           *Post
	ExternalPostID string
	Duplicate      bool // recovered from a duplicate-content response
	Timestamp      time.Time
}

func (*PostPublished) eventMarker() {}

// PostFailed is emitted when a publish attempt fails terminally.
type PostFailed struct {
	Post      *Post
	Error     error
	Timestamp time.Time
}

func (*PostFailed) eventMarker() {}

// MetricsCaptured is emitted when a fresh metrics snapshot is stored.
type MetricsCaptured struct {
	Post      *Post
	Metrics   Metrics
	Timestamp time.Time
}

func (*MetricsCaptured) eventMarker() {}

// PostRemoved is emitted when metrics polling finds the remote content gone.
type PostRemoved struct {
	Post      *Post
	Timestamp time.Time
}

func (*PostRemoved) eventMarker() {}

// TokenRefreshed is emitted when an account's credentials are rotated.
type TokenRefreshed struct {
	OwnerID   string
	ExpiresAt time.Time
	Timestamp time.Time
}

func (*TokenRefreshed) eventMarker() {}
