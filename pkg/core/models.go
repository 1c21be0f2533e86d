package core

import (
	"time"
)

// PostStatus represents the current state of a scheduled post.
type PostStatus string

const (
	StatusScheduled  PostStatus = "scheduled"
	StatusPublishing PostStatus = "publishing" // claimed by a publish tick, in flight
	StatusPublished  PostStatus = "published"
	StatusFailed     PostStatus = "failed"
	StatusDeleted    PostStatus = "deleted" // removed on the platform side
)

// Terminal reports whether no lane will transition the post further.
func (s PostStatus) Terminal() bool {
	switch s {
	case StatusFailed, StatusDeleted:
		return true
	}
	return false
}

// Post is a pre-authored piece of content waiting to be published.
//
// Rows are created (as StatusScheduled) by the authoring surface; every
// subsequent transition belongs to the engine. The status only ever moves
// forward: scheduled -> publishing -> published | failed, and published
// -> deleted when the remote content disappears.
type Post struct {
	ID          string     `gorm:"primaryKey;size:36"`
	OwnerID     string     `gorm:"index;size:36;not null"`
	ContentText string     `gorm:"type:text"`
	ScheduledAt time.Time  `gorm:"index;not null"`
	Status      PostStatus `gorm:"index;size:20;default:'scheduled'"`

	// ExternalPostID is the platform's reference for the published content.
	// Empty until the post reaches StatusPublished.
	ExternalPostID string     `gorm:"size:255"`
	PublishedAt    *time.Time

	// AnalyticsLastUpdatedAt is advanced only by a successful metrics fetch,
	// which keeps failed fetches naturally eligible for the next tick.
	AnalyticsLastUpdatedAt *time.Time `gorm:"index"`

	// LastError holds the sanitized reason for a terminal failure.
	LastError string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Account stores one owner's delegated platform credentials.
// Created and re-linked by the OAuth callback surface; the engine only reads
// it and rotates its tokens.
type Account struct {
	OwnerID           string    `gorm:"primaryKey;size:36"`
	ExternalAccountID string    `gorm:"size:255;not null"`
	AccessToken       string    `gorm:"type:text"`
	RefreshToken      string    `gorm:"type:text"`
	TokenExpiresAt    time.Time `gorm:"index"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// MetricsSnapshot is the single current metrics reading for a post.
// PostID is the primary key, so at most one snapshot exists per post;
// a fetch replaces the row wholesale rather than merging into it.
type MetricsSnapshot struct {
	PostID      string    `gorm:"primaryKey;size:36"`
	Impressions int64     `gorm:"not null;default:0"`
	Reactions   int64     `gorm:"not null;default:0"`
	Comments    int64     `gorm:"not null;default:0"`
	CapturedAt  time.Time `gorm:"autoCreateTime"`
}

// Metrics is a platform metrics reading before it is persisted.
type Metrics struct {
	Impressions int64
	Reactions   int64
	Comments    int64
}

// TokenGrant is the result of a successful credential refresh.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until the new access token expires
}
