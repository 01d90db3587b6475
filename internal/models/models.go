package models

import "time"

// User represents an account within the ClipTube platform. A user is also a
// channel: other users subscribe to it and its videos reference it as owner.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Video is an uploaded video record. Media and thumbnail URLs stay empty
// until the ingestor finishes uploading the assets to object storage.
type Video struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	MediaURL     string
	ThumbnailURL string
	Duration     float64
	MediaStatus  string
	MediaSize    int64
	Views        int64
	IsPublished  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	MediaStatusPending    = "pending"
	MediaStatusProcessing = "processing"
	MediaStatusReady      = "ready"
	MediaStatusFailed     = "failed"
)

// Like joins a user to a video they liked.
type Like struct {
	ID        string
	VideoID   string
	UserID    string
	CreatedAt time.Time
}

// Subscription joins a subscriber to the channel (user) they follow.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Comment is a viewer comment on a video.
type Comment struct {
	ID        string
	VideoID   string
	AuthorID  string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WatchEntry records that a user watched a video. The (user, video) pair is
// unique: repeat views refresh watched_at instead of duplicating the entry.
type WatchEntry struct {
	UserID    string
	VideoID   string
	WatchedAt time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
