package videoquery

import (
	"time"

	"github.com/cliptube/backend/internal/models"
)

// ChannelRef is the owner projection attached to listing entries.
type ChannelRef struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// OwnerSummary extends ChannelRef with the subscriber-derived fields a detail
// response carries.
type OwnerSummary struct {
	ChannelRef
	SubscribersCount int  `json:"subscribersCount"`
	IsSubscribed     bool `json:"isSubscribed"`
}

// VideoSummary is the public projection of a video in a listing response.
type VideoSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	MediaURL     string     `json:"mediaUrl"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	CreatedAt    time.Time  `json:"createdAt"`
	Owner        ChannelRef `json:"owner"`
	LikesCount   int        `json:"likesCount"`
	IsLiked      bool       `json:"isLiked"`
}

// VideoDetail is the public projection of a single video, including the
// collapsed owner summary. Internal join sets never appear here.
type VideoDetail struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	MediaURL     string       `json:"mediaUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Owner        OwnerSummary `json:"owner"`
	LikesCount   int          `json:"likesCount"`
	IsLiked      bool         `json:"isLiked"`
}

// ShapeDetail derives the computed fields for a single video from its joined
// sets. Each step is relative to the requesting viewer; with an empty viewer
// identity both flags come out false, never absent.
func ShapeDetail(video models.Video, owner models.User, likes []models.Like, subscribers []models.Subscription, viewerID string) VideoDetail {
	return VideoDetail{
		ID:           video.ID,
		Title:        video.Title,
		Description:  video.Description,
		MediaURL:     video.MediaURL,
		ThumbnailURL: video.ThumbnailURL,
		Duration:     video.Duration,
		Views:        video.Views,
		CreatedAt:    video.CreatedAt,
		UpdatedAt:    video.UpdatedAt,
		Owner:        ShapeOwner(owner, subscribers, viewerID),
		LikesCount:   len(likes),
		IsLiked:      LikedBy(likes, viewerID),
	}
}

// ShapeOwner collapses the owner join to a single summary object with the
// subscriber-derived fields attached.
func ShapeOwner(owner models.User, subscribers []models.Subscription, viewerID string) OwnerSummary {
	return OwnerSummary{
		ChannelRef: ChannelRef{
			ID:        owner.ID,
			Username:  owner.Username,
			AvatarURL: owner.AvatarURL,
		},
		SubscribersCount: len(subscribers),
		IsSubscribed:     SubscribedBy(subscribers, viewerID),
	}
}

// LikedBy reports whether the viewer appears among the like set's likers.
func LikedBy(likes []models.Like, viewerID string) bool {
	if viewerID == "" {
		return false
	}
	for _, like := range likes {
		if like.UserID == viewerID {
			return true
		}
	}
	return false
}

// SubscribedBy reports whether the viewer appears among the channel's
// subscribers.
func SubscribedBy(subscribers []models.Subscription, viewerID string) bool {
	if viewerID == "" {
		return false
	}
	for _, sub := range subscribers {
		if sub.SubscriberID == viewerID {
			return true
		}
	}
	return false
}
