package handlers

import (
	"context"

	"github.com/cliptube/backend/internal/media"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/videoquery"
)

// UserStore is the slice of user persistence the handlers require.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	RecordWatch(ctx context.Context, userID, videoID string) error
	ListWatchHistory(ctx context.Context, userID string, limit int) ([]models.WatchEntry, error)
}

// SessionManager issues and refreshes authentication sessions.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// VideoStore is the slice of video persistence the handlers require.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	Get(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, q videoquery.ListQuery, viewerID string) ([]videoquery.VideoSummary, int, error)
	UpdateDetails(ctx context.Context, id, title, description string) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

// LikeStore toggles and lists video likes.
type LikeStore interface {
	Toggle(ctx context.Context, like models.Like) (bool, error)
	ListForVideo(ctx context.Context, videoID string) ([]models.Like, error)
}

// SubscriptionStore toggles and lists channel subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, sub models.Subscription) (bool, error)
	ListForChannel(ctx context.Context, channelID string) ([]models.Subscription, error)
}

// CommentStore persists video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	Get(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, id, body string) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID string, limit, offset int) ([]models.Comment, int, error)
}

// MediaIngestor schedules background ingestion of spooled uploads.
type MediaIngestor interface {
	Enqueue(ctx context.Context, job media.UploadJob) error
}
