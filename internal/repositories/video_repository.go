package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/videoquery"
)

// VideoRepository exposes data access for videos, including the aggregated
// listing used by the public catalogue.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	Get(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, q videoquery.ListQuery, viewerID string) ([]videoquery.VideoSummary, int, error)
	UpdateDetails(ctx context.Context, id, title, description string) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	MarkMediaReady(ctx context.Context, id, mediaURL, thumbnailURL string, duration float64, size int64) error
	MarkMediaFailed(ctx context.Context, id string) error
}

// LikeRepository exposes the video/user like join.
type LikeRepository interface {
	Toggle(ctx context.Context, like models.Like) (bool, error)
	ListForVideo(ctx context.Context, videoID string) ([]models.Like, error)
}

// SubscriptionRepository exposes the subscriber/channel join between users.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, sub models.Subscription) (bool, error)
	ListForChannel(ctx context.Context, channelID string) ([]models.Subscription, error)
}

// CommentRepository exposes comment persistence for videos.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	Get(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, id, body string) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID string, limit, offset int) ([]models.Comment, int, error)
}
