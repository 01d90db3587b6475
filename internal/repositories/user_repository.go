package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
)

// UserRepository exposes data access for user accounts and their watch
// history.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	RecordWatch(ctx context.Context, userID, videoID string) error
	ListWatchHistory(ctx context.Context, userID string, limit int) ([]models.WatchEntry, error)
}
