package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// LikeHandler implements the video like toggle.
type LikeHandler struct {
	Videos  VideoStore
	Likes   LikeStore
	NowFunc func() time.Time
}

// Toggle handles POST /api/v1/videos/{videoID}/like requests. Liking an
// already-liked video removes the like.
func (h LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := chi.URLParam(r, "videoID")
	viewerID := middleware.ViewerID(ctx)

	video, err := h.Videos.Get(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("get video for like", "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update like")
		return
	}

	if !video.IsPublished && video.OwnerID != viewerID {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	liked, err := h.Likes.Toggle(ctx, models.Like{
		ID:        uuid.NewString(),
		VideoID:   video.ID,
		UserID:    viewerID,
		CreatedAt: h.now(),
	})
	if err != nil {
		logger.Error("toggle like", "videoId", video.ID, "userId", viewerID, "error", err)
		respondError(ctx, w, storeErrorStatus(err), "unable to update like")
		return
	}

	likes, err := h.Likes.ListForVideo(ctx, video.ID)
	if err != nil {
		logger.Error("count likes", "videoId", video.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update like")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"videoId":    video.ID,
		"isLiked":    liked,
		"likesCount": len(likes),
	})
}

func (h LikeHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
