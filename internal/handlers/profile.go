package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/repositories"
)

// ProfileHandler implements the authenticated user's own endpoints.
type ProfileHandler struct {
	Users UserStore
}

// Me handles GET /api/v1/me requests.
func (h ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	viewerID := middleware.ViewerID(ctx)
	user, err := h.Users.FindByID(ctx, viewerID)
	if err != nil {
		// A valid token can outlive its account.
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "account not found")
			return
		}
		logger.Error("load own profile", "userId", viewerID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, userSummary(user))
}

type watchHistoryEntry struct {
	VideoID   string    `json:"videoId"`
	WatchedAt time.Time `json:"watchedAt"`
}

// History handles GET /api/v1/me/history requests, most recent first.
func (h ProfileHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	viewerID := middleware.ViewerID(ctx)

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			respondError(ctx, w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	entries, err := h.Users.ListWatchHistory(ctx, viewerID, limit)
	if err != nil {
		logger.Error("list watch history", "userId", viewerID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load watch history")
		return
	}

	views := make([]watchHistoryEntry, 0, len(entries))
	for _, entry := range entries {
		views = append(views, watchHistoryEntry{VideoID: entry.VideoID, WatchedAt: entry.WatchedAt})
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"history": views})
}
