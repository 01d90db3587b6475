package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

const maxCommentLength = 2000

// CommentHandler implements comment endpoints under a video.
type CommentHandler struct {
	Videos   VideoStore
	Comments CommentStore
	NowFunc  func() time.Time
}

type commentPayload struct {
	Body string `json:"body"`
}

type commentView struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func viewComment(c models.Comment) commentView {
	return commentView{
		ID:        c.ID,
		VideoID:   c.VideoID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Create handles POST /api/v1/videos/{videoID}/comments requests.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.visibleVideo(w, r)
	if !ok {
		return
	}

	var req commentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment body is required")
		return
	}
	if len(body) > maxCommentLength {
		respondError(ctx, w, http.StatusBadRequest, "comment is too long")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   video.ID,
		AuthorID:  middleware.ViewerID(ctx),
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		logger.Error("create comment", "videoId", video.ID, "error", err)
		respondError(ctx, w, storeErrorStatus(err), "unable to post comment")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, viewComment(comment))
}

// List handles GET /api/v1/videos/{videoID}/comments requests, newest first.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.visibleVideo(w, r)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			respondError(ctx, w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(ctx, w, http.StatusBadRequest, "offset must be a non-negative number")
			return
		}
		offset = parsed
	}

	comments, total, err := h.Comments.ListForVideo(ctx, video.ID, limit, offset)
	if err != nil {
		logger.Error("list comments", "videoId", video.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load comments")
		return
	}

	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, viewComment(c))
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"totalComments": total,
		"comments":      views,
	})
}

// Update handles PATCH /api/v1/comments/{commentID} requests. Only the author
// may edit.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	commentID := chi.URLParam(r, "commentID")
	viewerID := middleware.ViewerID(ctx)

	comment, err := h.Comments.Get(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "comment not found")
			return
		}
		logger.Error("get comment", "commentId", commentID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load comment")
		return
	}

	if comment.AuthorID != viewerID {
		respondError(ctx, w, http.StatusForbidden, "you do not own this comment")
		return
	}

	var req commentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment body is required")
		return
	}
	if len(body) > maxCommentLength {
		respondError(ctx, w, http.StatusBadRequest, "comment is too long")
		return
	}

	if err := h.Comments.Update(ctx, commentID, body); err != nil {
		logger.Error("update comment", "commentId", commentID, "error", err)
		respondError(ctx, w, storeErrorStatus(err), "unable to update comment")
		return
	}

	comment.Body = body
	respondJSON(ctx, w, http.StatusOK, viewComment(comment))
}

// Delete handles DELETE /api/v1/comments/{commentID} requests. The comment's
// author and the video's owner may both remove it.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	commentID := chi.URLParam(r, "commentID")
	viewerID := middleware.ViewerID(ctx)

	comment, err := h.Comments.Get(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "comment not found")
			return
		}
		logger.Error("get comment", "commentId", commentID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load comment")
		return
	}

	if comment.AuthorID != viewerID {
		video, err := h.Videos.Get(ctx, comment.VideoID)
		if err != nil || video.OwnerID != viewerID {
			respondError(ctx, w, http.StatusForbidden, "you cannot delete this comment")
			return
		}
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		logger.Error("delete comment", "commentId", commentID, "error", err)
		respondError(ctx, w, storeErrorStatus(err), "unable to delete comment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// visibleVideo loads the routed video and hides unpublished drafts from
// everyone but their owner.
func (h CommentHandler) visibleVideo(w http.ResponseWriter, r *http.Request) (models.Video, bool) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := chi.URLParam(r, "videoID")
	viewerID := middleware.ViewerID(ctx)

	video, err := h.Videos.Get(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
		} else {
			logger.Error("get video", "videoId", videoID, "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		}
		return models.Video{}, false
	}

	if !video.IsPublished && video.OwnerID != viewerID {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return models.Video{}, false
	}

	return video, true
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
