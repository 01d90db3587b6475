package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/media"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/videoquery"
)

// VideoHandler implements the video catalogue and upload endpoints.
type VideoHandler struct {
	Videos        VideoStore
	Users         UserStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Ingestor      MediaIngestor
	UploadDir     string
	MaxUploadSize int64
	NowFunc       func() time.Time
}

type listVideosResponse struct {
	videoquery.Page
	Videos []videoquery.VideoSummary `json:"videos"`
}

// List handles GET /api/v1/videos requests: the paginated, filtered public
// catalogue with per-video like counts and viewer flags.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	query := r.URL.Query()
	params := videoquery.ListParams{
		Page:     query.Get("page"),
		Limit:    query.Get("limit"),
		Query:    query.Get("query"),
		SortBy:   query.Get("sortBy"),
		SortType: query.Get("sortType"),
		UserID:   query.Get("userId"),
	}

	q, err := videoquery.Build(params)
	if err != nil {
		logger.Warn("rejected listing query", "error", err)
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	viewerID := middleware.ViewerID(ctx)

	videos, total, err := h.Videos.List(ctx, q, viewerID)
	if err != nil {
		logger.Error("list videos", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list videos")
		return
	}

	if videos == nil {
		videos = []videoquery.VideoSummary{}
	}

	respondJSON(ctx, w, http.StatusOK, listVideosResponse{
		Page:   videoquery.NewPage(total, q.Page, q.Limit),
		Videos: videos,
	})
}

// Get handles GET /api/v1/videos/{videoID} requests. Responding also kicks
// off the view-count increment and watch-history append in the background so
// the read path never waits on them.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
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
		logger.Error("get video", "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return
	}

	// Drafts are visible to their owner only, and indistinguishable from
	// missing videos for everyone else.
	if !video.IsPublished && video.OwnerID != viewerID {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	owner, err := h.Users.FindByID(ctx, video.OwnerID)
	if err != nil {
		logger.Error("load video owner", "videoId", videoID, "ownerId", video.OwnerID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return
	}

	likes, err := h.Likes.ListForVideo(ctx, videoID)
	if err != nil {
		logger.Error("load video likes", "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return
	}

	subscribers, err := h.Subscriptions.ListForChannel(ctx, owner.ID)
	if err != nil {
		logger.Error("load channel subscribers", "channelId", owner.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return
	}

	// An owner previewing their own draft is not a view.
	if video.IsPublished {
		go h.recordView(logger, video.ID, viewerID)
	}

	respondJSON(ctx, w, http.StatusOK, videoquery.ShapeDetail(video, owner, likes, subscribers, viewerID))
}

// recordView runs detached from the request: a failed side effect is logged
// and dropped, never surfaced to the viewer.
func (h VideoHandler) recordView(logger *slog.Logger, videoID, viewerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Error("increment views", "videoId", videoID, "error", err)
	}

	if viewerID == "" {
		return
	}
	if err := h.Users.RecordWatch(ctx, viewerID, videoID); err != nil {
		logger.Error("record watch history", "videoId", videoID, "userId", viewerID, "error", err)
	}
}

// Create handles POST /api/v1/videos multipart upload requests. The media is
// spooled to local disk and handed to the ingestor; the response returns
// immediately with the video in pending state.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	viewerID := middleware.ViewerID(ctx)

	if h.Ingestor == nil {
		logger.Error("media ingestor unavailable")
		respondError(ctx, w, http.StatusServiceUnavailable, "uploads are temporarily unavailable")
		return
	}

	maxSize := h.MaxUploadSize
	if maxSize <= 0 {
		maxSize = 1 << 30
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.Warn("invalid multipart upload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid or oversized upload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))

	mediaFile, mediaHeader, err := r.FormFile("media")
	if err != nil {
		logger.Warn("upload missing media part", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "media file is required")
		return
	}
	defer mediaFile.Close()

	videoID := uuid.NewString()

	mediaPath, err := h.spool(mediaFile, mediaHeader.Filename)
	if err != nil {
		logger.Error("spool media upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to accept upload")
		return
	}

	job := media.UploadJob{
		VideoID:   videoID,
		MediaPath: mediaPath,
		MediaName: "source" + safeExt(mediaHeader.Filename, ".mp4"),
	}

	if thumbFile, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		defer thumbFile.Close()
		thumbPath, err := h.spool(thumbFile, thumbHeader.Filename)
		if err != nil {
			logger.Warn("spool thumbnail upload", "error", err)
		} else {
			job.ThumbnailPath = thumbPath
			job.ThumbnailName = "thumbnail" + safeExt(thumbHeader.Filename, ".jpg")
		}
	}

	now := h.now()
	video := models.Video{
		ID:          videoID,
		OwnerID:     viewerID,
		Title:       title,
		Description: description,
		MediaStatus: models.MediaStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.discard(logger, job)
		logger.Error("create video record", "error", err)
		respondError(ctx, w, storeErrorStatus(err), "unable to create video")
		return
	}

	if err := h.Ingestor.Enqueue(ctx, job); err != nil {
		h.discard(logger, job)
		logger.Error("enqueue upload ingestion", "videoId", videoID, "error", err)
		if delErr := h.Videos.Delete(ctx, videoID); delErr != nil {
			logger.Error("roll back video record", "videoId", videoID, "error", delErr)
		}
		respondError(ctx, w, http.StatusServiceUnavailable, "uploads are temporarily unavailable")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{
		"id":          video.ID,
		"title":       video.Title,
		"description": video.Description,
		"mediaStatus": video.MediaStatus,
		"isPublished": video.IsPublished,
		"createdAt":   video.CreatedAt,
	})
}

// Update handles PATCH /api/v1/videos/{videoID} requests. Only the owner may
// edit a video's details.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid video update payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	title := video.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			respondError(ctx, w, http.StatusBadRequest, "title cannot be empty")
			return
		}
	}
	description := video.Description
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}

	if err := h.Videos.UpdateDetails(ctx, video.ID, title, description); err != nil {
		logger.Error("update video details", "videoId", video.ID, "error", err)
		respondError(ctx, w, storeErrorStatus(err), "unable to update video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"id":          video.ID,
		"title":       title,
		"description": description,
	})
}

// TogglePublish handles PATCH /api/v1/videos/{videoID}/publish requests.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	if !video.IsPublished && video.MediaStatus != models.MediaStatusReady {
		respondError(ctx, w, http.StatusConflict, "media is not ready to publish")
		return
	}

	published := !video.IsPublished
	if err := h.Videos.SetPublished(ctx, video.ID, published); err != nil {
		logger.Error("toggle publication", "videoId", video.ID, "error", err)
		respondError(ctx, w, storeErrorStatus(err), "unable to update publication state")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"id":          video.ID,
		"isPublished": published,
	})
}

// Delete handles DELETE /api/v1/videos/{videoID} requests.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		logger.Error("delete video", "videoId", video.ID, "error", err)
		respondError(ctx, w, storeErrorStatus(err), "unable to delete video")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedVideo loads the routed video and enforces that the viewer owns it.
func (h VideoHandler) ownedVideo(w http.ResponseWriter, r *http.Request) (models.Video, bool) {
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

	if video.OwnerID != viewerID {
		respondError(ctx, w, http.StatusForbidden, "you do not own this video")
		return models.Video{}, false
	}

	return video, true
}

func (h VideoHandler) spool(src multipart.File, filename string) (string, error) {
	dir := h.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "spool-*"+safeExt(filename, ""))
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write spool file: %w", err)
	}

	return f.Name(), nil
}

func (h VideoHandler) discard(logger *slog.Logger, job media.UploadJob) {
	for _, p := range []string{job.MediaPath, job.ThumbnailPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("remove spooled upload", "path", p, "error", err)
		}
	}
}

// safeExt keeps only a plain file extension from untrusted upload names.
func safeExt(filename, fallback string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "" || strings.ContainsAny(ext, `/\`) || len(ext) > 8 {
		return fallback
	}
	return ext
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
