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
	"github.com/cliptube/backend/internal/videoquery"
)

// ChannelHandler implements channel profiles and the subscribe toggle.
type ChannelHandler struct {
	Users         UserStore
	Subscriptions SubscriptionStore
	NowFunc       func() time.Time
}

// Get handles GET /api/v1/channels/{channelID} requests.
func (h ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	channelID := chi.URLParam(r, "channelID")
	viewerID := middleware.ViewerID(ctx)

	owner, err := h.Users.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		logger.Error("load channel", "channelId", channelID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load channel")
		return
	}

	subscribers, err := h.Subscriptions.ListForChannel(ctx, owner.ID)
	if err != nil {
		logger.Error("load channel subscribers", "channelId", owner.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load channel")
		return
	}

	respondJSON(ctx, w, http.StatusOK, videoquery.ShapeOwner(owner, subscribers, viewerID))
}

// ToggleSubscribe handles POST /api/v1/channels/{channelID}/subscribe
// requests. Subscribing to an already-subscribed channel unsubscribes.
func (h ChannelHandler) ToggleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	channelID := chi.URLParam(r, "channelID")
	viewerID := middleware.ViewerID(ctx)

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		logger.Error("load channel for subscribe", "channelId", channelID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update subscription")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: viewerID,
		ChannelID:    channelID,
		CreatedAt:    h.now(),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSelfSubscription) {
			respondError(ctx, w, http.StatusBadRequest, "you cannot subscribe to your own channel")
			return
		}
		logger.Error("toggle subscription", "channelId", channelID, "userId", viewerID, "error", err)
		respondError(ctx, w, storeErrorStatus(err), "unable to update subscription")
		return
	}

	subscribers, err := h.Subscriptions.ListForChannel(ctx, channelID)
	if err != nil {
		logger.Error("count subscribers", "channelId", channelID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update subscription")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"channelId":        channelID,
		"isSubscribed":     subscribed,
		"subscribersCount": len(subscribers),
	})
}

func (h ChannelHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
