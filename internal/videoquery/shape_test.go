package videoquery

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cliptube/backend/internal/models"
)

func fixtureVideo() (models.Video, models.User) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	video := models.Video{
		ID:           "video-1",
		OwnerID:      "owner-1",
		Title:        "Fermentation basics",
		Description:  "Sourdough starters from scratch.",
		MediaURL:     "https://cdn.example.com/video-1.mp4",
		ThumbnailURL: "https://cdn.example.com/video-1.jpg",
		Duration:     613.4,
		Views:        42,
		IsPublished:  true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	owner := models.User{
		ID:        "owner-1",
		Username:  "breadlab",
		AvatarURL: "https://cdn.example.com/breadlab.png",
	}
	return video, owner
}

func TestShapeDetailLikes(t *testing.T) {
	video, owner := fixtureVideo()
	likes := []models.Like{
		{ID: "l1", VideoID: video.ID, UserID: "viewer-1"},
		{ID: "l2", VideoID: video.ID, UserID: "other-1"},
		{ID: "l3", VideoID: video.ID, UserID: "other-2"},
	}

	detail := ShapeDetail(video, owner, likes, nil, "viewer-1")

	if detail.LikesCount != 3 {
		t.Fatalf("expected likesCount 3, got %d", detail.LikesCount)
	}
	if !detail.IsLiked {
		t.Fatal("expected isLiked for viewer present in like set")
	}

	detail = ShapeDetail(video, owner, nil, nil, "viewer-1")
	if detail.LikesCount != 0 || detail.IsLiked {
		t.Fatalf("expected zero likes and isLiked=false, got count=%d liked=%v", detail.LikesCount, detail.IsLiked)
	}
}

func TestShapeDetailSubscribers(t *testing.T) {
	video, owner := fixtureVideo()
	subscribers := []models.Subscription{
		{ID: "s1", SubscriberID: "viewer-1", ChannelID: owner.ID},
		{ID: "s2", SubscriberID: "a", ChannelID: owner.ID},
		{ID: "s3", SubscriberID: "b", ChannelID: owner.ID},
		{ID: "s4", SubscriberID: "c", ChannelID: owner.ID},
		{ID: "s5", SubscriberID: "d", ChannelID: owner.ID},
	}

	detail := ShapeDetail(video, owner, nil, subscribers, "viewer-1")

	if detail.Owner.SubscribersCount != 5 {
		t.Fatalf("expected subscribersCount 5, got %d", detail.Owner.SubscribersCount)
	}
	if !detail.Owner.IsSubscribed {
		t.Fatal("expected isSubscribed for viewer present in subscriber set")
	}

	detail = ShapeDetail(video, owner, nil, subscribers, "stranger")
	if detail.Owner.IsSubscribed {
		t.Fatal("expected isSubscribed=false for viewer absent from subscriber set")
	}
}

func TestShapeDetailAnonymousViewerFlagsFalse(t *testing.T) {
	video, owner := fixtureVideo()
	likes := []models.Like{{ID: "l1", VideoID: video.ID, UserID: "someone"}}
	subscribers := []models.Subscription{{ID: "s1", SubscriberID: "someone", ChannelID: owner.ID}}

	detail := ShapeDetail(video, owner, likes, subscribers, "")

	if detail.IsLiked || detail.Owner.IsSubscribed {
		t.Fatalf("expected false flags without a viewer identity, got liked=%v subscribed=%v", detail.IsLiked, detail.Owner.IsSubscribed)
	}

	// Flags must serialize as explicit false, not disappear.
	payload, err := json.Marshal(detail)
	if err != nil {
		t.Fatalf("marshal detail: %v", err)
	}
	if !strings.Contains(string(payload), `"isLiked":false`) || !strings.Contains(string(payload), `"isSubscribed":false`) {
		t.Fatalf("expected explicit false flags in payload: %s", payload)
	}
}

func TestShapeDetailProjectsPublicFieldsOnly(t *testing.T) {
	video, owner := fixtureVideo()
	owner.Email = "breadlab@example.com"
	owner.Password = "bcrypt-hash"

	detail := ShapeDetail(video, owner, nil, nil, "")

	payload, err := json.Marshal(detail)
	if err != nil {
		t.Fatalf("marshal detail: %v", err)
	}

	for _, leak := range []string{"bcrypt-hash", "breadlab@example.com", "ownerId", "password"} {
		if strings.Contains(string(payload), leak) {
			t.Fatalf("projection leaked %q: %s", leak, payload)
		}
	}
}

func TestShapeOwnerCollapsesToSingleObject(t *testing.T) {
	_, owner := fixtureVideo()

	summary := ShapeOwner(owner, nil, "")

	if summary.ID != owner.ID || summary.Username != owner.Username || summary.AvatarURL != owner.AvatarURL {
		t.Fatalf("owner summary mismatch: %+v", summary)
	}
	if summary.SubscribersCount != 0 || summary.IsSubscribed {
		t.Fatalf("expected empty subscriber stats, got %+v", summary)
	}
}
