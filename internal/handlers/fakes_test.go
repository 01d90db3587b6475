package handlers

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/media"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/videoquery"
)

type fakeUserStore struct {
	mu      sync.Mutex
	users   map[string]models.User
	watches []models.WatchEntry
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) RecordWatch(_ context.Context, userID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.watches {
		if entry.UserID == userID && entry.VideoID == videoID {
			s.watches = append(s.watches[:i], s.watches[i+1:]...)
			break
		}
	}
	s.watches = append([]models.WatchEntry{{UserID: userID, VideoID: videoID, WatchedAt: time.Now().UTC()}}, s.watches...)
	return nil
}

func (s *fakeUserStore) ListWatchHistory(_ context.Context, userID string, limit int) ([]models.WatchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []models.WatchEntry
	for _, entry := range s.watches {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (s *fakeUserStore) watchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watches)
}

type fakeVideoStore struct {
	mu         sync.Mutex
	videos     map[string]models.Video
	listResult []videoquery.VideoSummary
	listTotal  int
	listErr    error
	lastQuery  videoquery.ListQuery
	lastViewer string
	views      map[string]int
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video), views: make(map[string]int)}
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.videos[video.ID]; exists {
		return repositories.ErrConflict
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) Get(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) List(_ context.Context, q videoquery.ListQuery, viewerID string) ([]videoquery.VideoSummary, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	s.lastViewer = viewerID
	return s.listResult, s.listTotal, s.listErr
}

func (s *fakeVideoStore) UpdateDetails(_ context.Context, id, title, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Title = title
	video.Description = description
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) SetPublished(_ context.Context, id string, published bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.IsPublished = published
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	s.views[id]++
	return nil
}

func (s *fakeVideoStore) viewCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views[id]
}

type fakeLikeStore struct {
	mu    sync.Mutex
	likes map[string][]models.Like
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[string][]models.Like)}
}

func (s *fakeLikeStore) Toggle(_ context.Context, like models.Like) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.likes[like.VideoID]
	for i, l := range existing {
		if l.UserID == like.UserID {
			s.likes[like.VideoID] = append(existing[:i], existing[i+1:]...)
			return false, nil
		}
	}
	s.likes[like.VideoID] = append(existing, like)
	return true, nil
}

func (s *fakeLikeStore) ListForVideo(_ context.Context, videoID string) ([]models.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Like(nil), s.likes[videoID]...), nil
}

type fakeSubscriptionStore struct {
	mu   sync.Mutex
	subs map[string][]models.Subscription
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string][]models.Subscription)}
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, sub models.Subscription) (bool, error) {
	if sub.SubscriberID == sub.ChannelID {
		return false, repositories.ErrSelfSubscription
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.subs[sub.ChannelID]
	for i, candidate := range existing {
		if candidate.SubscriberID == sub.SubscriberID {
			s.subs[sub.ChannelID] = append(existing[:i], existing[i+1:]...)
			return false, nil
		}
	}
	s.subs[sub.ChannelID] = append(existing, sub)
	return true, nil
}

func (s *fakeSubscriptionStore) ListForChannel(_ context.Context, channelID string) ([]models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Subscription(nil), s.subs[channelID]...), nil
}

type fakeCommentStore struct {
	mu       sync.Mutex
	comments map[string]models.Comment
	order    []string
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment)}
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = comment
	s.order = append([]string{comment.ID}, s.order...)
	return nil
}

func (s *fakeCommentStore) Get(_ context.Context, id string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) Update(_ context.Context, id, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Body = body
	s.comments[id] = comment
	return nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	for i, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeCommentStore) ListForVideo(_ context.Context, videoID string, limit, offset int) ([]models.Comment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Comment
	for _, id := range s.order {
		if c := s.comments[id]; c.VideoID == videoID {
			all = append(all, c)
		}
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

type fakeIngestor struct {
	mu   sync.Mutex
	jobs []media.UploadJob
	err  error
}

func (f *fakeIngestor) Enqueue(_ context.Context, job media.UploadJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func testUser(id, username, email, passwordHash string) models.User {
	now := time.Now().UTC()
	return models.User{
		ID:        id,
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testVideo(id, ownerID, title string, published bool) models.Video {
	now := time.Now().UTC()
	return models.Video{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: "about " + title,
		MediaURL:    "https://cdn.example.com/" + id + ".mp4",
		MediaStatus: models.MediaStatusReady,
		IsPublished: published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newTestSessionManager(t *testing.T) *auth.Manager {
	t.Helper()
	signer := auth.NewTokenSigner("handler-test-secret")
	return auth.NewManager(time.Minute, time.Hour, signer, auth.NewInMemorySessionStore())
}

// withViewer attaches an authenticated viewer to the request, the way the
// auth middleware would.
func withViewer(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithViewerID(r.Context(), userID))
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func waitFor(t *testing.T, predicate func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if predicate() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
