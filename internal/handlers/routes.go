package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/backend/internal/middleware"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Logger   *slog.Logger
	Verifier middleware.TokenVerifier
	Auth     AuthHandler
	Videos   VideoHandler
	Likes    LikeHandler
	Channels ChannelHandler
	Comments CommentHandler
	Profile  ProfileHandler
	Health   HealthHandler
}

// NewRouter assembles the full route table.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(deps.Logger))

	r.Get("/healthz", deps.Health.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", deps.Auth.SignUp)
		r.Post("/auth/login", deps.Auth.Login)
		r.Post("/auth/refresh", deps.Auth.Refresh)
		r.Post("/auth/logout", deps.Auth.Logout)

		// The catalogue is public; a bearer token only enriches it with
		// viewer-relative flags.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(deps.Verifier))
			r.Get("/videos", deps.Videos.List)
			r.Get("/channels/{channelID}", deps.Channels.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Verifier))

			r.Get("/videos/{videoID}", deps.Videos.Get)
			r.Post("/videos", deps.Videos.Create)
			r.Patch("/videos/{videoID}", deps.Videos.Update)
			r.Patch("/videos/{videoID}/publish", deps.Videos.TogglePublish)
			r.Delete("/videos/{videoID}", deps.Videos.Delete)

			r.Post("/videos/{videoID}/like", deps.Likes.Toggle)

			r.Post("/channels/{channelID}/subscribe", deps.Channels.ToggleSubscribe)

			r.Post("/videos/{videoID}/comments", deps.Comments.Create)
			r.Get("/videos/{videoID}/comments", deps.Comments.List)
			r.Patch("/comments/{commentID}", deps.Comments.Update)
			r.Delete("/comments/{commentID}", deps.Comments.Delete)

			r.Get("/me", deps.Profile.Me)
			r.Get("/me/history", deps.Profile.History)
		})
	})

	return r
}
