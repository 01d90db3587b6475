package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/handlers"
	"github.com/cliptube/backend/internal/media"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

// Credential endpoints get a tight per-IP budget; everything else is
// bounded by authentication.
const (
	authRateRequests = 10
	authRateWindow   = time.Minute
	authRateBurst    = 5
	authRateTTL      = 10 * time.Minute
)

// buildDependencies wires repositories, the session manager, and the media
// pipeline into the handler set served by the router. The returned cleanup
// drains the upload ingestor and must run before the process exits.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.RouterDeps, func(context.Context) error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)

	signer := auth.NewTokenSigner(cfg.AuthSigningSecret)
	sessions := auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, signer, repositories.NewPostgresSessionStore(pool))

	assets, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.RouterDeps{}, nil, err
	}

	prober := media.NewFFProbeProber(cfg.FFProbePath, cfg.ProbeTimeout)
	ingestor := media.NewUploadIngestor(prober, assets, videos, media.UploadIngestorConfig{
		QueueSize: cfg.IngestQueue,
		Workers:   cfg.IngestWorkers,
	}, logger)

	authLimiter := middleware.NewIPRateLimiter(authRateRequests, authRateWindow, authRateBurst, authRateTTL)

	deps := handlers.RouterDeps{
		Logger:   logger,
		Verifier: sessions,
		Auth: handlers.AuthHandler{
			Users:    users,
			Sessions: sessions,
			Limiter:  authLimiter,
		},
		Videos: handlers.VideoHandler{
			Videos:        videos,
			Users:         users,
			Likes:         likes,
			Subscriptions: subscriptions,
			Ingestor:      ingestor,
			UploadDir:     cfg.UploadDir,
			MaxUploadSize: cfg.MaxUploadSize,
		},
		Likes: handlers.LikeHandler{
			Videos: videos,
			Likes:  likes,
		},
		Channels: handlers.ChannelHandler{
			Users:         users,
			Subscriptions: subscriptions,
		},
		Comments: handlers.CommentHandler{
			Videos:   videos,
			Comments: comments,
		},
		Profile: handlers.ProfileHandler{
			Users: users,
		},
		Health: handlers.HealthHandler{},
	}

	cleanup := func(ctx context.Context) error {
		return ingestor.Shutdown(ctx)
	}

	return deps, cleanup, nil
}
