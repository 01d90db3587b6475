package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/videoquery"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	status := video.MediaStatus
	if strings.TrimSpace(status) == "" {
		status = models.MediaStatusPending
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, media_url, thumbnail_url,
                            duration_seconds, media_status, media_size, views, is_published,
                            created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.MediaURL, video.ThumbnailURL,
		video.Duration, status, video.MediaSize, video.Views, video.IsPublished,
		video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// Get fetches a single video record by identifier.
func (r *PostgresVideoRepository) Get(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, title, description, media_url, thumbnail_url,
               duration_seconds, media_status, media_size, views, is_published,
               created_at, updated_at
        FROM videos
        WHERE id = $1
    `, id)

	var video models.Video
	if err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description,
		&video.MediaURL, &video.ThumbnailURL, &video.Duration, &video.MediaStatus,
		&video.MediaSize, &video.Views, &video.IsPublished, &video.CreatedAt, &video.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// likePatternEscaper neutralises LIKE metacharacters in free-text search input.
var likePatternEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List runs the aggregated listing query: published videos matching the
// filter, each with its owner joined and like-derived fields computed, plus a
// separate un-paginated count of all matches.
func (r *PostgresVideoRepository) List(ctx context.Context, q videoquery.ListQuery, viewerID string) ([]videoquery.VideoSummary, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	filters := []string{"v.is_published = TRUE"}
	var filterArgs []any

	if q.Search != "" {
		filterArgs = append(filterArgs, "%"+likePatternEscaper.Replace(q.Search)+"%")
		filters = append(filters, fmt.Sprintf("v.title ILIKE $%d", len(filterArgs)))
	}
	if q.OwnerID != "" {
		filterArgs = append(filterArgs, q.OwnerID)
		filters = append(filters, fmt.Sprintf("v.owner_id = $%d", len(filterArgs)))
	}

	where := strings.Join(filters, " AND ")

	var total int
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM videos v WHERE %s`, where)
	if err := conn.QueryRow(ctx, countSQL, filterArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	direction := "DESC"
	if q.SortAscending {
		direction = "ASC"
	}

	viewerIdx := len(filterArgs) + 1
	listArgs := append(append([]any{}, filterArgs...), viewerID, q.Limit, q.Offset)
	listSQL := fmt.Sprintf(`
        SELECT v.id, v.title, v.description, v.media_url, v.thumbnail_url,
               v.duration_seconds, v.views, v.created_at,
               u.id, u.username, u.avatar_url,
               (SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id) AS likes_count,
               EXISTS (SELECT 1 FROM likes l WHERE l.video_id = v.id AND l.user_id = $%d) AS is_liked
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE %s
        ORDER BY v.%s %s, v.id
        LIMIT $%d OFFSET $%d
    `, viewerIdx, where, q.SortColumn, direction, viewerIdx+1, viewerIdx+2)

	rows, err := conn.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []videoquery.VideoSummary
	for rows.Next() {
		var entry videoquery.VideoSummary
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Description, &entry.MediaURL,
			&entry.ThumbnailURL, &entry.Duration, &entry.Views, &entry.CreatedAt,
			&entry.Owner.ID, &entry.Owner.Username, &entry.Owner.AvatarURL,
			&entry.LikesCount, &entry.IsLiked); err != nil {
			return nil, 0, fmt.Errorf("scan video listing: %w", err)
		}
		videos = append(videos, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate video listing: %w", err)
	}

	return videos, total, nil
}

// UpdateDetails modifies the mutable text fields of a video.
func (r *PostgresVideoRepository) UpdateDetails(ctx context.Context, id, title, description string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, updated_at = NOW()
        WHERE id = $1
    `, id, title, description)
	if err != nil {
		return fmt.Errorf("update video details: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPublished flips the publication flag.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET is_published = $2, updated_at = NOW()
        WHERE id = $1
    `, id, published)
	if err != nil {
		return fmt.Errorf("update publication flag: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video. Dependent likes and comments go with it through
// the schema's cascade rules.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// IncrementViews bumps the view counter as a store-level atomic update so
// concurrent viewers never lose increments to read-modify-write races.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET views = views + 1
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkMediaReady records the uploaded asset locations after successful ingestion.
func (r *PostgresVideoRepository) MarkMediaReady(ctx context.Context, id, mediaURL, thumbnailURL string, duration float64, size int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET media_status = $2,
            media_url = $3,
            thumbnail_url = $4,
            duration_seconds = $5,
            media_size = $6,
            updated_at = NOW()
        WHERE id = $1
    `, id, models.MediaStatusReady, mediaURL, thumbnailURL, duration, size)
	if err != nil {
		return fmt.Errorf("update video media ready: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkMediaFailed records a failed ingestion attempt for the provided video.
func (r *PostgresVideoRepository) MarkMediaFailed(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET media_status = $2,
            media_url = '',
            media_size = 0,
            updated_at = NOW()
        WHERE id = $1
    `, id, models.MediaStatusFailed)
	if err != nil {
		return fmt.Errorf("update video media failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
