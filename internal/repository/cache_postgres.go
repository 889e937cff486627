package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/CodingGarden/yt-caption-downloader/internal/errors"
	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

// postgresCacheRepository implements CacheRepository using PostgreSQL
type postgresCacheRepository struct {
	pool Pool
}

// NewPostgresCacheRepository creates a CacheRepository backed by a pgx pool
func NewPostgresCacheRepository(pool Pool) CacheRepository {
	return &postgresCacheRepository{
		pool: pool,
	}
}

// GetChannelState retrieves the marker and ordered item sequence of a channel
func (r *postgresCacheRepository) GetChannelState(ctx context.Context, channelID string) (*model.ChannelState, error) {
	if channelID == "" {
		return nil, invalidArg("channel ID is required")
	}

	state := emptyState(channelID)

	sql := "SELECT last_video_id FROM channel_markers WHERE channel_id = $1"
	err := r.pool.QueryRow(ctx, sql, channelID).Scan(&state.LastVideoID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, handlePostgreSQLError(err, "failed to get channel marker")
	}

	sql = "SELECT video_id, id_kind, kind, etag FROM channel_videos WHERE channel_id = $1 ORDER BY position"
	rows, err := r.pool.Query(ctx, sql, channelID)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to get channel videos")
	}
	defer rows.Close()

	for rows.Next() {
		var video model.VideoItem
		if err := rows.Scan(&video.ID.VideoID, &video.ID.Kind, &video.Kind, &video.Etag); err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan channel video row")
		}
		state.Videos = append(state.Videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate channel video rows")
	}

	return state, nil
}

// SaveChannelState replaces the cached sequence and marker within a transaction
func (r *postgresCacheRepository) SaveChannelState(ctx context.Context, state *model.ChannelState) error {
	if err := validateState(state); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return handlePostgreSQLError(err, "failed to begin transaction")
	}

	if err := r.saveInTx(ctx, tx, state); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return handlePostgreSQLError(err, "failed to commit channel state")
	}
	return nil
}

func (r *postgresCacheRepository) saveInTx(ctx context.Context, tx pgx.Tx, state *model.ChannelState) error {
	sql := "DELETE FROM channel_videos WHERE channel_id = $1"
	if _, err := tx.Exec(ctx, sql, state.ChannelID); err != nil {
		return handlePostgreSQLError(err, "failed to clear channel videos")
	}

	if len(state.Videos) > 0 {
		rows := make([][]any, len(state.Videos))
		for i, video := range state.Videos {
			rows[i] = []any{state.ChannelID, i, video.ID.VideoID, video.ID.Kind, video.Kind, video.Etag}
		}

		// COPY FROM keeps full backfills of large channels to one round trip
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"channel_videos"}, videoColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return handlePostgreSQLError(err, "failed to store channel videos using COPY FROM")
		}
	}

	if state.LastVideoID == "" {
		return nil
	}

	sql = `INSERT INTO channel_markers (channel_id, last_video_id, updated_at) VALUES ($1, $2, now())
ON CONFLICT (channel_id) DO UPDATE SET last_video_id = EXCLUDED.last_video_id, updated_at = now()`
	if _, err := tx.Exec(ctx, sql, state.ChannelID, state.LastVideoID); err != nil {
		return handlePostgreSQLError(err, "failed to store channel marker")
	}
	return nil
}

// ListChannelStates lists every channel with a marker, with its cached video count
func (r *postgresCacheRepository) ListChannelStates(ctx context.Context) ([]*model.ChannelSummary, error) {
	sql := `SELECT m.channel_id, m.last_video_id, m.updated_at, COUNT(v.video_id)
FROM channel_markers m LEFT JOIN channel_videos v ON v.channel_id = m.channel_id
GROUP BY m.channel_id, m.last_video_id, m.updated_at ORDER BY m.channel_id`
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to list channels")
	}
	defer rows.Close()

	summaries := []*model.ChannelSummary{}
	for rows.Next() {
		var summary model.ChannelSummary
		if err := rows.Scan(&summary.ChannelID, &summary.LastVideoID, &summary.UpdatedAt, &summary.VideoCount); err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan channel row")
		}
		summaries = append(summaries, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate channel rows")
	}

	return summaries, nil
}

// Close closes the connection pool
func (r *postgresCacheRepository) Close() error {
	r.pool.Close()
	return nil
}

func invalidArg(message string) *apperrors.AppError {
	return apperrors.New(apperrors.CodeInvalidArg, message)
}
