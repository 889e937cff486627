package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/CodingGarden/yt-caption-downloader/internal/errors"
	"github.com/CodingGarden/yt-caption-downloader/internal/migrations"
	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

// sqliteCacheRepository implements CacheRepository on an embedded SQLite file
type sqliteCacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteCache opens (creating if needed) the SQLite cache at path and migrates it.
// The special path ":memory:" gives a private in-memory cache.
func OpenSQLiteCache(path string) (CacheRepository, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create cache directory")
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to open sqlite cache")
	}
	// One connection serializes writers and keeps ":memory:" on a single database
	db.SetMaxOpenConns(1)

	if err := migrations.UpSQLite(db); err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to migrate sqlite cache")
	}

	return NewSQLiteCacheRepository(db), nil
}

// NewSQLiteCacheRepository wraps an already migrated SQLite handle
func NewSQLiteCacheRepository(db *sql.DB) CacheRepository {
	return &sqliteCacheRepository{
		db:  db,
		now: time.Now,
	}
}

// GetChannelState retrieves the marker and ordered item sequence of a channel
func (r *sqliteCacheRepository) GetChannelState(ctx context.Context, channelID string) (*model.ChannelState, error) {
	if channelID == "" {
		return nil, invalidArg("channel ID is required")
	}

	state := emptyState(channelID)

	err := r.db.QueryRowContext(ctx,
		"SELECT last_video_id FROM channel_markers WHERE channel_id = ?", channelID,
	).Scan(&state.LastVideoID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to get channel marker")
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT video_id, id_kind, kind, etag FROM channel_videos WHERE channel_id = ? ORDER BY position", channelID,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to get channel videos")
	}
	defer rows.Close()

	for rows.Next() {
		var video model.VideoItem
		if err := rows.Scan(&video.ID.VideoID, &video.ID.Kind, &video.Kind, &video.Etag); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan channel video row")
		}
		state.Videos = append(state.Videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate channel video rows")
	}

	return state, nil
}

// SaveChannelState replaces the cached sequence and marker within a transaction
func (r *sqliteCacheRepository) SaveChannelState(ctx context.Context, state *model.ChannelState) error {
	if err := validateState(state); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to begin transaction")
	}

	if err := r.saveInTx(ctx, tx, state); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to commit channel state")
	}
	return nil
}

func (r *sqliteCacheRepository) saveInTx(ctx context.Context, tx *sql.Tx, state *model.ChannelState) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM channel_videos WHERE channel_id = ?", state.ChannelID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to clear channel videos")
	}

	if len(state.Videos) > 0 {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
			"INSERT INTO channel_videos (%s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?)",
			videoColumns[0], videoColumns[1], videoColumns[2], videoColumns[3], videoColumns[4], videoColumns[5],
		))
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to prepare channel video insert")
		}
		defer stmt.Close()

		for i, video := range state.Videos {
			if _, err := stmt.ExecContext(ctx, state.ChannelID, i, video.ID.VideoID, video.ID.Kind, video.Kind, video.Etag); err != nil {
				return apperrors.Wrap(err, apperrors.CodeInternal, "failed to store channel video "+video.ID.VideoID)
			}
		}
	}

	if state.LastVideoID == "" {
		return nil
	}

	_, err := tx.ExecContext(ctx, `INSERT INTO channel_markers (channel_id, last_video_id, updated_at) VALUES (?, ?, ?)
ON CONFLICT (channel_id) DO UPDATE SET last_video_id = excluded.last_video_id, updated_at = excluded.updated_at`,
		state.ChannelID, state.LastVideoID, r.now().Unix(),
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to store channel marker")
	}
	return nil
}

// ListChannelStates lists every channel with a marker, with its cached video count
func (r *sqliteCacheRepository) ListChannelStates(ctx context.Context) ([]*model.ChannelSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT m.channel_id, m.last_video_id, m.updated_at, COUNT(v.video_id)
FROM channel_markers m LEFT JOIN channel_videos v ON v.channel_id = m.channel_id
GROUP BY m.channel_id, m.last_video_id, m.updated_at ORDER BY m.channel_id`)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list channels")
	}
	defer rows.Close()

	summaries := []*model.ChannelSummary{}
	for rows.Next() {
		var (
			summary   model.ChannelSummary
			updatedAt int64
		)
		if err := rows.Scan(&summary.ChannelID, &summary.LastVideoID, &updatedAt, &summary.VideoCount); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan channel row")
		}
		summary.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		summaries = append(summaries, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate channel rows")
	}

	return summaries, nil
}

// Close closes the database handle
func (r *sqliteCacheRepository) Close() error {
	return r.db.Close()
}
