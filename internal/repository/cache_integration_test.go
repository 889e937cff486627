//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodingGarden/yt-caption-downloader/internal/model"
	"github.com/CodingGarden/yt-caption-downloader/internal/repository"
	"github.com/CodingGarden/yt-caption-downloader/internal/repository/common"
)

func item(id string) model.VideoItem {
	return model.VideoItem{
		Kind: "youtube#searchResult",
		Etag: "etag-" + id,
		ID:   model.VideoRef{Kind: "youtube#video", VideoID: id},
	}
}

func TestPostgresCacheRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	pool := common.SetupTestDB(t)
	repo := repository.NewPostgresCacheRepository(pool)
	ctx := context.Background()

	t.Run("unknown channel is empty", func(t *testing.T) {
		state, err := repo.GetChannelState(ctx, "UCnew")
		require.NoError(t, err)
		assert.Empty(t, state.LastVideoID)
		assert.Empty(t, state.Videos)
	})

	t.Run("save then load keeps order", func(t *testing.T) {
		saved := &model.ChannelState{
			ChannelID:   "UC1",
			LastVideoID: "C",
			Videos:      []model.VideoItem{item("C"), item("B"), item("A")},
		}
		require.NoError(t, repo.SaveChannelState(ctx, saved))

		got, err := repo.GetChannelState(ctx, "UC1")
		require.NoError(t, err)
		assert.Equal(t, saved, got)
	})

	t.Run("save replaces the sequence", func(t *testing.T) {
		require.NoError(t, repo.SaveChannelState(ctx, &model.ChannelState{
			ChannelID:   "UC1",
			LastVideoID: "D",
			Videos:      []model.VideoItem{item("D"), item("C"), item("B"), item("A")},
		}))

		got, err := repo.GetChannelState(ctx, "UC1")
		require.NoError(t, err)
		assert.Equal(t, "D", got.LastVideoID)
		assert.Len(t, got.Videos, 4)
		assert.Equal(t, "D", got.Videos[0].VideoID())
	})

	t.Run("list summarizes channels", func(t *testing.T) {
		require.NoError(t, repo.SaveChannelState(ctx, &model.ChannelState{
			ChannelID:   "UC2",
			LastVideoID: "X",
			Videos:      []model.VideoItem{item("X")},
		}))

		summaries, err := repo.ListChannelStates(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "UC1", summaries[0].ChannelID)
		assert.Equal(t, 4, summaries[0].VideoCount)
		assert.Equal(t, "UC2", summaries[1].ChannelID)
		assert.Equal(t, 1, summaries[1].VideoCount)
		assert.False(t, summaries[0].UpdatedAt.IsZero())
	})
}
