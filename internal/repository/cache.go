package repository

import (
	"context"

	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

// CacheRepository stores per-channel ingestion state keyed by channel ID
type CacheRepository interface {
	// GetChannelState returns the marker and cached item sequence for a channel.
	// A channel that was never saved yields an empty state, not an error.
	GetChannelState(ctx context.Context, channelID string) (*model.ChannelState, error)

	// SaveChannelState replaces the channel's item sequence and marker in one transaction.
	// An empty LastVideoID leaves the stored marker untouched.
	SaveChannelState(ctx context.Context, state *model.ChannelState) error

	// ListChannelStates returns a summary of every channel with a stored marker
	ListChannelStates(ctx context.Context) ([]*model.ChannelSummary, error)

	// Close releases the underlying connection
	Close() error
}

// videoColumns is the column order used by both cache implementations
var videoColumns = []string{"channel_id", "position", "video_id", "id_kind", "kind", "etag"}

// validateState checks the invariants a saved channel state must hold
func validateState(state *model.ChannelState) error {
	if state == nil || state.ChannelID == "" {
		return invalidArg("channel ID is required")
	}

	seen := make(map[string]bool, len(state.Videos))
	for _, video := range state.Videos {
		id := video.VideoID()
		if id == "" {
			return invalidArg("video item without video ID")
		}
		if seen[id] {
			return invalidArg("duplicate video ID in sequence: " + id)
		}
		seen[id] = true
	}
	return nil
}

func emptyState(channelID string) *model.ChannelState {
	return &model.ChannelState{
		ChannelID: channelID,
		Videos:    []model.VideoItem{},
	}
}
