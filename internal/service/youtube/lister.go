package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	apperrors "github.com/CodingGarden/yt-caption-downloader/internal/errors"
	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

// searchPageSize is the largest page the search endpoint serves
const searchPageSize = 50

// VideoLister discovers a channel's videos newer than a known marker
type VideoLister interface {
	// ListNewVideos returns search items newest first, up to and including the page
	// holding lastKnownVideoID. An empty lastKnownVideoID lists the whole channel.
	ListNewVideos(ctx context.Context, channelID, lastKnownVideoID string) ([]model.VideoItem, error)
}

type searchResponse struct {
	NextPageToken string            `json:"nextPageToken"`
	Items         []model.VideoItem `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListNewVideos pages through the channel's uploads in publish order until the
// marker shows up or the endpoint has no further page
func (c *Client) ListNewVideos(ctx context.Context, channelID, lastKnownVideoID string) ([]model.VideoItem, error) {
	if channelID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "channel ID is required")
	}

	items := []model.VideoItem{}
	seenTokens := make(map[string]bool)
	pageToken := ""

	for {
		page, err := c.searchPage(ctx, channelID, pageToken)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		if page.NextPageToken == "" || containsVideo(page.Items, lastKnownVideoID) {
			return items, nil
		}

		if seenTokens[page.NextPageToken] {
			return nil, apperrors.New(apperrors.CodeUpstream, "search endpoint repeated page token "+page.NextPageToken)
		}
		seenTokens[page.NextPageToken] = true
		pageToken = page.NextPageToken
	}
}

func (c *Client) searchPage(ctx context.Context, channelID, pageToken string) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "search rate limiter")
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("part", "id")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(searchPageSize))
	params.Set("channelId", channelID)
	params.Set("order", "date")
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	status, body, err := c.doRequest(ctx, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		return nil, apperrors.New(apperrors.CodeUpstream, searchErrorMessage(status, body))
	}

	var page searchResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "failed to parse search response")
	}

	return &page, nil
}

// searchErrorMessage extracts error.message from an error body
func searchErrorMessage(status int, body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	return fmt.Sprintf("search request failed with status %d", status)
}

func containsVideo(items []model.VideoItem, videoID string) bool {
	if videoID == "" {
		return false
	}
	for _, item := range items {
		if item.VideoID() == videoID {
			return true
		}
	}
	return false
}
