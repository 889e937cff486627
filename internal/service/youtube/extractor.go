package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	apperrors "github.com/CodingGarden/yt-caption-downloader/internal/errors"
	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

// TranscriptExtractor fetches the caption track of a video
type TranscriptExtractor interface {
	ExtractTranscript(ctx context.Context, videoID string) (*model.Transcript, error)
}

type captionsBlob struct {
	PlayerCaptionsTracklistRenderer struct {
		CaptionTracks []captionTrack `json:"captionTracks"`
	} `json:"playerCaptionsTracklistRenderer"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// browserHeaders makes the watch page serve the same markup a desktop browser gets
func browserHeaders() http.Header {
	return http.Header{
		"Accept":          {"text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"},
		"Accept-Language": {"en-US,en;q=0.9"},
		"User-Agent":      {"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"},
	}
}

// WatchURL returns the watch page address of a video
func (c *Client) WatchURL(videoID string) string {
	return c.watchURL + "?v=" + url.QueryEscape(videoID)
}

// ExtractTranscript downloads the first caption track of a video and renders it as SRT
func (c *Client) ExtractTranscript(ctx context.Context, videoID string) (*model.Transcript, error) {
	if videoID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "video ID is required")
	}

	pageURL := c.WatchURL(videoID)
	trackURL, err := c.captionTrackURL(ctx, videoID, pageURL)
	if err != nil {
		return nil, err
	}

	header := browserHeaders()
	header.Set("Referer", pageURL)

	status, raw, err := c.doRequest(ctx, trackURL, header)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, apperrors.New(apperrors.CodeExternal, fmt.Sprintf("timed-text request for %s returned status %d", videoID, status))
	}

	cues, err := ParseTimedText(raw)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "invalid timed-text document for "+videoID)
	}
	if len(cues) == 0 {
		return nil, apperrors.Wrap(ErrNoCaptions, apperrors.CodeNoCaptions, "empty timed-text document for "+videoID)
	}

	return &model.Transcript{
		VideoID: videoID,
		RawXML:  string(raw),
		SRT:     RenderSRT(cues),
		Cues:    cues,
	}, nil
}

// captionTrackURL fetches the watch page and resolves the first track's baseUrl
func (c *Client) captionTrackURL(ctx context.Context, videoID, pageURL string) (string, error) {
	status, page, err := c.doRequest(ctx, pageURL, browserHeaders())
	if err != nil {
		return "", err
	}
	if !isSuccess(status) {
		return "", apperrors.New(apperrors.CodeExternal, fmt.Sprintf("watch page for %s returned status %d", videoID, status))
	}

	fragment, err := c.locator.Locate(string(page))
	if err != nil {
		if errors.Is(err, ErrNoCaptions) {
			return "", apperrors.Wrap(err, apperrors.CodeNoCaptions, "no caption data in watch page of "+videoID)
		}
		return "", apperrors.Wrap(err, apperrors.CodeExternal, "failed to locate captions of "+videoID)
	}

	var blob captionsBlob
	if err := json.Unmarshal([]byte(fragment), &blob); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal, "failed to parse caption data of "+videoID)
	}

	tracks := blob.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 || tracks[0].BaseURL == "" {
		return "", apperrors.Wrap(ErrNoCaptions, apperrors.CodeNoCaptions, "no caption track for "+videoID)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "invalid watch URL")
	}
	ref, err := url.Parse(tracks[0].BaseURL)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal, "invalid caption track URL for "+videoID)
	}

	return base.ResolveReference(ref).String(), nil
}
