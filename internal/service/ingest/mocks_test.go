package ingest

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListNewVideos(ctx context.Context, channelID, lastKnownVideoID string) ([]model.VideoItem, error) {
	args := m.Called(ctx, channelID, lastKnownVideoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoItem), args.Error(1)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractTranscript(ctx context.Context, videoID string) (*model.Transcript, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transcript), args.Error(1)
}

// recordingDelay counts waits and can fail them
type recordingDelay struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (d *recordingDelay) Wait(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.err
}

func (d *recordingDelay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func item(id string) model.VideoItem {
	return model.VideoItem{
		Kind: "youtube#searchResult",
		Etag: "etag-" + id,
		ID:   model.VideoRef{Kind: "youtube#video", VideoID: id},
	}
}

func items(ids ...string) []model.VideoItem {
	result := make([]model.VideoItem, 0, len(ids))
	for _, id := range ids {
		result = append(result, item(id))
	}
	return result
}

func transcript(id string) *model.Transcript {
	return &model.Transcript{
		VideoID: id,
		RawXML:  `<transcript><text start="0" dur="1">` + id + `</text></transcript>`,
		SRT:     "1\n00:00:00,000 --> 00:00:01,000\n" + id + "\n",
		Cues:    []model.Cue{{Start: 0, Duration: 1, End: 1, Text: id}},
	}
}
