package common

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

// MockCacheRepository is a testify mock of repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) GetChannelState(ctx context.Context, channelID string) (*model.ChannelState, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChannelState), args.Error(1)
}

func (m *MockCacheRepository) SaveChannelState(ctx context.Context, state *model.ChannelState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockCacheRepository) ListChannelStates(ctx context.Context) ([]*model.ChannelSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ChannelSummary), args.Error(1)
}

func (m *MockCacheRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTranscriptRepository is a testify mock of repository.TranscriptRepository
type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	args := m.Called(ctx, videoID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTranscriptRepository) Save(ctx context.Context, transcript *model.Transcript) error {
	args := m.Called(ctx, transcript)
	return args.Error(0)
}

func (m *MockTranscriptRepository) Dir(videoID string) string {
	args := m.Called(videoID)
	return args.String(0)
}
