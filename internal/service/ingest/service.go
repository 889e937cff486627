// Package ingest discovers new channel uploads and stores their captions.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/CodingGarden/yt-caption-downloader/internal/errors"
	"github.com/CodingGarden/yt-caption-downloader/internal/model"
	"github.com/CodingGarden/yt-caption-downloader/internal/repository"
	"github.com/CodingGarden/yt-caption-downloader/internal/service/common"
	"github.com/CodingGarden/yt-caption-downloader/internal/service/youtube"
)

// Service drives ingestion runs over tracked channels
type Service interface {
	// Run syncs every channel and returns the joined channel errors after all have run
	Run(ctx context.Context, channelIDs []string) (*model.RunReport, error)
	// SyncChannel discovers, extracts and stores one channel
	SyncChannel(ctx context.Context, channelID string) (*model.ChannelReport, error)
	// Plan reports the new videos of a channel without extracting or storing anything
	Plan(ctx context.Context, channelID string) (*model.ChannelPlan, error)
}

// Option configures the ingest service
type Option func(*ingestService)

// WithDelay sets the pause taken between consecutive caption extractions
func WithDelay(delay common.Delay) Option {
	return func(s *ingestService) {
		s.delay = delay
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *ingestService) {
		s.logger = logger
	}
}

// WithConcurrency sets how many channels are synced in parallel
func WithConcurrency(n int) Option {
	return func(s *ingestService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// ingestService implements Service
type ingestService struct {
	lister      youtube.VideoLister
	extractor   youtube.TranscriptExtractor
	cache       repository.CacheRepository
	transcripts repository.TranscriptRepository
	delay       common.Delay
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
	newRunID    func() string
}

// NewService creates a new ingest service
func NewService(
	lister youtube.VideoLister,
	extractor youtube.TranscriptExtractor,
	cache repository.CacheRepository,
	transcripts repository.TranscriptRepository,
	opts ...Option,
) Service {
	s := &ingestService{
		lister:      lister,
		extractor:   extractor,
		cache:       cache,
		transcripts: transcripts,
		delay:       common.NewRandomDelay(5*time.Second, 10*time.Second),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		concurrency: 1,
		now:         time.Now,
		newRunID:    uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run syncs channels in the given order, at most concurrency at a time.
// A failing channel never stops the others. A repeated channel ID is synced once,
// so no channel is ever processed by two workers.
func (s *ingestService) Run(ctx context.Context, channelIDs []string) (*model.RunReport, error) {
	channelIDs = uniqueChannelIDs(channelIDs)
	report := &model.RunReport{
		ID:        s.newRunID(),
		StartedAt: s.now(),
		Channels:  make([]*model.ChannelReport, len(channelIDs)),
	}
	logger := s.logger.With(slog.String("run_id", report.ID))
	logger.Info("ingestion run started", slog.Int("channels", len(channelIDs)), slog.Int("concurrency", s.concurrency))

	errs := make([]error, len(channelIDs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, channelID := range channelIDs {
		g.Go(func() error {
			channelReport, err := s.syncChannel(ctx, logger, channelID)
			report.Channels[i] = channelReport
			if err != nil {
				errs[i] = fmt.Errorf("channel %s: %w", channelID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.now()
	err := errors.Join(errs...)

	logger.Info("ingestion run finished",
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
		slog.Bool("ok", err == nil),
	)

	return report, err
}

func uniqueChannelIDs(channelIDs []string) []string {
	seen := make(map[string]bool, len(channelIDs))
	unique := make([]string, 0, len(channelIDs))
	for _, id := range channelIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}

// SyncChannel discovers, extracts and stores one channel
func (s *ingestService) SyncChannel(ctx context.Context, channelID string) (*model.ChannelReport, error) {
	return s.syncChannel(ctx, s.logger, channelID)
}

func (s *ingestService) syncChannel(ctx context.Context, logger *slog.Logger, channelID string) (*model.ChannelReport, error) {
	start := s.now()
	report := &model.ChannelReport{ChannelID: channelID}
	logger = logger.With(slog.String("channel_id", channelID))

	err := s.syncInto(ctx, logger, report)
	report.Duration = s.now().Sub(start)

	if err != nil {
		report.Error = err.Error()
		logger.Error("channel sync failed", slog.Any("error", err))
		return report, err
	}

	logger.Info("channel synced",
		slog.Int("new_videos", report.NewVideos),
		slog.Int("extracted", report.Extracted),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", len(report.Failed)),
		slog.String("marker", report.Marker),
	)
	return report, nil
}

func (s *ingestService) syncInto(ctx context.Context, logger *slog.Logger, report *model.ChannelReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	state, newItems, err := s.discover(ctx, report.ChannelID)
	if err != nil {
		return err
	}

	merged := make([]model.VideoItem, 0, len(newItems)+len(state.Videos))
	merged = append(merged, newItems...)
	merged = append(merged, state.Videos...)

	report.NewVideos = len(newItems)
	report.TotalVideos = len(merged)
	logger.Info("new videos found", slog.Int("count", len(newItems)), slog.Int("cached", len(state.Videos)))

	if err := s.extractMissing(ctx, logger, merged, report); err != nil {
		return err
	}

	if len(merged) == 0 {
		// Nothing ever listed: there is no newest video to use as marker
		logger.Info("channel has no videos, leaving cache untouched")
		report.Marker = state.LastVideoID
		return nil
	}

	next := &model.ChannelState{
		ChannelID:   report.ChannelID,
		LastVideoID: merged[0].VideoID(),
		Videos:      merged,
	}
	if err := s.cache.SaveChannelState(ctx, next); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to save channel state")
	}
	report.Marker = next.LastVideoID

	return nil
}

// discover loads the cached state and returns the listed items it does not hold yet, newest first
func (s *ingestService) discover(ctx context.Context, channelID string) (*model.ChannelState, []model.VideoItem, error) {
	state, err := s.cache.GetChannelState(ctx, channelID)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load channel state")
	}

	listed, err := s.lister.ListNewVideos(ctx, channelID, state.LastVideoID)
	if err != nil {
		return nil, nil, err
	}

	known := make(map[string]bool, len(state.Videos)+len(listed))
	for _, video := range state.Videos {
		known[video.VideoID()] = true
	}

	newItems := make([]model.VideoItem, 0, len(listed))
	for _, video := range listed {
		id := video.VideoID()
		// pages can shift while paginating, so the same video may be listed twice
		if id == "" || known[id] {
			continue
		}
		known[id] = true
		newItems = append(newItems, video)
	}

	return state, newItems, nil
}

// extractMissing fetches captions for every video lacking stored artifacts.
// Per-video failures are recorded in the report; only cancellation aborts.
func (s *ingestService) extractMissing(ctx context.Context, logger *slog.Logger, videos []model.VideoItem, report *model.ChannelReport) error {
	extracted := false

	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return err
		}

		videoID := video.VideoID()
		videoLogger := logger.With(slog.String("video_id", videoID))

		exists, err := s.transcripts.Exists(ctx, videoID)
		if err != nil {
			videoLogger.Warn("failed to check stored captions", slog.Any("error", err))
			report.Failed = append(report.Failed, videoID)
			continue
		}
		if exists {
			report.Skipped++
			continue
		}

		if extracted {
			if err := s.delay.Wait(ctx); err != nil {
				return err
			}
		}
		extracted = true

		videoLogger.Debug("extracting captions")
		transcript, err := s.extractor.ExtractTranscript(ctx, videoID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			videoLogger.Warn("caption extraction failed", slog.Any("error", err))
			report.Failed = append(report.Failed, videoID)
			continue
		}

		if err := s.transcripts.Save(ctx, transcript); err != nil {
			videoLogger.Warn("failed to store captions", slog.Any("error", err))
			report.Failed = append(report.Failed, videoID)
			continue
		}

		videoLogger.Info("captions stored", slog.Int("cues", len(transcript.Cues)))
		report.Extracted++
	}

	return nil
}

// Plan reports the new videos of a channel without extracting or storing anything
func (s *ingestService) Plan(ctx context.Context, channelID string) (*model.ChannelPlan, error) {
	state, newItems, err := s.discover(ctx, channelID)
	if err != nil {
		return nil, err
	}

	return &model.ChannelPlan{
		ChannelID:   channelID,
		Marker:      state.LastVideoID,
		CachedCount: len(state.Videos),
		NewVideos:   newItems,
	}, nil
}
