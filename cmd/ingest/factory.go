package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CodingGarden/yt-caption-downloader/internal/config"
	"github.com/CodingGarden/yt-caption-downloader/internal/repository"
	"github.com/CodingGarden/yt-caption-downloader/internal/service/common"
	ingestSvc "github.com/CodingGarden/yt-caption-downloader/internal/service/ingest"
	"github.com/CodingGarden/yt-caption-downloader/internal/service/youtube"
)

// Services bundles what the commands operate on
type Services struct {
	Config      *config.Config
	Ingest      ingestSvc.Service // nil unless opened for ingestion
	Cache       repository.CacheRepository
	Transcripts repository.TranscriptRepository
	Extractor   youtube.TranscriptExtractor
}

// Provider opens services; the returned cleanup releases them
type Provider interface {
	// OpenForIngest validates the full configuration and wires the ingest service.
	// Non-empty channelIDs replace the configured channels and concurrency > 0
	// overrides the configured value, both before validation.
	OpenForIngest(ctx context.Context, channelIDs []string, concurrency int) (*Services, func(), error)
	// Open wires storage and the extractor without requiring an API key or channels
	Open(ctx context.Context) (*Services, func(), error)
}

// ServiceFactory creates services from the user's configuration
type ServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// OpenForIngest implements Provider
func (f *ServiceFactory) OpenForIngest(ctx context.Context, channelIDs []string, concurrency int) (*Services, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if channelIDs = config.NormalizeChannelIDs(channelIDs); len(channelIDs) > 0 {
		cfg.ChannelIDs = channelIDs
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	services, cleanup, err := f.open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	client := f.client(cfg)
	services.Ingest = ingestSvc.NewService(
		client,
		client,
		services.Cache,
		services.Transcripts,
		ingestSvc.WithDelay(common.NewRandomDelay(cfg.MinDelay, cfg.MaxDelay)),
		ingestSvc.WithLogger(slog.Default()),
		ingestSvc.WithConcurrency(cfg.Concurrency),
	)

	return services, cleanup, nil
}

// Open implements Provider
func (f *ServiceFactory) Open(ctx context.Context) (*Services, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return f.open(ctx, cfg)
}

func (f *ServiceFactory) open(ctx context.Context, cfg *config.Config) (*Services, func(), error) {
	cache, err := OpenCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	services := &Services{
		Config:      cfg,
		Cache:       cache,
		Transcripts: repository.NewFileTranscriptRepository(cfg.DataDir),
		Extractor:   f.client(cfg),
	}

	cleanup := func() {
		if err := cache.Close(); err != nil {
			slog.Warn("failed to close channel cache", slog.Any("error", err))
		}
	}

	return services, cleanup, nil
}

func (f *ServiceFactory) client(cfg *config.Config) *youtube.Client {
	return youtube.NewClient(cfg.APIKey,
		youtube.WithHTTPClient(common.NewHTTPClient(cfg.HTTPTimeout)),
		youtube.WithRateLimiter(common.NewRateLimiter(cfg.SearchRate)),
	)
}

// OpenCache opens the PostgreSQL cache when a database URL is configured and the
// SQLite cache file otherwise
func OpenCache(ctx context.Context, cfg *config.Config) (repository.CacheRepository, error) {
	if cfg.UsesPostgres() {
		pool, err := config.NewDatabasePool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repository.NewPostgresCacheRepository(pool), nil
	}

	cache, err := repository.OpenSQLiteCache(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", cfg.CachePath, err)
	}
	return cache, nil
}
