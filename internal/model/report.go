package model

import "time"

// ChannelReport summarizes a single channel's ingestion
type ChannelReport struct {
	ChannelID   string        `json:"channel_id"`
	NewVideos   int           `json:"new_videos"`
	TotalVideos int           `json:"total_videos"`
	Extracted   int           `json:"extracted"`
	Skipped     int           `json:"skipped"`
	Failed      []string      `json:"failed,omitempty"` // video IDs whose extraction failed
	Marker      string        `json:"marker"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// RunReport summarizes one ingestion run over all channels
type RunReport struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Channels   []*ChannelReport `json:"channels"`
}

// ChannelPlan lists what an ingestion would do for a channel without doing it
type ChannelPlan struct {
	ChannelID   string      `json:"channel_id"`
	Marker      string      `json:"marker"`
	CachedCount int         `json:"cached_count"`
	NewVideos   []VideoItem `json:"new_videos"`
}
