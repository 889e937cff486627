package model

import "time"

// VideoRef is the id block of a search result
type VideoRef struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

// VideoItem is a search result item as returned by the search endpoint.
// Items are kept verbatim so the cached sequence mirrors what the API returned.
type VideoItem struct {
	Kind string   `json:"kind"`
	Etag string   `json:"etag"`
	ID   VideoRef `json:"id"`
}

// VideoID returns the item's video identifier
func (v VideoItem) VideoID() string {
	return v.ID.VideoID
}

// ChannelState is the cached state of one tracked channel
type ChannelState struct {
	ChannelID   string      `json:"channel_id"`
	LastVideoID string      `json:"last_video_id"` // empty when the channel was never ingested
	Videos      []VideoItem `json:"videos"`        // newest first
}

// ChannelSummary describes a cached channel without its item sequence
type ChannelSummary struct {
	ChannelID   string    `json:"channel_id"`
	LastVideoID string    `json:"last_video_id"`
	VideoCount  int       `json:"video_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Cue is a single timed caption entry
type Cue struct {
	Start    float64 `json:"start"`    // seconds
	Duration float64 `json:"duration"` // seconds
	End      float64 `json:"end"`      // Start + Duration
	Text     string  `json:"text"`
}

// Transcript holds both persisted representations of a video's captions
type Transcript struct {
	VideoID string `json:"video_id"`
	RawXML  string `json:"raw_xml"`
	SRT     string `json:"srt"`
	Cues    []Cue  `json:"cues"`
}
