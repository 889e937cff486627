package ingest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  string
		want    Formatter
		wantErr bool
	}{
		{format: "", want: &TextFormatter{}},
		{format: "text", want: &TextFormatter{}},
		{format: "json", want: &JSONFormatter{}},
		{format: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			formatter, err := NewFormatter(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, formatter)
		})
	}
}

func TestTextFormatter_FormatRun(t *testing.T) {
	report := sampleReport(true)
	report.Channels[0].Failed = []string{"X", "Y"}

	output, err := (&TextFormatter{}).FormatRun(report)
	require.NoError(t, err)

	assert.Contains(t, output, "Run ID: run-1\n")
	assert.Contains(t, output, "Duration: 2s\n")
	assert.Contains(t, output, "UC1  new: 1  total: 2  extracted: 1  skipped: 1  failed: 2  marker: B\n")
	assert.Contains(t, output, "    no captions stored for: X, Y\n")
	assert.Contains(t, output, "UC2  FAILED: UPSTREAM_ERROR: quota exceeded\n")
}

func TestTextFormatter_FormatPlans(t *testing.T) {
	plans := []*model.ChannelPlan{
		{ChannelID: "UC1", Marker: "A", CachedCount: 3, NewVideos: []model.VideoItem{video("C"), video("B")}},
	}

	output, err := (&TextFormatter{}).FormatPlans(plans)
	require.NoError(t, err)

	assert.Contains(t, output, "Channel: UC1\nMarker: A\nCached videos: 3\nNew videos: 2\n  - C\n  - B\n")
	assert.Contains(t, output, "no captions were downloaded")
}

func TestTextFormatter_FormatChannels(t *testing.T) {
	output, err := (&TextFormatter{}).FormatChannels(nil)
	require.NoError(t, err)
	assert.Equal(t, "No channels cached yet.\n", output)

	output, err = (&TextFormatter{}).FormatChannels([]*model.ChannelSummary{
		{ChannelID: "UC1", VideoCount: 0, UpdatedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Found 1 channel(s):\nUC1  videos: 0  marker: (none)  updated: 2024-05-06 07:08:09\n", output)
}

func TestJSONFormatter(t *testing.T) {
	formatter := &JSONFormatter{}

	output, err := formatter.FormatRun(sampleReport(true))
	require.NoError(t, err)

	var decoded model.RunReport
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, "run-1", decoded.ID)
	require.Len(t, decoded.Channels, 2)
	assert.Equal(t, "UPSTREAM_ERROR: quota exceeded", decoded.Channels[1].Error)

	output, err = formatter.FormatPlans([]*model.ChannelPlan{{ChannelID: "UC1", NewVideos: []model.VideoItem{video("A")}}})
	require.NoError(t, err)
	assert.Contains(t, output, `"videoId": "A"`)

	output, err = formatter.FormatChannels([]*model.ChannelSummary{})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", output)
}
