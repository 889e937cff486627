package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

// Formatter defines interface for output formatting
type Formatter interface {
	FormatRun(report *model.RunReport) (string, error)
	FormatPlans(plans []*model.ChannelPlan) (string, error)
	FormatChannels(summaries []*model.ChannelSummary) (string, error)
}

// NewFormatter returns the formatter for a --format value
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "text", "":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (expected text or json)", format)
	}
}

// TextFormatter formats output as plain text
type TextFormatter struct{}

// FormatRun formats an ingestion report as plain text
func (f *TextFormatter) FormatRun(report *model.RunReport) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Run ID: %s\n", report.ID))
	output.WriteString(fmt.Sprintf("Duration: %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)))
	output.WriteString("\n")

	for _, channel := range report.Channels {
		if channel == nil {
			continue
		}
		if channel.Error != "" {
			output.WriteString(fmt.Sprintf("%s  FAILED: %s\n", channel.ChannelID, channel.Error))
			continue
		}
		output.WriteString(fmt.Sprintf("%s  new: %d  total: %d  extracted: %d  skipped: %d  failed: %d  marker: %s\n",
			channel.ChannelID, channel.NewVideos, channel.TotalVideos,
			channel.Extracted, channel.Skipped, len(channel.Failed), displayMarker(channel.Marker)))
		if len(channel.Failed) > 0 {
			output.WriteString(fmt.Sprintf("    no captions stored for: %s\n", strings.Join(channel.Failed, ", ")))
		}
	}

	return output.String(), nil
}

// FormatPlans formats dry-run plans as plain text
func (f *TextFormatter) FormatPlans(plans []*model.ChannelPlan) (string, error) {
	var output strings.Builder

	output.WriteString("DRY RUN\n")
	output.WriteString("=======\n")
	for _, plan := range plans {
		output.WriteString(fmt.Sprintf("\nChannel: %s\n", plan.ChannelID))
		output.WriteString(fmt.Sprintf("Marker: %s\n", displayMarker(plan.Marker)))
		output.WriteString(fmt.Sprintf("Cached videos: %d\n", plan.CachedCount))
		output.WriteString(fmt.Sprintf("New videos: %d\n", len(plan.NewVideos)))
		for _, video := range plan.NewVideos {
			output.WriteString(fmt.Sprintf("  - %s\n", video.VideoID()))
		}
	}
	output.WriteString("\nThis is a dry run - no captions were downloaded and the cache was not changed.\n")

	return output.String(), nil
}

// FormatChannels formats cached channel summaries as plain text
func (f *TextFormatter) FormatChannels(summaries []*model.ChannelSummary) (string, error) {
	if len(summaries) == 0 {
		return "No channels cached yet.\n", nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Found %d channel(s):\n", len(summaries)))
	for _, summary := range summaries {
		output.WriteString(fmt.Sprintf("%s  videos: %d  marker: %s  updated: %s\n",
			summary.ChannelID, summary.VideoCount, displayMarker(summary.LastVideoID),
			summary.UpdatedAt.Format("2006-01-02 15:04:05")))
	}
	return output.String(), nil
}

func displayMarker(marker string) string {
	if marker == "" {
		return "(none)"
	}
	return marker
}

// JSONFormatter formats output as JSON
type JSONFormatter struct{}

// FormatRun formats an ingestion report as JSON
func (f *JSONFormatter) FormatRun(report *model.RunReport) (string, error) {
	return marshal(report)
}

// FormatPlans formats dry-run plans as JSON
func (f *JSONFormatter) FormatPlans(plans []*model.ChannelPlan) (string, error) {
	return marshal(plans)
}

// FormatChannels formats cached channel summaries as JSON
func (f *JSONFormatter) FormatChannels(summaries []*model.ChannelSummary) (string, error) {
	return marshal(summaries)
}

func marshal(v any) (string, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(jsonBytes) + "\n", nil
}
