package cmd

import (
	"github.com/CodingGarden/yt-caption-downloader/cmd/ingest"
)

func init() {
	// nil provider: commands open services from the user's configuration
	rootCmd.AddCommand(ingest.NewIngestCommand(nil))
	rootCmd.AddCommand(ingest.NewChannelCommand(nil))
	rootCmd.AddCommand(ingest.NewVideoCommand(nil))
}
