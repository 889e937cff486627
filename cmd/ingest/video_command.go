package ingest

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CodingGarden/yt-caption-downloader/internal/repository"
)

// NewVideoCommand creates the command group for single videos
func NewVideoCommand(provider Provider) *cobra.Command {
	provider = providerOrDefault(provider)

	cmd := &cobra.Command{
		Use:   "video",
		Short: "Single video operations",
	}

	cmd.AddCommand(newVideoTranscriptCommand(provider))

	return cmd
}

func newVideoTranscriptCommand(provider Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript [VIDEO_ID]",
		Short: "Download and print the captions of one video",
		Long: `Download the first caption track of a video and print it as SRT or raw
timed-text XML. With --save the artifacts are also stored in the data directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID := args[0]
			format, _ := cmd.Flags().GetString("format")
			save, _ := cmd.Flags().GetBool("save")

			if format != "srt" && format != "xml" {
				return fmt.Errorf("unsupported format: %s (expected srt or xml)", format)
			}

			services, cleanup, err := provider.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			transcript, err := services.Extractor.ExtractTranscript(cmd.Context(), videoID)
			if err != nil {
				return fmt.Errorf("failed to extract captions: %w", err)
			}

			if format == "xml" {
				fmt.Fprintln(cmd.OutOrStdout(), transcript.RawXML)
			} else {
				fmt.Fprint(cmd.OutOrStdout(), transcript.SRT)
			}

			if save {
				if err := services.Transcripts.Save(cmd.Context(), transcript); err != nil {
					return fmt.Errorf("failed to save captions: %w", err)
				}
				dir := services.Transcripts.Dir(videoID)
				cmd.PrintErrf("Saved %s and %s\n",
					filepath.Join(dir, repository.RawCaptionsFile),
					filepath.Join(dir, repository.SRTCaptionsFile))
			}

			return nil
		},
	}

	cmd.Flags().String("format", "srt", "Output format (srt|xml)")
	cmd.Flags().Bool("save", false, "Store captions.xml and captions.srt in the data directory")

	return cmd
}
