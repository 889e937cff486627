package ingest

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodingGarden/yt-caption-downloader/internal/config"
	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

// providerOrDefault returns the factory when no provider is injected
func providerOrDefault(provider Provider) Provider {
	if provider != nil {
		return provider
	}
	return NewServiceFactory()
}

// NewIngestCommand creates the command that runs an ingestion over the tracked channels
func NewIngestCommand(provider Provider) *cobra.Command {
	provider = providerOrDefault(provider)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Download captions of new videos from tracked channels",
		Long: `Discover videos published since the last run on every tracked channel, store
their captions as captions.xml and captions.srt, and update the channel cache.

Channels come from YOUTUBE_CHANNEL_IDS or channel_ids unless --channel is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channels, _ := cmd.Flags().GetStringSlice("channel")
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			format, _ := cmd.Flags().GetString("format")

			formatter, err := NewFormatter(format)
			if err != nil {
				return err
			}
			if concurrency < 0 {
				return fmt.Errorf("--concurrency must be positive")
			}

			ctx := cmd.Context()
			services, cleanup, err := provider.OpenForIngest(ctx, config.NormalizeChannelIDs(channels), concurrency)
			if err != nil {
				return err
			}
			defer cleanup()

			// already narrowed to --channel when given
			channels = services.Config.ChannelIDs

			if dryRun {
				plans := make([]*model.ChannelPlan, 0, len(channels))
				for _, channelID := range channels {
					plan, err := services.Ingest.Plan(ctx, channelID)
					if err != nil {
						return fmt.Errorf("failed to plan channel %s: %w", channelID, err)
					}
					plans = append(plans, plan)
				}

				output, err := formatter.FormatPlans(plans)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), output)
				return nil
			}

			report, runErr := services.Ingest.Run(ctx, channels)
			if report != nil {
				output, err := formatter.FormatRun(report)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), output)
			}
			if runErr != nil {
				return fmt.Errorf("ingestion finished with errors: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("channel", nil, "Channel ID to ingest (repeatable, overrides configured channels)")
	cmd.Flags().Int("concurrency", 0, "Channels processed in parallel (0 uses the configured value)")
	cmd.Flags().Bool("dry-run", false, "List new videos without downloading captions or touching the cache")
	cmd.Flags().String("format", "text", "Output format (text|json)")

	return cmd
}
