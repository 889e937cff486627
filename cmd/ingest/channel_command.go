package ingest

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewChannelCommand creates the command group for inspecting the channel cache
func NewChannelCommand(provider Provider) *cobra.Command {
	provider = providerOrDefault(provider)

	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Inspect cached channels",
		Long:  `Inspect the per-channel marker and video list kept between ingestion runs.`,
	}

	cmd.AddCommand(newChannelListCommand(provider))
	cmd.AddCommand(newChannelVideosCommand(provider))

	return cmd
}

func newChannelListCommand(provider Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			formatter, err := NewFormatter(format)
			if err != nil {
				return err
			}

			services, cleanup, err := provider.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			summaries, err := services.Cache.ListChannelStates(cmd.Context())
			if err != nil {
				return err
			}

			output, err := formatter.FormatChannels(summaries)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().String("format", "text", "Output format (text|json)")

	return cmd
}

func newChannelVideosCommand(provider Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "videos [CHANNEL_ID]",
		Short: "Show a channel's cached marker and videos as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, cleanup, err := provider.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			state, err := services.Cache.GetChannelState(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			output, err := marshal(state)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}
}
