package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodingGarden/yt-caption-downloader/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for yt-captions.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [API_KEY]",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with the YouTube Data API key.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var apiKey string
		if len(args) > 0 {
			apiKey = args[0]
		}

		if err := config.InitConfig(apiKey); err != nil {
			return err
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created configuration file: %s\n", configPath)
		fmt.Fprintln(out, "Please add the channels to track under channel_ids, or set YOUTUBE_CHANNEL_IDS.")

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the configuration file path and the resolved settings, with the API key masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration file: %s\n\n", configPath)
		fmt.Fprintf(out, "API key:      %s\n", cfg.MaskedAPIKey())
		fmt.Fprintf(out, "Channels:     %s\n", strings.Join(cfg.ChannelIDs, ", "))
		fmt.Fprintf(out, "Data dir:     %s\n", cfg.DataDir)
		if cfg.UsesPostgres() {
			fmt.Fprintf(out, "Cache:        PostgreSQL (%s)\n", redactURL(cfg.DatabaseURL))
		} else {
			fmt.Fprintf(out, "Cache:        SQLite (%s)\n", cfg.CachePath)
		}
		fmt.Fprintf(out, "Delay:        %s - %s\n", cfg.MinDelay, cfg.MaxDelay)
		fmt.Fprintf(out, "HTTP timeout: %s\n", cfg.HTTPTimeout)
		fmt.Fprintf(out, "Search rate:  %g/s\n", cfg.SearchRate)
		fmt.Fprintf(out, "Concurrency:  %d\n", cfg.Concurrency)

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "\nWarning: %v\n", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
