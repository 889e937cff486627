package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/CodingGarden/yt-caption-downloader/internal/config"
	"github.com/CodingGarden/yt-caption-downloader/internal/migrations"
	"github.com/CodingGarden/yt-caption-downloader/internal/repository"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Channel cache database operations",
}

// dbMigrateCmd applies the embedded schema migrations
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending cache schema migrations",
	Long: `Apply pending schema migrations to the PostgreSQL database at database_url, or
to the SQLite cache file when no database URL is configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cfg.UsesPostgres() {
			migrationURL, err := cfg.MigrationURL()
			if err != nil {
				return err
			}
			if err := migrations.UpPostgres(migrationURL); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "PostgreSQL cache is up to date (%s)\n", redactURL(cfg.DatabaseURL))
			return nil
		}

		// Opening the SQLite cache applies its migrations
		cache, err := repository.OpenSQLiteCache(cfg.CachePath)
		if err != nil {
			return err
		}
		if err := cache.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "SQLite cache is up to date (%s)\n", cfg.CachePath)
		return nil
	},
}

// redactURL hides the password of a database URL
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid URL)"
	}
	return u.Redacted()
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	rootCmd.AddCommand(dbCmd)
}
