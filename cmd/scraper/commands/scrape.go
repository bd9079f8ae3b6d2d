package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/book-inventory/inventory/app"
	"github.com/Astemirdum/book-inventory/inventory/config"
	"github.com/Astemirdum/book-inventory/pkg/logger"
)

var (
	dryRun  *bool
	baseURL *string
)

func init() {
	dryRun = scrapeCmd.Flags().Bool("dry-run", false, "Collect and validate the catalogue without writing it.")
	baseURL = scrapeCmd.Flags().String("base-url", "", "Catalogue root, overrides SCRAPER_BASE_URL.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--dry-run] [--base-url <url>]",
	Short: "Scrapes every catalogue page and inserts the books in one batch.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		cfg := config.NewConfig(config.WithLogLevel(zapcore.InfoLevel))
		log := logger.NewLogger(cfg.Log, "scraper")
		defer log.Sync() //nolint:errcheck

		res, err := app.Scrape(cmd.Context(), cfg, app.ScrapeOptions{
			DryRun:  *dryRun,
			BaseURL: *baseURL,
		}, log)
		if err != nil {
			return err
		}
		if *dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "collected %d books from %d pages\n", res.Books, res.Pages)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Books scraped and saved successfully: %d books from %d pages\n", res.Inserted, res.Pages)
		return nil
	},
}
