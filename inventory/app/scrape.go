package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/Astemirdum/book-inventory/inventory/config"
	"github.com/Astemirdum/book-inventory/inventory/internal/scraper"
)

type ScrapeOptions struct {
	DryRun  bool
	BaseURL string
}

type ScrapeResult struct {
	Pages    int
	Books    int
	Inserted int
}

// Scrape runs the catalogue scraper once. With DryRun the store is never opened.
func Scrape(ctx context.Context, cfg *config.Config, opts ScrapeOptions, log *zap.Logger) (ScrapeResult, error) {
	scrapeCfg := cfg.Scraper
	if opts.BaseURL != "" {
		scrapeCfg.BaseURL = opts.BaseURL
	}

	if opts.DryRun {
		books, pages, err := scraper.New(scrapeCfg, nil, log).Collect(ctx)
		if err != nil {
			return ScrapeResult{}, err
		}
		log.Info("dry run", zap.Int("pages", pages), zap.Int("books", len(books)))
		return ScrapeResult{Pages: pages, Books: len(books)}, nil
	}

	repo, closeRepo, err := NewRepository(ctx, cfg, log)
	if err != nil {
		return ScrapeResult{}, err
	}
	defer closeRepo(context.Background())

	res, err := scraper.New(scrapeCfg, repo, log).Run(ctx)
	if err != nil {
		return ScrapeResult{}, err
	}
	return ScrapeResult(res), nil
}
