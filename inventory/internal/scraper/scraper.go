package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/book-inventory/inventory/internal/errs"
	"github.com/Astemirdum/book-inventory/inventory/internal/model"
	"github.com/Astemirdum/book-inventory/pkg/validate"
)

const DefaultBaseURL = "https://books.toscrape.com/catalogue/category/books_1"

type Config struct {
	BaseURL   string        `yaml:"baseURL" envconfig:"SCRAPER_BASE_URL" default:"https://books.toscrape.com/catalogue/category/books_1"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"SCRAPER_TIMEOUT" default:"30s"`
	UserAgent string        `yaml:"userAgent" envconfig:"SCRAPER_USER_AGENT" default:"book-inventory-scraper/1.0"`
}

type Store interface {
	InsertBooks(ctx context.Context, books []model.Book) (int, error)
}

type Result struct {
	Pages    int
	Books    int
	Inserted int
}

type Scraper struct {
	cfg       Config
	client    *resty.Client
	store     Store
	validator *validate.CustomValidator
	log       *zap.Logger
}

func New(cfg Config, store Store, log *zap.Logger) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	client := resty.New().SetRetryCount(0)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Scraper{
		cfg:       cfg,
		client:    client,
		store:     store,
		validator: validate.NewCustomValidator(),
		log:       log.Named("scraper"),
	}
}

// Run collects the whole catalogue and writes it with a single insert.
// Nothing is written unless every page was fetched and parsed.
func (s *Scraper) Run(ctx context.Context) (Result, error) {
	books, pages, err := s.Collect(ctx)
	if err != nil {
		return Result{}, err
	}
	n, err := s.store.InsertBooks(ctx, books)
	if err != nil {
		return Result{}, errors.Wrap(err, "insert books")
	}
	res := Result{Pages: pages, Books: len(books), Inserted: n}
	s.log.Info("books scraped and saved",
		zap.Int("pages", res.Pages),
		zap.Int("books", res.Books),
		zap.Int("inserted", res.Inserted))
	return res, nil
}

// Collect walks every listing page and returns the validated books in page order.
func (s *Scraper) Collect(ctx context.Context) ([]model.Book, int, error) {
	first, err := s.fetch(ctx, s.cfg.BaseURL+"/index.html")
	if err != nil {
		return nil, 0, err
	}
	lastPage, err := parseLastPage(first)
	if err != nil {
		return nil, 0, err
	}

	var books []model.Book
	for page := 1; page <= lastPage; page++ {
		url := fmt.Sprintf("%s/page-%d.html", s.cfg.BaseURL, page)
		s.log.Info("fetching", zap.String("url", url))
		doc, err := s.fetch(ctx, url)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, parseBooks(doc)...)
	}

	for i := range books {
		if err := s.validator.Validate(&books[i]); err != nil {
			return nil, 0, errors.Wrapf(errs.ErrValidation, "book %d %q: %v", i, books[i].Title, err)
		}
	}
	return books, lastPage, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := s.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", url)
	}
	if res.IsError() {
		return nil, errors.Errorf("get %s: status %d", url, res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", url)
	}
	return doc, nil
}

// parseLastPage reads the "Page 1 of 50" indicator.
func parseLastPage(doc *goquery.Document) (int, error) {
	text := strings.TrimSpace(doc.Find(".current").First().Text())
	_, after, ok := strings.Cut(text, "of ")
	if !ok {
		return 0, errs.ErrNoPagination
	}
	n, err := strconv.Atoi(strings.TrimSpace(after))
	if err != nil || n < 1 {
		return 0, errs.ErrNoPagination
	}
	return n, nil
}

func parseBooks(doc *goquery.Document) []model.Book {
	var books []model.Book
	doc.Find(".product_pod").Each(func(_ int, pod *goquery.Selection) {
		books = append(books, model.Book{
			Title:        pod.Find("h3 a").AttrOr("title", ""),
			Price:        pod.Find(".price_color").Text(),
			Availability: strings.TrimSpace(pod.Find(".availability").Text()),
		})
	})
	return books
}
