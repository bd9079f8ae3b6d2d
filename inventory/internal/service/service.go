package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/book-inventory/inventory/internal/errs"
	"github.com/Astemirdum/book-inventory/inventory/internal/model"
	"github.com/Astemirdum/book-inventory/inventory/internal/repository"
	"github.com/Astemirdum/book-inventory/pkg/kafka"
)

type Service struct {
	log    *zap.Logger
	repo   repository.Repository
	events kafka.Enqueuer
	now    func() time.Time
}

func NewService(repo repository.Repository, events kafka.Enqueuer, log *zap.Logger) *Service {
	return &Service{
		log:    log.Named("service"),
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

func (s *Service) ListBooks(ctx context.Context, page, limit int) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, page, limit)
}

func (s *Service) UpdatePrice(ctx context.Context, id, price string) (model.Book, error) {
	if !model.IsValidID(id) {
		return model.Book{}, errs.ErrInvalidID
	}
	if strings.TrimSpace(price) == "" {
		return model.Book{}, errs.ErrValidation
	}
	book, err := s.repo.UpdatePrice(ctx, id, price)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(model.EventPriceUpdated, book)
	return book, nil
}

func (s *Service) ToggleStock(ctx context.Context, id string) (model.Book, error) {
	if !model.IsValidID(id) {
		return model.Book{}, errs.ErrInvalidID
	}
	book, err := s.repo.ToggleStock(ctx, id)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(model.EventStockToggled, book)
	return book, nil
}

// publish is best effort: the update is already committed, a broker failure
// is only logged.
func (s *Service) publish(typ model.EventType, book model.Book) {
	ev := model.BookEvent{Type: typ, Book: book, At: s.now().UTC()}
	if err := s.events.Enqueue(book.ID, ev); err != nil {
		s.log.Warn("publish book event",
			zap.String("type", string(typ)),
			zap.String("id", book.ID),
			zap.Error(err))
	}
}
