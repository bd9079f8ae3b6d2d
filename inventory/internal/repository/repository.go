package repository

import (
	"context"

	"github.com/Astemirdum/book-inventory/inventory/internal/model"
)

type Repository interface {
	ListBooks(ctx context.Context, page, limit int) (model.ListBooks, error)
	UpdatePrice(ctx context.Context, id, price string) (model.Book, error)
	ToggleStock(ctx context.Context, id string) (model.Book, error)
	InsertBooks(ctx context.Context, books []model.Book) (int, error)
}

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

const booksCollection = "books"

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
