package model

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID           string `json:"_id" db:"id"`
	Title        string `json:"title" db:"title" validate:"required"`
	Price        string `json:"price" db:"price" validate:"required"`
	Availability string `json:"availability" db:"availability" validate:"required"`
}

type ListBooks struct {
	Books      []Book `json:"books"`
	TotalBooks int    `json:"totalBooks"`
}

type UpdatePriceRequest struct {
	Price string `json:"price" validate:"required"`
}

type UpdateResponse struct {
	Message string `json:"message"`
	Data    Book   `json:"data"`
}

const (
	InStock    = "In Stock"
	OutOfStock = "Out of Stock"
)

// NextAvailability returns the value a stock toggle writes. Only the exact
// InStock value counts as in stock; every other value flips to InStock.
func NextAvailability(current string) string {
	if current == InStock {
		return OutOfStock
	}
	return InStock
}

// MaxOffset bounds the number of rows a list request may skip.
const MaxOffset = math.MaxInt32

// PageInRange reports whether a 1-based page at limit starts within MaxOffset.
func PageInRange(page, limit int) bool {
	return page >= 1 && limit >= 1 && page-1 <= MaxOffset/limit
}

// IsValidID reports whether id has the 24 hex digit store identifier format.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func NewID() string {
	return primitive.NewObjectID().Hex()
}

type EventType string

const (
	EventPriceUpdated EventType = "price_updated"
	EventStockToggled EventType = "stock_toggled"
)

type BookEvent struct {
	Type EventType `json:"type"`
	Book Book      `json:"book"`
	At   time.Time `json:"at"`
}
