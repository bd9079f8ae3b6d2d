// Package view holds the state of the books table page. State is a value:
// every event returns a new State and leaves the receiver untouched.
package view

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/Astemirdum/book-inventory/inventory/internal/model"
)

type Column string

const (
	ColumnTitle        Column = "title"
	ColumnPrice        Column = "price"
	ColumnAvailability Column = "availability"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

const DefaultRowsPerPage = 50

var RowsPerPageOptions = []int{10, 25, 50, 100}

type State struct {
	Books       []model.Book
	Total       int
	Page        int // 0-based
	RowsPerPage int
	OrderBy     Column
	Order       Order
	EditingID   string
}

func New() State {
	return State{
		Page:        0,
		RowsPerPage: DefaultRowsPerPage,
		OrderBy:     ColumnTitle,
		Order:       Asc,
	}
}

// WithFetched replaces the loaded page and sorts it with the current order.
func (s State) WithFetched(books []model.Book, total int) State {
	s.Books = sortBooks(books, s.OrderBy, s.Order)
	s.Total = total
	return s
}

// RequestSort toggles the direction when col is already the ascending sort
// column, otherwise sorts ascending by col.
func (s State) RequestSort(col Column) State {
	if !validColumn(col) {
		return s
	}
	order := Asc
	if s.OrderBy == col && s.Order == Asc {
		order = Desc
	}
	s.OrderBy = col
	s.Order = order
	s.Books = sortBooks(s.Books, col, order)
	return s
}

func (s State) WithPage(p int) State {
	if p < 0 {
		p = 0
	}
	s.Page = p
	return s
}

func (s State) WithRowsPerPage(n int) State {
	if n <= 0 {
		n = DefaultRowsPerPage
	}
	s.RowsPerPage = n
	s.Page = 0
	return s
}

func (s State) StartEdit(id string) State {
	s.EditingID = id
	return s
}

func (s State) CancelEdit() State {
	s.EditingID = ""
	return s
}

// Query returns the 1-based page and the limit for the list call.
func (s State) Query() (page, limit int) {
	return s.Page + 1, s.RowsPerPage
}

func (s State) PageCount() int {
	if s.RowsPerPage <= 0 || s.Total <= 0 {
		return 0
	}
	return (s.Total + s.RowsPerPage - 1) / s.RowsPerPage
}

func (s State) HasPrev() bool { return s.Page > 0 }

func (s State) HasNext() bool { return s.Page+1 < s.PageCount() }

// From and To are the 1-based bounds of the rows shown, "51–100 of 1000".
func (s State) From() int {
	if s.Total == 0 {
		return 0
	}
	return s.Page*s.RowsPerPage + 1
}

func (s State) To() int {
	to := (s.Page + 1) * s.RowsPerPage
	if to > s.Total {
		to = s.Total
	}
	return to
}

// Values encodes the navigational part of the state as query parameters.
func (s State) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(s.Page))
	v.Set("rows", strconv.Itoa(s.RowsPerPage))
	v.Set("orderBy", string(s.OrderBy))
	v.Set("order", string(s.Order))
	if s.EditingID != "" {
		v.Set("edit", s.EditingID)
	}
	return v
}

// Parse rebuilds a State from query parameters, falling back to defaults
// for anything missing or malformed.
func Parse(v url.Values) State {
	s := New()
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p >= 0 {
		s.Page = p
	}
	if n, err := strconv.Atoi(v.Get("rows")); err == nil && n > 0 {
		s.RowsPerPage = n
	}
	if col := Column(v.Get("orderBy")); validColumn(col) {
		s.OrderBy = col
	}
	if o := Order(v.Get("order")); o == Asc || o == Desc {
		s.Order = o
	}
	if !model.PageInRange(s.Page+1, s.RowsPerPage) {
		s.Page = 0
	}
	s.EditingID = v.Get("edit")
	return s
}

func validColumn(col Column) bool {
	switch col {
	case ColumnTitle, ColumnPrice, ColumnAvailability:
		return true
	}
	return false
}

func sortBooks(books []model.Book, col Column, order Order) []model.Book {
	out := slices.Clone(books)
	slices.SortStableFunc(out, func(a, b model.Book) int {
		c := strings.Compare(field(a, col), field(b, col))
		if order == Desc {
			return -c
		}
		return c
	})
	return out
}

func field(b model.Book, col Column) string {
	switch col {
	case ColumnPrice:
		return b.Price
	case ColumnAvailability:
		return b.Availability
	default:
		return b.Title
	}
}
