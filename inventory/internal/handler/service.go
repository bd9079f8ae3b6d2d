package handler

import (
	"context"
	"net/http"

	"github.com/Astemirdum/book-inventory/inventory/internal/model"
	"github.com/Astemirdum/book-inventory/inventory/internal/service"
	"github.com/Astemirdum/book-inventory/pkg/openid"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookService interface {
	ListBooks(ctx context.Context, page, limit int) (model.ListBooks, error)
	UpdatePrice(ctx context.Context, id, price string) (model.Book, error)
	ToggleStock(ctx context.Context, id string) (model.Book, error)
}

type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (openid.Identity, error)
}

type SessionManager interface {
	Issue(id openid.Identity) (*http.Cookie, error)
	Parse(token string) (*openid.Claims, error)
	Clear() *http.Cookie
	StateCookie(state string) *http.Cookie
	ClearState() *http.Cookie
}

var (
	_ BookService    = (*service.Service)(nil)
	_ Authenticator  = (*openid.Provider)(nil)
	_ SessionManager = (*openid.Sessions)(nil)
)
