package handler

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Astemirdum/book-inventory/inventory/internal/model"
	"github.com/Astemirdum/book-inventory/inventory/internal/view"
	"github.com/Astemirdum/book-inventory/pkg/openid"
)

//go:embed templates/*.html
var templateFS embed.FS

type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	return &renderer{
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// indexPage adapts view.State for the table template.
type indexPage struct {
	view.State
	User string
}

func (p indexPage) link(s view.State) string {
	return "/?" + s.Values().Encode()
}

func (p indexPage) SortURL(col string) string {
	return p.link(p.State.CancelEdit().RequestSort(view.Column(col)))
}

func (p indexPage) SortMark(col string) string {
	if p.OrderBy != view.Column(col) {
		return ""
	}
	if p.Order == view.Desc {
		return "▼"
	}
	return "▲"
}

func (p indexPage) PrevURL() string { return p.link(p.CancelEdit().WithPage(p.Page - 1)) }

func (p indexPage) NextURL() string { return p.link(p.CancelEdit().WithPage(p.Page + 1)) }

func (p indexPage) RowsURL(n int) string { return p.link(p.CancelEdit().WithRowsPerPage(n)) }

func (p indexPage) EditURL(id string) string { return p.link(p.StartEdit(id)) }

func (p indexPage) DoneURL() string { return p.link(p.CancelEdit()) }

func (p indexPage) RowsOptions() []int { return view.RowsPerPageOptions }

func (p indexPage) InStock(availability string) bool {
	return strings.EqualFold(availability, model.InStock)
}

// Index renders the books table for the page, order and edit row in the query string.
func (h *Handler) Index(c echo.Context) error {
	state := view.Parse(c.QueryParams())
	page, limit := state.Query()

	list, err := h.bookSvc.ListBooks(c.Request().Context(), page, limit)
	if err != nil {
		h.log.Error("index", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, msgServerError)
	}

	data := indexPage{State: state.WithFetched(list.Books, list.TotalBooks)}
	if claims, ok := c.Get(claimsKey).(*openid.Claims); ok {
		data.User = claims.Name
	}
	return c.Render(http.StatusOK, "index.html", data)
}
