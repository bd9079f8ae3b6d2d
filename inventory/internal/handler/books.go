package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/book-inventory/inventory/internal/errs"
	"github.com/Astemirdum/book-inventory/inventory/internal/model"
)

const (
	defaultPage  = 1
	defaultLimit = 50

	msgInvalidID    = "Invalid book ID"
	msgInvalidPrice = "Invalid price"
	msgNotFound     = "Book not found"
	msgServerError  = "Server error"

	msgPriceUpdated = "Price updated successfully"
	msgStockUpdated = "Stock updated successfully"
)

// ListBooks godoc
// @Summary List books
// @Tags books
// @Produce json
// @Param page query int false "1-based page" default(1)
// @Param limit query int false "page size" default(50)
// @Success 200 {object} model.ListBooks
// @Failure 400 {object} echo.HTTPError
// @Failure 401 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	page, err := positiveQueryParam(c, "page", defaultPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
	}
	limit, err := positiveQueryParam(c, "limit", defaultLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "limit is invalid")
	}
	if !model.PageInRange(page, limit) {
		return echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
	}

	books, err := h.bookSvc.ListBooks(c.Request().Context(), page, limit)
	if err != nil {
		return h.bookError(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

// UpdatePrice godoc
// @Summary Update book price
// @Tags books
// @Accept json
// @Produce json
// @Param id path string true "book id"
// @Param request body model.UpdatePriceRequest true "new price"
// @Success 200 {object} model.UpdateResponse
// @Failure 400 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /books/{id}/update-price [post]
func (h *Handler) UpdatePrice(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidID)
	}
	var req model.UpdatePriceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidPrice)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidPrice)
	}

	book, err := h.bookSvc.UpdatePrice(c.Request().Context(), id, req.Price)
	if err != nil {
		return h.bookError(c, err)
	}
	return c.JSON(http.StatusOK, model.UpdateResponse{
		Message: msgPriceUpdated,
		Data:    book,
	})
}

// UpdateStock godoc
// @Summary Toggle book availability
// @Tags books
// @Produce json
// @Param id path string true "book id"
// @Success 200 {object} model.UpdateResponse
// @Failure 400 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Failure 500 {object} echo.HTTPError
// @Router /books/{id}/update-stock [post]
func (h *Handler) UpdateStock(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidID)
	}

	book, err := h.bookSvc.ToggleStock(c.Request().Context(), id)
	if err != nil {
		return h.bookError(c, err)
	}
	return c.JSON(http.StatusOK, model.UpdateResponse{
		Message: msgStockUpdated,
		Data:    book,
	})
}

func (h *Handler) bookError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidID)
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidPrice)
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
	}
	h.log.Error("books",
		zap.String("path", c.Path()),
		zap.String("id", c.Param("id")),
		zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, msgServerError)
}

func positiveQueryParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.Errorf("%s must be positive", name)
	}
	return n, nil
}
