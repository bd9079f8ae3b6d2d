package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/book-inventory/inventory/internal/errs"
	"github.com/Astemirdum/book-inventory/inventory/internal/handler"
	service_mocks "github.com/Astemirdum/book-inventory/inventory/internal/handler/mocks"
	"github.com/Astemirdum/book-inventory/inventory/internal/model"
	"github.com/Astemirdum/book-inventory/pkg/validate"
)

const bookID = "65a1f0c2e4b0a1b2c3d4e5f6"

func newBooksEcho(t *testing.T) (*echo.Echo, *service_mocks.MockBookService) {
	t.Helper()
	c := gomock.NewController(t)
	svc := service_mocks.NewMockBookService(c)
	h := handler.New(svc, nil, nil, zap.NewExample().Named("test"))

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.GET("/books", h.ListBooks)
	e.POST("/books/:id/update-price", h.UpdatePrice)
	e.POST("/books/:id/update-stock", h.UpdateStock)
	return e, svc
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		query        string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:  "ok. defaults",
			query: "",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ListBooks(context.Background(), 1, 50).
					Return(model.ListBooks{
						Books: []model.Book{
							{ID: bookID, Title: "A Light in the Attic", Price: "£51.77", Availability: "In stock"},
						},
						TotalBooks: 1000,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"books":[{"_id":"65a1f0c2e4b0a1b2c3d4e5f6","title":"A Light in the Attic","price":"£51.77","availability":"In stock"}],"totalBooks":1000}`,
			},
		},
		{
			name:  "ok. page past the end",
			query: "?page=30&limit=50",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ListBooks(context.Background(), 30, 50).
					Return(model.ListBooks{Books: []model.Book{}, TotalBooks: 1000}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"books":[],"totalBooks":1000}`,
			},
		},
		{
			name:         "err. page not a number",
			query:        "?page=abc",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name:         "err. zero limit",
			query:        "?limit=0",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"limit is invalid"}`,
			},
		},
		{
			name:         "err. negative page",
			query:        "?page=-2",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name:         "err. page offset overflows",
			query:        "?page=9223372036854775807&limit=50",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name:  "err. internal",
			query: "?page=2&limit=10",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ListBooks(context.Background(), 2, 10).
					Return(model.ListBooks{}, errors.New("server selection timeout"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"Server error"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newBooksEcho(t)

			r := httptest.NewRequest(http.MethodGet, "/books"+tt.query, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_UpdatePrice(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		id           string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			id:   bookID,
			body: `{"price":"£9.99"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					UpdatePrice(context.Background(), bookID, "£9.99").
					Return(model.Book{ID: bookID, Title: "Sharp Objects", Price: "£9.99", Availability: "In stock"}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"message":"Price updated successfully","data":{"_id":"65a1f0c2e4b0a1b2c3d4e5f6","title":"Sharp Objects","price":"£9.99","availability":"In stock"}}`,
			},
		},
		{
			name:         "err. invalid id",
			id:           "not-an-id",
			body:         `{"price":"£9.99"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Invalid book ID"}`,
			},
		},
		{
			name:         "err. empty price",
			id:           bookID,
			body:         `{"price":""}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Invalid price"}`,
			},
		},
		{
			name:         "err. malformed body",
			id:           bookID,
			body:         `{"price":`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Invalid price"}`,
			},
		},
		{
			name: "err. blank price rejected by service",
			id:   bookID,
			body: `{"price":"  "}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					UpdatePrice(context.Background(), bookID, "  ").
					Return(model.Book{}, errs.ErrValidation)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Invalid price"}`,
			},
		},
		{
			name: "err. not found",
			id:   bookID,
			body: `{"price":"£9.99"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					UpdatePrice(context.Background(), bookID, "£9.99").
					Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"Book not found"}`,
			},
		},
		{
			name: "err. internal",
			id:   bookID,
			body: `{"price":"£9.99"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					UpdatePrice(context.Background(), bookID, "£9.99").
					Return(model.Book{}, errors.New("connection refused"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"Server error"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newBooksEcho(t)

			r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/books/%s/update-price", tt.id), strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_UpdateStock(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		id           string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok. in stock becomes out of stock",
			id:   bookID,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ToggleStock(context.Background(), bookID).
					Return(model.Book{ID: bookID, Title: "Soumission", Price: "£50.10", Availability: model.OutOfStock}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"message":"Stock updated successfully","data":{"_id":"65a1f0c2e4b0a1b2c3d4e5f6","title":"Soumission","price":"£50.10","availability":"Out of Stock"}}`,
			},
		},
		{
			name:         "err. invalid id",
			id:           "123",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Invalid book ID"}`,
			},
		},
		{
			name: "err. not found",
			id:   bookID,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ToggleStock(context.Background(), bookID).
					Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"Book not found"}`,
			},
		},
		{
			name: "err. internal",
			id:   bookID,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ToggleStock(context.Background(), bookID).
					Return(model.Book{}, errors.New("write conflict"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"Server error"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newBooksEcho(t)

			r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/books/%s/update-stock", tt.id), http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
