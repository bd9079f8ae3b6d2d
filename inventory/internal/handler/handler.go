package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	md "github.com/Astemirdum/book-inventory/pkg/middleware"
	"github.com/Astemirdum/book-inventory/pkg/validate"
	_ "github.com/Astemirdum/book-inventory/swagger"
)

type Handler struct {
	bookSvc  BookService
	auth     Authenticator
	sessions SessionManager
	log      *zap.Logger
}

func New(bookSvc BookService, auth Authenticator, sessions SessionManager, log *zap.Logger) *Handler {
	return &Handler{
		bookSvc:  bookSvc,
		auth:     auth,
		sessions: sessions,
		log:      log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost},
		AllowCredentials: true,
	}))
	e.Validator = validate.NewCustomValidator()
	e.Renderer = newRenderer()

	// Routes are registered on e with route-level middleware: a Group with
	// middleware adds a catch-all that turns 405 into 404 on its paths.
	baseLimiter := md.NewRateLimiter(baseRPS)
	e.GET("/manage/health", h.Health, baseLimiter)
	e.GET("/swagger/*", echoSwagger.WrapHandler, baseLimiter)

	api := []echo.MiddlewareFunc{
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		md.RequestID(),
		md.NewRateLimiter(apiRPS),
	}
	with := func(m ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append(append(make([]echo.MiddlewareFunc, 0, len(api)+len(m)), api...), m...)
	}
	e.GET("/login", h.Login, api...)
	e.GET("/logout", h.Logout, api...)
	e.GET("/auth/google", h.GoogleLogin, api...)
	e.GET("/auth/google/callback", h.GoogleCallback, api...)

	e.GET("/", h.Index, with(h.RequireSession(true))...)

	authorized := with(h.RequireSession(false))
	e.GET("/books", h.ListBooks, authorized...)
	e.POST("/books/:id/update-price", h.UpdatePrice, authorized...)
	e.POST("/books/:id/update-stock", h.UpdateStock, authorized...)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
