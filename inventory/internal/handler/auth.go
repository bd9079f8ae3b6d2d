package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Astemirdum/book-inventory/pkg/openid"
)

const claimsKey = "claims"

// RequireSession lets requests with a valid session cookie through. Pages
// are redirected to /login, everything else gets 401.
func (h *Handler) RequireSession(redirect bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, ok := h.session(c); ok {
				c.Set(claimsKey, claims)
				return next(c)
			}
			if redirect {
				return c.Redirect(http.StatusFound, "/login")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
	}
}

func (h *Handler) session(c echo.Context) (*openid.Claims, bool) {
	cookie, err := c.Cookie(openid.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := h.sessions.Parse(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

type loginPage struct {
	Name string
}

func (h *Handler) Login(c echo.Context) error {
	var page loginPage
	if claims, ok := h.session(c); ok {
		page.Name = claims.Name
		if page.Name == "" {
			page.Name = claims.Email
		}
	}
	return c.Render(http.StatusOK, "login.html", page)
}

func (h *Handler) GoogleLogin(c echo.Context) error {
	state := uuid.NewString()
	c.SetCookie(h.sessions.StateCookie(state))
	return c.Redirect(http.StatusFound, h.auth.AuthURL(state))
}

func (h *Handler) GoogleCallback(c echo.Context) error {
	if e := c.QueryParam("error"); e != "" {
		h.log.Warn("google sign-in refused", zap.String("error", e))
		return c.Redirect(http.StatusFound, "/login")
	}

	state := c.QueryParam("state")
	cookie, err := c.Cookie(openid.StateCookieName)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "state did not match")
	}
	c.SetCookie(h.sessions.ClearState())

	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	id, err := h.auth.Exchange(c.Request().Context(), code)
	if err != nil {
		h.log.Error("google exchange", zap.Error(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication failed")
	}
	session, err := h.sessions.Issue(id)
	if err != nil {
		h.log.Error("issue session", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, msgServerError)
	}
	c.SetCookie(session)
	h.log.Info("signed in", zap.String("email", id.Email))
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.Redirect(http.StatusFound, "/login")
}
