package handlers

import (
	"net/http"
	"time"

	"rescuetrack/internal/middleware"
	"rescuetrack/internal/models"
	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandlers handles signup, login and session endpoints
type AuthHandlers struct {
	base
	authService   services.AuthService
	secureCookies bool
}

func NewAuthHandlers(authService services.AuthService, secureCookies bool, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		base:          base{logger: logger},
		authService:   authService,
		secureCookies: secureCookies,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	SessionToken string `json:"session_token"`
}

func (h *AuthHandlers) setCookies(c echo.Context, resp *models.TokenResponse) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    resp.AccessToken,
		Path:     "/",
		MaxAge:   resp.ExpiresIn,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	if resp.SessionToken != "" {
		c.SetCookie(&http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    resp.SessionToken,
			Path:     "/api/auth",
			Expires:  resp.SessionExpiresAt,
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (h *AuthHandlers) clearCookies(c echo.Context) {
	for name, path := range map[string]string{middleware.AccessCookie: "/", middleware.SessionCookie: "/api/auth"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   h.secureCookies,
		})
	}
}

func (h *AuthHandlers) SignupAdmin(c echo.Context) error {
	var req services.SignupAdminRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	resp, err := h.authService.SignupAdmin(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	h.setCookies(c, resp)
	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandlers) SignupUser(c echo.Context) error {
	var req services.SignupUserRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	resp, err := h.authService.SignupUser(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	h.setCookies(c, resp)
	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	resp, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	h.setCookies(c, resp)
	return c.JSON(http.StatusOK, resp)
}

// Refresh accepts the session token from the body or the session cookie.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	_ = c.Bind(&req)
	if req.SessionToken == "" {
		if cookie, err := c.Cookie(middleware.SessionCookie); err == nil {
			req.SessionToken = cookie.Value
		}
	}
	resp, err := h.authService.Refresh(c.Request().Context(), req.SessionToken)
	if err != nil {
		return h.fail(c, err)
	}
	h.setCookies(c, resp)
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandlers) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.authService.Logout(c.Request().Context(), p); err != nil {
		return h.fail(c, err)
	}
	h.clearCookies(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandlers) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	staff, err := h.authService.Me(c.Request().Context(), p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, staff)
}
