package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avelines/gift-registry/internal/config"
	"github.com/avelines/gift-registry/internal/email"
	"github.com/avelines/gift-registry/internal/middleware"
	"github.com/avelines/gift-registry/internal/repository"
	"github.com/avelines/gift-registry/internal/utils"
)

// AuthHandler implements the one-time-link admin login flow.  The
// claim protocol never talks to this code; it only consumes the
// verdict the AdminVerdict middleware derives from the session cookie
// these handlers set.
type AuthHandler struct {
	Cfg    config.Config
	Tokens *repository.OTPTokenRepo
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg config.Config, tokens *repository.OTPTokenRepo) *AuthHandler {
	if tokens == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Tokens: tokens}
}

type loginReq struct {
	Email string `json:"email"`
}

// loginMessage is returned for allow-listed and unknown emails alike so
// the endpoint does not reveal which addresses are admins.
const loginMessage = "If this is a registered admin email, you will receive a login link shortly."

// Login handles POST /v1/auth/login.  For an allow-listed email it
// mints a single-use token, stores it with a short expiry and emails a
// login link; for any other email it returns the same generic success.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	addr := strings.ToLower(strings.TrimSpace(req.Email))
	if addr == "" || !strings.Contains(addr, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email is required"})
	}

	if !h.Cfg.IsAdminEmail(addr) {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": loginMessage})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// Housekeeping; a failed purge is harmless.
	if err := h.Tokens.PurgeExpired(ctx); err != nil {
		log.Printf("auth: purge expired tokens failed: %v", err)
	}

	token := uuid.NewString()
	expiresAt := time.Now().UTC().Add(time.Duration(h.Cfg.OTPTTLMin) * time.Minute)
	if err := h.Tokens.Create(ctx, addr, token, expiresAt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue login token"})
	}

	if err := email.SendLoginLink(addr, token, h.Cfg.AppURL); err != nil {
		// Email delivery is the one failure worth revealing: the admin is
		// standing at the login form and needs to know the link is not coming.
		log.Printf("auth: send login link failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send email, please check SMTP configuration"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": loginMessage})
}

// Verify handles GET /v1/auth/verify?token=...  – the landing point of
// the emailed link.  Token consumption is atomic; unknown, expired and
// already-used tokens are indistinguishable to the caller.  On success
// an admin session cookie is set and the browser is redirected home.
func (h *AuthHandler) Verify(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	addr, err := h.Tokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return c.Redirect(http.StatusFound, redirectURL(h.Cfg.AppURL, "error", "invalid_token"))
		}
		return c.Redirect(http.StatusFound, redirectURL(h.Cfg.AppURL, "error", "server_error"))
	}

	signed, exp, err := utils.NewAdminSessionToken(h.Cfg.JWTSecret, addr, h.Cfg.AdminTTLDays)
	if err != nil {
		return c.Redirect(http.StatusFound, redirectURL(h.Cfg.AppURL, "error", "server_error"))
	}
	h.setSessionCookie(c, signed, exp)
	return c.Redirect(http.StatusFound, redirectURL(h.Cfg.AppURL, "login", "success"))
}

type passwordReq struct {
	Password string `json:"password"`
}

// PasswordLogin handles POST /v1/auth/password – the break-glass path
// for when email delivery is down.  Disabled unless ADMIN_PASSWORD_HASH
// is configured.  The bcrypt comparison runs even though the endpoint
// is rate limited; a wrong password costs the caller a constant-time
// check and nothing else.
func (h *AuthHandler) PasswordLogin(c echo.Context) error {
	if h.Cfg.AdminPasswordHash == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "password login is not enabled"})
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid password"})
	}
	identity := "password-admin"
	if len(h.Cfg.AdminEmails) > 0 {
		identity = h.Cfg.AdminEmails[0]
	}
	signed, exp, err := utils.NewAdminSessionToken(h.Cfg.JWTSecret, identity, h.Cfg.AdminTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue session"})
	}
	h.setSessionCookie(c, signed, exp)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me handles GET /v1/auth/me.  It reports the ambient admin verdict;
// non-admins get {is_admin:false} with a 200, never an error.
func (h *AuthHandler) Me(c echo.Context) error {
	if !middleware.IsAdmin(c) {
		return c.JSON(http.StatusOK, echo.Map{"is_admin": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"is_admin": true, "email": middleware.AdminEmail(c)})
}

// Logout handles POST /v1/auth/logout by expiring the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, signed string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(time.Until(exp) / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) secureCookies() bool {
	return h.Cfg.Env == "prod"
}

// redirectURL appends a single query parameter to the configured app
// URL, for post-verify redirects.
func redirectURL(base, key, value string) string {
	return strings.TrimRight(base, "/") + "/?" + key + "=" + url.QueryEscape(value)
}
