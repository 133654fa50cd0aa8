package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/avelines/gift-registry/internal/utils" // admin session token parsing
)

// Context keys populated by AdminVerdict.  Handlers read these instead
// of inspecting tokens themselves: the claim protocol consumes only the
// boolean verdict, the auth endpoints additionally use the email.
const (
	CtxIsAdmin    = "is_admin"    // bool – verified admin session present
	CtxAdminEmail = "admin_email" // string – email of the verified admin
)

// AdminCookieName is the cookie carrying the signed admin session token.
const AdminCookieName = "admin_token"

// AdminVerdict returns an Echo middleware that resolves the ambient
// admin verdict for every request.  It reads the admin_token cookie,
// verifies the signed session, and stores {is_admin, admin_email} in
// the context.  A missing or invalid token is not an error – the
// request simply proceeds as a non-admin, which is the normal case for
// visitors.  Routes that require admin rights stack RequireAdmin on
// top.
func AdminVerdict(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(CtxIsAdmin, false)
			if cookie, err := c.Cookie(AdminCookieName); err == nil && cookie.Value != "" {
				if sess, err := utils.ParseAdminSession(secret, cookie.Value); err == nil {
					c.Set(CtxIsAdmin, true)
					c.Set(CtxAdminEmail, sess.Email)
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin returns a middleware that aborts with 401 Unauthorized
// unless AdminVerdict established a verified admin session earlier in
// the chain.  It guards the catalog write endpoints and settings.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ok, _ := c.Get(CtxIsAdmin).(bool); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			return next(c)
		}
	}
}

// IsAdmin reports the verdict AdminVerdict stored for this request.
func IsAdmin(c echo.Context) bool {
	ok, _ := c.Get(CtxIsAdmin).(bool)
	return ok
}

// AdminEmail returns the verified admin email, or "" for non-admins.
func AdminEmail(c echo.Context) string {
	s, _ := c.Get(CtxAdminEmail).(string)
	return s
}
