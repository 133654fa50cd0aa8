package middleware

// visitor.go resolves the anonymous visitor identity for every request.
// Possession of the visitor cookie is the only proof a browser has that
// it made an earlier claim, so an existing identity is never rotated or
// invalidated here – doing so would silently strip the visitor of their
// claims.  Losing the cookie (cleared browser data) permanently loses
// claim-editing rights for that identity; that is a product decision,
// not a bug.

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys populated by VisitorIdentity.
const (
	CtxVisitorID  = "visitor_id"  // string – stable identity for this browser
	CtxVisitorNew = "visitor_new" // bool – identity was minted for this request
)

// VisitorCookieName is the long-lived cookie carrying the identity.
const VisitorCookieName = "visitor_id"

// visitorCookieMaxAge keeps the identity for about a year.
const visitorCookieMaxAge = 365 * 24 * time.Hour

// VisitorIdentity returns an Echo middleware that reads the visitor
// cookie, or lazily mints a fresh random identity when none is present.
// Generation cannot fail.  The new identity is only stored in the
// context; persisting it is the handler's job via PersistVisitor, so a
// browser that merely reads the list never receives a cookie – the
// cookie appears on the first claim-affecting action.
func VisitorIdentity(secureCookies bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(VisitorCookieName); err == nil && cookie.Value != "" {
				c.Set(CtxVisitorID, cookie.Value)
				c.Set(CtxVisitorNew, false)
			} else {
				c.Set(CtxVisitorID, uuid.NewString())
				c.Set(CtxVisitorNew, true)
			}
			c.Set("visitor_cookie_secure", secureCookies)
			return next(c)
		}
	}
}

// VisitorID returns the resolved identity for this request.
func VisitorID(c echo.Context) string {
	s, _ := c.Get(CtxVisitorID).(string)
	return s
}

// VisitorIsNew reports whether the identity was minted for this request
// and still needs persisting.
func VisitorIsNew(c echo.Context) bool {
	b, _ := c.Get(CtxVisitorNew).(bool)
	return b
}

// PersistVisitor sets the long-lived identity cookie when the identity
// was newly minted.  HttpOnly and SameSite=Strict match the capability
// nature of the token: scripts never need to read it and it must not
// ride along on cross-site requests.  Called by handlers after a
// successful claim-affecting action.
func PersistVisitor(c echo.Context) {
	if !VisitorIsNew(c) {
		return
	}
	secure, _ := c.Get("visitor_cookie_secure").(bool)
	c.SetCookie(&http.Cookie{
		Name:     VisitorCookieName,
		Value:    VisitorID(c),
		Path:     "/",
		MaxAge:   int(visitorCookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
