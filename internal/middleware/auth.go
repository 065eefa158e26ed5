package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/session"
)

// currentKey is the gin context key under which the resolved session lives.
const currentKey = "current_session"

// Resolver turns a cookie value into a session. Satisfied by *session.Manager.
type Resolver interface {
	Resolve(ctx context.Context, sessionID string) (*session.Current, error)
}

// Guard evaluates the session for page routes. Both guards are stateless:
// every request re-resolves from the store, so the session manager is the
// sole source of truth.
type Guard struct {
	Manager      Resolver
	CookieName   string
	CookieSecure bool
}

// RequireSession resolves the cookie into a session or redirects to /login.
func (g *Guard) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(g.CookieName)
		cur, err := g.Manager.Resolve(c.Request.Context(), sid)
		if err != nil {
			g.ClearCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(currentKey, cur)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after RequireSession.
func (g *Guard) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		cur := Current(c)
		if cur == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		if !cur.IsAdmin() {
			c.Redirect(http.StatusSeeOther, "/unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectIfAuthenticated sends logged-in visitors of public pages (login,
// register) to their role-appropriate dashboard.
func (g *Guard) RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(g.CookieName)
		if sid != "" {
			if cur, err := g.Manager.Resolve(c.Request.Context(), sid); err == nil {
				c.Redirect(http.StatusSeeOther, DashboardPath(cur))
				c.Abort()
				return
			}
			g.ClearCookie(c)
		}
		c.Next()
	}
}

// SetCookie installs the session cookie after login/register.
func (g *Guard) SetCookie(c *gin.Context, sessionID string, maxAge int) {
	c.SetCookie(g.CookieName, sessionID, maxAge, "/", "", g.CookieSecure, true)
}

func (g *Guard) ClearCookie(c *gin.Context) {
	c.SetCookie(g.CookieName, "", -1, "/", "", g.CookieSecure, true)
}

// Current returns the session resolved by RequireSession, or nil.
func Current(c *gin.Context) *session.Current {
	v, ok := c.Get(currentKey)
	if !ok {
		return nil
	}
	cur, ok := v.(*session.Current)
	if !ok {
		return nil
	}
	return cur
}

// DashboardPath maps a session to its landing page.
func DashboardPath(cur *session.Current) string {
	if cur.IsAdmin() {
		return "/admin/dashboard"
	}
	return "/dashboard"
}
