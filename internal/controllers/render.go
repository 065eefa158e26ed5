package controllers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/middleware"
	"github.com/zaqqye/surat_tugas_web/internal/services"
	"github.com/zaqqye/surat_tugas_web/internal/upstream"
)

func timeNow() time.Time { return time.Now() }

func queryEscape(s string) string { return url.QueryEscape(s) }

// render fills the layout fields every page template expects.
func render(c *gin.Context, name string, data gin.H) {
	renderStatus(c, http.StatusOK, name, data)
}

// renderError renders a page whose data fetch failed, with an HTTP status
// matching the upstream failure class instead of a blanket 200.
func renderError(c *gin.Context, name string, data gin.H, res services.Result) {
	renderStatus(c, statusFor(res), name, data)
}

func renderStatus(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if cur := middleware.Current(c); cur != nil {
		data["Session"] = cur
		data["User"] = cur.User
		data["IsAdmin"] = cur.IsAdmin()
	}
	if msg := c.Query("msg"); msg != "" {
		if _, ok := data["Success"]; !ok {
			data["Success"] = msg
		}
	}
	c.HTML(code, name, data)
}

// statusFor maps a failed Result to the status the page should carry. Form
// validation re-renders keep using render (200); this mapping is only for
// fetch failures surfaced through renderError.
func statusFor(res services.Result) int {
	if res.Err == nil {
		return http.StatusOK
	}
	switch res.Err.Kind {
	case upstream.KindNetwork, upstream.KindServer, upstream.KindDecode:
		return http.StatusBadGateway
	case upstream.KindTimeout:
		return http.StatusGatewayTimeout
	case upstream.KindAuth:
		return http.StatusUnauthorized
	case upstream.KindForbidden:
		return http.StatusForbidden
	case upstream.KindNotFound:
		return http.StatusNotFound
	case upstream.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// sessionExpired handles the one unrecoverable failure: the 401 whose refresh
// also failed. The session is already gone; send the user back to login.
func sessionExpired(c *gin.Context, g *middleware.Guard, res services.Result) bool {
	if !res.Expired {
		return false
	}
	g.ClearCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
	c.Abort()
	return true
}
