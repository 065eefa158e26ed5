package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/derive"
	"github.com/zaqqye/surat_tugas_web/internal/middleware"
	"github.com/zaqqye/surat_tugas_web/internal/services"
	"github.com/zaqqye/surat_tugas_web/internal/session"
)

type PageController struct {
	API     *services.API
	Manager *session.Manager
	Guard   *middleware.Guard
}

// Dashboard shows the user's own letters: status distribution plus the five
// most recent submissions.
func (p *PageController) Dashboard(c *gin.Context) {
	cur := middleware.Current(c)
	ts := p.Manager.TokenSource(cur.SessionID)

	letters, res := p.API.Surat(ts).ListUserSurat(c.Request.Context())
	if sessionExpired(c, p.Guard, res) {
		return
	}
	if !res.Success {
		renderError(c, "dashboard.html", gin.H{"Title": "Dashboard", "Error": res.Message, "RetryPath": "/dashboard"}, res)
		return
	}

	dist := derive.Distribute(letters)
	recent := derive.FilterSurat(letters, derive.SuratQuery{Sort: derive.SortNewest}, timeNow())
	if len(recent) > 5 {
		recent = recent[:5]
	}
	render(c, "dashboard.html", gin.H{
		"Title":        "Dashboard",
		"Distribution": dist,
		"Recent":       recent,
	})
}

func (p *PageController) ShowProfile(c *gin.Context) {
	cur := middleware.Current(c)
	// Re-validate the cached user against the server before showing it.
	res := p.Manager.RefreshUserData(c.Request.Context(), cur)
	if !res.Success {
		// Stale session is unrecoverable: the manager already tore it down.
		p.Guard.ClearCookie(c)
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	render(c, "profile.html", gin.H{"Title": "Profil"})
}

func (p *PageController) UpdateProfile(c *gin.Context) {
	cur := middleware.Current(c)
	res := p.Manager.UpdateProfile(c.Request.Context(), cur, c.PostForm("username"))
	if sessionExpired(c, p.Guard, res) {
		return
	}
	if !res.Success {
		render(c, "profile.html", gin.H{"Title": "Profil", "Error": res.Message})
		return
	}
	c.Redirect(http.StatusSeeOther, "/profile?msg="+queryEscape(res.Message))
}

func (p *PageController) Unauthorized(c *gin.Context) {
	c.HTML(http.StatusForbidden, "unauthorized.html", gin.H{"Title": "Akses Ditolak"})
}

func (p *PageController) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{"Title": "Halaman Tidak Ditemukan"})
}
