package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/derive"
	"github.com/zaqqye/surat_tugas_web/internal/middleware"
	"github.com/zaqqye/surat_tugas_web/internal/services"
	"github.com/zaqqye/surat_tugas_web/internal/session"
)

// NimController manages the registration allowlist.
type NimController struct {
	API     *services.API
	Manager *session.Manager
	Guard   *middleware.Guard
}

func (n *NimController) List(c *gin.Context) {
	cur := middleware.Current(c)
	ts := n.Manager.TokenSource(cur.SessionID)

	entries, res := n.API.Nims(ts).ListNims(c.Request.Context())
	if sessionExpired(c, n.Guard, res) {
		return
	}
	if !res.Success {
		renderError(c, "admin_nims.html", gin.H{"Title": "Manajemen NIM", "Error": res.Message, "RetryPath": "/admin/nim-management"}, res)
		return
	}

	search := c.Query("q")
	status := c.Query("status")
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	filtered := derive.FilterNims(entries, search, status)
	rows, totalPages := derive.Page(filtered, page, derive.DefaultPageSize)
	render(c, "admin_nims.html", gin.H{
		"Title":      "Manajemen NIM",
		"Rows":       rows,
		"Search":     search,
		"Status":     status,
		"Page":       page,
		"TotalPages": totalPages,
		"Total":      len(filtered),
	})
}

func (n *NimController) Add(c *gin.Context) {
	cur := middleware.Current(c)
	ts := n.Manager.TokenSource(cur.SessionID)

	res := n.API.Nims(ts).AddNim(c.Request.Context(), c.PostForm("nim"))
	if sessionExpired(c, n.Guard, res) {
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/nim-management?msg="+queryEscape(res.Message))
}

func (n *NimController) Activate(c *gin.Context) {
	n.setState(c, true)
}

func (n *NimController) Deactivate(c *gin.Context) {
	n.setState(c, false)
}

func (n *NimController) setState(c *gin.Context, active bool) {
	cur := middleware.Current(c)
	ts := n.Manager.TokenSource(cur.SessionID)

	var res services.Result
	if active {
		res = n.API.Nims(ts).ActivateNim(c.Request.Context(), c.Param("id"))
	} else {
		res = n.API.Nims(ts).DeactivateNim(c.Request.Context(), c.Param("id"))
	}
	if sessionExpired(c, n.Guard, res) {
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/nim-management?msg="+queryEscape(res.Message))
}
