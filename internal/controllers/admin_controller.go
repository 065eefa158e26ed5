package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/derive"
	"github.com/zaqqye/surat_tugas_web/internal/middleware"
	"github.com/zaqqye/surat_tugas_web/internal/models"
	"github.com/zaqqye/surat_tugas_web/internal/services"
	"github.com/zaqqye/surat_tugas_web/internal/session"
	"github.com/zaqqye/surat_tugas_web/internal/ws"
)

type AdminController struct {
	API     *services.API
	Manager *session.Manager
	Guard   *middleware.Guard
	Hub     *ws.NotificationHub
}

// Dashboard shows the system-wide stats from the mail service plus the most
// recent submissions joined with their senders.
func (a *AdminController) Dashboard(c *gin.Context) {
	cur := middleware.Current(c)
	ts := a.Manager.TokenSource(cur.SessionID)
	ctx := c.Request.Context()

	stats, sres := a.API.Surat(ts).GetStats(ctx)
	if sessionExpired(c, a.Guard, sres) {
		return
	}

	letters, lres := a.API.Surat(ts).ListAllSurat(ctx)
	if sessionExpired(c, a.Guard, lres) {
		return
	}
	if !lres.Success {
		renderError(c, "admin_dashboard.html", gin.H{"Title": "Dashboard Admin", "Error": lres.Message, "RetryPath": "/admin/dashboard"}, lres)
		return
	}

	users, ures := a.API.Users(ts).ListUsers(ctx)
	if sessionExpired(c, a.Guard, ures) {
		return
	}

	// The stats endpoint is best-effort; the client-side aggregate always
	// works from the fetched collection.
	dist := derive.Distribute(letters)
	if !sres.Success {
		stats = services.Stats{Total: dist.Total, Diproses: dist.Diproses, Disetujui: dist.Disetujui, Ditolak: dist.Ditolak}
	}

	recent := derive.FilterSurat(letters, derive.SuratQuery{Sort: derive.SortNewest}, timeNow())
	if len(recent) > 5 {
		recent = recent[:5]
	}
	render(c, "admin_dashboard.html", gin.H{
		"Title":        "Dashboard Admin",
		"Stats":        stats,
		"Distribution": dist,
		"Recent":       derive.JoinSenders(recent, users),
		"UserCount":    len(users),
	})
}

// Users is the admin user-management table.
func (a *AdminController) Users(c *gin.Context) {
	cur := middleware.Current(c)
	ts := a.Manager.TokenSource(cur.SessionID)

	users, res := a.API.Users(ts).ListUsers(c.Request.Context())
	if sessionExpired(c, a.Guard, res) {
		return
	}
	if !res.Success {
		renderError(c, "admin_users.html", gin.H{"Title": "Manajemen Pengguna", "Error": res.Message, "RetryPath": "/admin/users"}, res)
		return
	}

	search := c.Query("q")
	role := c.Query("role")
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	filtered := derive.FilterUsers(users, search, role)
	rows, totalPages := derive.Page(filtered, page, derive.DefaultPageSize)
	render(c, "admin_users.html", gin.H{
		"Title":      "Manajemen Pengguna",
		"Rows":       rows,
		"Search":     search,
		"Role":       role,
		"Page":       page,
		"TotalPages": totalPages,
		"Total":      len(filtered),
	})
}

// UserDetail shows one user record with their submitted letters.
func (a *AdminController) UserDetail(c *gin.Context) {
	cur := middleware.Current(c)
	ts := a.Manager.TokenSource(cur.SessionID)
	ctx := c.Request.Context()
	id := c.Param("id")

	user, res := a.API.Users(ts).GetUser(ctx, id)
	if sessionExpired(c, a.Guard, res) {
		return
	}
	if !res.Success {
		renderError(c, "admin_user_detail.html", gin.H{"Title": "Detail Pengguna", "Error": res.Message, "RetryPath": "/admin/users/" + id}, res)
		return
	}

	letters, lres := a.API.Surat(ts).ListAllSurat(ctx)
	if sessionExpired(c, a.Guard, lres) {
		return
	}
	byUser := make([]models.Surat, 0, len(letters))
	for _, s := range letters {
		if s.IDPengirim == user.ID {
			byUser = append(byUser, s)
		}
	}
	theirs := derive.FilterSurat(byUser, derive.SuratQuery{Sort: derive.SortNewest}, timeNow())
	data := gin.H{
		"Title":        "Detail Pengguna",
		"Record":       user,
		"Letters":      theirs,
		"Distribution": derive.Distribute(theirs),
	}
	if !lres.Success {
		// The record still renders; only the letter list is degraded.
		data["Error"] = lres.Message
	}
	render(c, "admin_user_detail.html", data)
}

func (a *AdminController) DeleteUser(c *gin.Context) {
	cur := middleware.Current(c)
	ts := a.Manager.TokenSource(cur.SessionID)

	res := a.API.Users(ts).DeleteUser(c.Request.Context(), c.Param("id"))
	if sessionExpired(c, a.Guard, res) {
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/users?msg="+queryEscape(res.Message))
}

// Surat is the all-letters overview joined with sender records.
func (a *AdminController) Surat(c *gin.Context) {
	cur := middleware.Current(c)
	ts := a.Manager.TokenSource(cur.SessionID)
	ctx := c.Request.Context()

	letters, res := a.API.Surat(ts).ListAllSurat(ctx)
	if sessionExpired(c, a.Guard, res) {
		return
	}
	if !res.Success {
		renderError(c, "admin_surat.html", gin.H{"Title": "Semua Surat", "Error": res.Message, "RetryPath": "/admin/surat"}, res)
		return
	}
	users, ures := a.API.Users(ts).ListUsers(ctx)
	if sessionExpired(c, a.Guard, ures) {
		return
	}

	q, page := suratQuery(c)
	filtered := derive.FilterSurat(letters, q, timeNow())
	rows, totalPages := derive.Page(derive.JoinSenders(filtered, users), page, derive.DefaultPageSize)
	render(c, "admin_surat.html", gin.H{
		"Title":      "Semua Surat",
		"Rows":       rows,
		"Query":      q,
		"Page":       page,
		"TotalPages": totalPages,
		"Total":      len(filtered),
	})
}

// Approval lists the letters still waiting for a decision.
func (a *AdminController) Approval(c *gin.Context) {
	cur := middleware.Current(c)
	ts := a.Manager.TokenSource(cur.SessionID)
	ctx := c.Request.Context()

	letters, res := a.API.Surat(ts).ListAllSurat(ctx)
	if sessionExpired(c, a.Guard, res) {
		return
	}
	if !res.Success {
		renderError(c, "admin_approval.html", gin.H{"Title": "Persetujuan Surat", "Error": res.Message, "RetryPath": "/admin/approval"}, res)
		return
	}
	users, ures := a.API.Users(ts).ListUsers(ctx)
	if sessionExpired(c, a.Guard, ures) {
		return
	}

	pending := derive.FilterSurat(letters, derive.SuratQuery{Status: models.StatusDiproses, Sort: derive.SortOldest}, timeNow())
	render(c, "admin_approval.html", gin.H{
		"Title": "Persetujuan Surat",
		"Rows":  derive.JoinSenders(pending, users),
	})
}

// Decide records an approval/rejection and notifies the sender's open
// dashboard over the hub.
func (a *AdminController) Decide(c *gin.Context) {
	cur := middleware.Current(c)
	ts := a.Manager.TokenSource(cur.SessionID)

	suratID := c.Param("id")
	status := models.Status(c.PostForm("status"))
	alasan := c.PostForm("alasan")

	res := a.API.Surat(ts).UpdateSuratStatus(c.Request.Context(), suratID, status, alasan)
	if sessionExpired(c, a.Guard, res) {
		return
	}
	if res.Success {
		a.Hub.Notify(c.PostForm("id_pengirim"), ws.StatusMessage{
			Type:      "surat_status",
			SuratID:   suratID,
			Subject:   c.PostForm("subject_surat"),
			Status:    string(status),
			Alasan:    alasan,
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	c.Redirect(http.StatusSeeOther, "/admin/approval?msg="+queryEscape(res.Message))
}

// Reports shows the status distribution and approval rate over every letter.
func (a *AdminController) Reports(c *gin.Context) {
	cur := middleware.Current(c)
	ts := a.Manager.TokenSource(cur.SessionID)

	letters, res := a.API.Surat(ts).ListAllSurat(c.Request.Context())
	if sessionExpired(c, a.Guard, res) {
		return
	}
	if !res.Success {
		renderError(c, "admin_reports.html", gin.H{"Title": "Laporan", "Error": res.Message, "RetryPath": "/admin/reports"}, res)
		return
	}

	window := derive.Window(c.Query("range"))
	scoped := derive.FilterSurat(letters, derive.SuratQuery{Window: window, Sort: derive.SortNewest}, timeNow())
	dist := derive.Distribute(scoped)
	render(c, "admin_reports.html", gin.H{
		"Title":        "Laporan",
		"Distribution": dist,
		"ApprovalRate": dist.ApprovalRate(),
		"Window":       window,
	})
}

// Settings surfaces the profile form and the admin feature overview.
func (a *AdminController) Settings(c *gin.Context) {
	render(c, "admin_settings.html", gin.H{"Title": "Pengaturan"})
}
