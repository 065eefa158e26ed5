package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/derive"
	"github.com/zaqqye/surat_tugas_web/internal/middleware"
	"github.com/zaqqye/surat_tugas_web/internal/models"
	"github.com/zaqqye/surat_tugas_web/internal/services"
	"github.com/zaqqye/surat_tugas_web/internal/session"
)

type SuratController struct {
	API     *services.API
	Manager *session.Manager
	Guard   *middleware.Guard
}

// suratQuery reads the table controls shared by every letter list page.
func suratQuery(c *gin.Context) (derive.SuratQuery, int) {
	q := derive.SuratQuery{
		Search: c.Query("q"),
		Window: derive.Window(c.Query("range")),
		Sort:   derive.SortKey(c.Query("sort")),
	}
	if st := models.Status(c.Query("status")); st.Valid() {
		q.Status = st
	}
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return q, page
}

// List shows the current user's letters with client-side search, filters,
// sort, and pagination over the full fetched collection.
func (s *SuratController) List(c *gin.Context) {
	cur := middleware.Current(c)
	ts := s.Manager.TokenSource(cur.SessionID)

	letters, res := s.API.Surat(ts).ListUserSurat(c.Request.Context())
	if sessionExpired(c, s.Guard, res) {
		return
	}
	if !res.Success {
		renderError(c, "surat_list.html", gin.H{"Title": "Surat Saya", "Error": res.Message, "RetryPath": "/surat"}, res)
		return
	}

	q, page := suratQuery(c)
	filtered := derive.FilterSurat(letters, q, timeNow())
	rows, totalPages := derive.Page(filtered, page, derive.DefaultPageSize)
	render(c, "surat_list.html", gin.H{
		"Title":      "Surat Saya",
		"Rows":       rows,
		"Query":      q,
		"Page":       page,
		"TotalPages": totalPages,
		"Total":      len(filtered),
	})
}

func (s *SuratController) ShowCreate(c *gin.Context) {
	render(c, "surat_create.html", gin.H{"Title": "Ajukan Surat"})
}

// Create forwards the submission as multipart. The required-file check lives
// in the service so that a missing file never produces a network call.
func (s *SuratController) Create(c *gin.Context) {
	cur := middleware.Current(c)
	ts := s.Manager.TokenSource(cur.SessionID)
	subject := c.PostForm("subject_surat")

	var (
		fileName string
		file     multipart.File
	)
	if fh, err := c.FormFile("file_surat"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			render(c, "surat_create.html", gin.H{"Title": "Ajukan Surat", "Error": "File surat tidak dapat dibaca", "Subject": subject})
			return
		}
		defer f.Close()
		file = f
		fileName = fh.Filename
	}

	_, res := s.API.Surat(ts).CreateSurat(c.Request.Context(), subject, fileName, file)
	if sessionExpired(c, s.Guard, res) {
		return
	}
	if !res.Success {
		render(c, "surat_create.html", gin.H{"Title": "Ajukan Surat", "Error": res.Message, "Subject": subject})
		return
	}
	c.Redirect(http.StatusSeeOther, "/surat?msg="+queryEscape(res.Message))
}

// Detail shows one letter with its full status timeline. The history list is
// fetched separately when the detail payload does not embed it.
func (s *SuratController) Detail(c *gin.Context) {
	cur := middleware.Current(c)
	ts := s.Manager.TokenSource(cur.SessionID)
	id := c.Param("id")

	surat, res := s.API.Surat(ts).GetSuratDetail(c.Request.Context(), id)
	if sessionExpired(c, s.Guard, res) {
		return
	}
	if !res.Success {
		renderError(c, "surat_detail.html", gin.H{"Title": "Detail Surat", "Error": res.Message, "RetryPath": "/surat/" + id}, res)
		return
	}

	if len(surat.Histories) == 0 {
		histories, hres := s.API.Surat(ts).GetHistory(c.Request.Context(), id)
		if sessionExpired(c, s.Guard, hres) {
			return
		}
		if hres.Success {
			surat.Histories = histories
		}
	}

	render(c, "surat_detail.html", gin.H{
		"Title":  "Detail Surat",
		"Surat":  surat,
		"Status": derive.LatestStatus(surat),
	})
}
