package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/middleware"
	"github.com/zaqqye/surat_tugas_web/internal/session"
)

type AuthController struct {
	Manager *session.Manager
	Guard   *middleware.Guard
}

func (a *AuthController) ShowLogin(c *gin.Context) {
	render(c, "login.html", gin.H{"Title": "Login"})
}

func (a *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	sessionID, user, res := a.Manager.Login(c.Request.Context(), username, password)
	if !res.Success {
		render(c, "login.html", gin.H{
			"Title":    "Login",
			"Error":    res.Message,
			"Username": username,
		})
		return
	}

	a.Guard.SetCookie(c, sessionID, int(a.Manager.TTL().Seconds()))
	if user.IsAdmin {
		c.Redirect(http.StatusSeeOther, "/admin/dashboard")
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (a *AuthController) ShowRegister(c *gin.Context) {
	render(c, "register.html", gin.H{"Title": "Registrasi"})
}

func (a *AuthController) Register(c *gin.Context) {
	username := c.PostForm("username")
	nim := c.PostForm("nim")
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	if password != confirm {
		render(c, "register.html", gin.H{
			"Title":    "Registrasi",
			"Error":    "Konfirmasi password tidak sama",
			"Username": username,
			"NIM":      nim,
		})
		return
	}

	sessionID, _, res := a.Manager.Register(c.Request.Context(), username, nim, password)
	if !res.Success {
		render(c, "register.html", gin.H{
			"Title":    "Registrasi",
			"Error":    res.Message,
			"Username": username,
			"NIM":      nim,
		})
		return
	}

	a.Guard.SetCookie(c, sessionID, int(a.Manager.TTL().Seconds()))
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout clears the session unconditionally and always lands on /login,
// whatever state the session was in.
func (a *AuthController) Logout(c *gin.Context) {
	sid, _ := c.Cookie(a.Guard.CookieName)
	a.Manager.Logout(c.Request.Context(), sid)
	a.Guard.ClearCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
